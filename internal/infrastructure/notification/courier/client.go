package courier

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/amberhearts/amberhearts/internal/usecase"
)

type Config struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
}

// Client sends templated notifications through Courier. Deliveries are
// fire-and-forget from the caller's point of view.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		authToken:  strings.TrimSpace(cfg.AuthToken),
		logger:     logger,
	}
}

type sendRequest struct {
	Message sendMessage `json:"message"`
}

type sendMessage struct {
	Template string            `json:"template"`
	To       sendRecipient     `json:"to"`
	Data     map[string]string `json:"data,omitempty"`
}

type sendRecipient struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email"`
}

func (c *Client) Send(ctx context.Context, userID, email string, template usecase.NotificationTemplate) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return crerr.New("recipient email is required")
	}

	payload := sendRequest{
		Message: sendMessage{
			Template: string(template),
			To:       sendRecipient{UserID: strings.TrimSpace(userID), Email: email},
		},
	}
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal send request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", strings.NewReader(string(encoded)))
	if err != nil {
		return crerr.Wrap(err, "create send request")
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Wrap(err, "request courier send")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return crerr.Newf("courier send status %d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	c.logger.InfoContext(ctx, "notification sent", "template", string(template), "user_id", userID)
	return nil
}
