package turnstile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/amberhearts/amberhearts/internal/usecase"
)

const defaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type Config struct {
	VerifyURL string
	SecretKey string
	Timeout   time.Duration
}

// Client verifies Turnstile challenge tokens server-side. A token is proof of
// a solved challenge, never trusted from the browser alone.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	secretKey  string
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	verifyURL := strings.TrimSpace(cfg.VerifyURL)
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		verifyURL:  verifyURL,
		secretKey:  strings.TrimSpace(cfg.SecretKey),
		logger:     logger,
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score"`
	ErrorCodes []string `json:"error-codes"`
}

func (c *Client) Verify(ctx context.Context, token string) (usecase.BotVerdict, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return usecase.BotVerdict{}, nil
	}

	form := url.Values{}
	form.Set("secret", c.secretKey)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return usecase.BotVerdict{}, crerr.Wrap(err, "create siteverify request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return usecase.BotVerdict{}, fmt.Errorf("request turnstile siteverify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return usecase.BotVerdict{}, crerr.Wrap(err, "read siteverify response")
	}
	if resp.StatusCode != http.StatusOK {
		return usecase.BotVerdict{}, crerr.Newf("turnstile siteverify status %d", resp.StatusCode)
	}

	var decoded siteverifyResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return usecase.BotVerdict{}, crerr.Wrap(err, "unmarshal siteverify response")
	}

	if !decoded.Success {
		c.logger.InfoContext(ctx, "turnstile verification rejected", "error_codes", strings.Join(decoded.ErrorCodes, ","))
	}

	verdict := usecase.BotVerdict{Success: decoded.Success}
	if decoded.Score != nil {
		verdict.Score = *decoded.Score
		verdict.HasScore = true
	}

	return verdict, nil
}
