package gotrue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/amberhearts/amberhearts/internal/domain/user"
	"github.com/amberhearts/amberhearts/internal/platform/cache"
	"github.com/amberhearts/amberhearts/internal/platform/resilience"
	"github.com/amberhearts/amberhearts/internal/usecase"
)

const maxResponseBytes = 1 << 20

type Config struct {
	BaseURL        string
	ServiceKey     string
	Timeout        time.Duration
	TokenCacheTTL  time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the hosted GoTrue auth service. It is the only component
// that sees raw credentials; downstream code works with user ids.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	serviceKey     string
	logger         *slog.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	tokenCache     *cache.Store
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tokenTTL := cfg.TokenCacheTTL
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		serviceKey:     strings.TrimSpace(cfg.ServiceKey),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		tokenCache:     cache.NewStore(tokenTTL),
	}
}

type signupRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data,omitempty"`
}

type userResponse struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	UserMetadata map[string]string `json:"user_metadata"`
	AppMetadata  struct {
		Provider string `json:"provider"`
	} `json:"app_metadata"`
	EmailConfirmedAt string `json:"email_confirmed_at"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]string) (usecase.IdentityResult, error) {
	var decoded userResponse
	status, err := c.postJSON(ctx, "/signup", signupRequest{Email: email, Password: password, Data: metadata}, &decoded)
	if err != nil {
		return usecase.IdentityResult{}, fmt.Errorf("%w: gotrue signup: %v", usecase.ErrDependencyUnavailable, err)
	}

	switch {
	case status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		return usecase.IdentityResult{}, fmt.Errorf("%w: email already registered", usecase.ErrConflict)
	case status == http.StatusBadRequest:
		return usecase.IdentityResult{}, fmt.Errorf("%w: gotrue rejected signup payload", usecase.ErrInvalidInput)
	case status != http.StatusOK:
		return usecase.IdentityResult{}, fmt.Errorf("%w: gotrue signup status %d", usecase.ErrDependencyUnavailable, status)
	}

	result, err := identityFromUser(decoded)
	if err != nil {
		return usecase.IdentityResult{}, crerr.Wrap(err, "gotrue signup response")
	}
	return result, nil
}

func (c *Client) ExchangeOAuthCode(ctx context.Context, code string) (usecase.IdentityResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return usecase.IdentityResult{}, fmt.Errorf("%w: oauth code is required", usecase.ErrInvalidInput)
	}

	var decoded tokenResponse
	status, err := c.postJSON(ctx, "/token?grant_type=pkce", map[string]string{"auth_code": code}, &decoded)
	if err != nil {
		return usecase.IdentityResult{}, fmt.Errorf("%w: gotrue token exchange: %v", usecase.ErrDependencyUnavailable, err)
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden:
		return usecase.IdentityResult{}, fmt.Errorf("%w: oauth code rejected", usecase.ErrUnauthorized)
	case status != http.StatusOK:
		return usecase.IdentityResult{}, fmt.Errorf("%w: gotrue token exchange status %d", usecase.ErrDependencyUnavailable, status)
	}

	result, err := identityFromUser(decoded.User)
	if err != nil {
		return usecase.IdentityResult{}, crerr.Wrap(err, "gotrue token response")
	}
	return result, nil
}

// VerifyAccessToken introspects a bearer token against GoTrue's user
// endpoint. Results are cached briefly so a burst of requests from one
// client costs a single upstream call.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	value, err := c.tokenCache.GetOrLoad(ctx, token, func(ctx context.Context) (any, error) {
		return c.introspect(ctx, token)
	})
	if err != nil {
		return user.Principal{}, err
	}

	principal, ok := value.(user.Principal)
	if !ok {
		return user.Principal{}, crerr.New("unexpected cached principal type")
	}
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return user.Principal{}, fmt.Errorf("%w: gotrue circuit open", usecase.ErrDependencyUnavailable)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordCircuitResult(err)
		return user.Principal{}, fmt.Errorf("%w: gotrue introspection: %v", usecase.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.recordCircuitResult(nil)
		return user.Principal{}, fmt.Errorf("%w: token rejected", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordCircuitResult(err)
		return user.Principal{}, crerr.Wrap(err, "read introspect response")
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := crerr.Newf("gotrue introspection status %d", resp.StatusCode)
		c.recordCircuitResult(statusErr)
		c.logger.WarnContext(ctx, "gotrue introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, statusErr)
	}
	c.recordCircuitResult(nil)

	var decoded userResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}
	if strings.TrimSpace(decoded.ID) == "" {
		return user.Principal{}, fmt.Errorf("%w: introspect response missing user id", usecase.ErrUnauthorized)
	}

	return user.Principal{UserID: decoded.ID, Email: decoded.Email}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) (int, error) {
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return 0, crerr.Wrap(err, "marshal request")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return 0, crerr.New("gotrue circuit open")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(encoded)))
	if err != nil {
		return 0, crerr.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.serviceKey != "" {
		req.Header.Set("apikey", c.serviceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordCircuitResult(err)
		return 0, crerr.Wrap(err, "request gotrue")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recordCircuitResult(err)
		return resp.StatusCode, crerr.Wrap(err, "read gotrue response")
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		statusErr := crerr.Newf("gotrue status %d", resp.StatusCode)
		c.recordCircuitResult(statusErr)
		return resp.StatusCode, statusErr
	}
	c.recordCircuitResult(nil)

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := sonic.Unmarshal(body, out); err != nil {
			return resp.StatusCode, crerr.Wrap(err, "unmarshal gotrue response")
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled || c.breaker == nil {
		return
	}
	if err != nil {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func identityFromUser(decoded userResponse) (usecase.IdentityResult, error) {
	if strings.TrimSpace(decoded.ID) == "" {
		return usecase.IdentityResult{}, crerr.New("user id is empty")
	}

	provider := decoded.AppMetadata.Provider
	if provider == "" {
		provider = "email"
	}

	return usecase.IdentityResult{
		UserID:        decoded.ID,
		Email:         decoded.Email,
		DisplayName:   decoded.UserMetadata["display_name"],
		AvatarURL:     decoded.UserMetadata["avatar_url"],
		Provider:      provider,
		EmailVerified: strings.TrimSpace(decoded.EmailConfirmedAt) != "",
	}, nil
}
