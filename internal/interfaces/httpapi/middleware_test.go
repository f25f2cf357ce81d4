package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amberhearts/amberhearts/internal/domain/user"
	"github.com/amberhearts/amberhearts/internal/usecase"
)

type stubVerifier struct {
	principal user.Principal
	err       error
}

func (s *stubVerifier) VerifyAccessToken(_ context.Context, _ string) (user.Principal, error) {
	return s.principal, s.err
}

type stubCounter struct {
	count int64
	err   error
}

func (s *stubCounter) Incr(_ context.Context, _ string) (int64, error) {
	s.count++
	return s.count, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	handler := RequireAuth(&stubVerifier{}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("next handler must not run without a bearer token")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRequireAuth_PrincipalReachesHandler(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{principal: user.Principal{UserID: "user-1", Email: "amira@example.com"}}
	var got user.Principal
	handler := RequireAuth(verifier, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		principal, ok := principalFromContext(r.Context())
		if !ok {
			t.Fatal("principal missing from context")
		}
		got = principal
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.UserID != "user-1" {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestRequireAuth_VerifierErrorMapsToEnvelope(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{err: fmt.Errorf("%w: token rejected", usecase.ErrUnauthorized)}
	handler := RequireAuth(verifier, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("next handler must not run for a rejected token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer token-bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "UNAUTHENTICATED") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRequireInternalJobToken(t *testing.T) {
	t.Parallel()

	var nextRan bool
	handler := RequireInternalJobToken("job-secret", http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		nextRan = true
	}))

	t.Run("rejects missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/signup-welcome", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
	})

	t.Run("accepts matching token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/signup-welcome", nil)
		req.Header.Set("X-Internal-Job-Token", "job-secret")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if !nextRan {
			t.Fatal("next handler did not run")
		}
	})

	t.Run("unconfigured token disables the route", func(t *testing.T) {
		unconfigured := RequireInternalJobToken("", http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("route must be disabled without a configured token")
		}))
		rec := httptest.NewRecorder()
		unconfigured.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/signup-welcome", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
	})
}

func TestRateLimit_BlocksPastThreshold(t *testing.T) {
	t.Parallel()

	counter := &stubCounter{}
	handler := RateLimit(counter, 2, discardLogger(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/signup", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d unexpectedly limited: %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/signup", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after threshold, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "RESOURCE_EXHAUSTED") {
		t.Fatalf("unexpected envelope: %s", rec.Body.String())
	}
}

func TestRateLimit_FailsOpenOnCounterError(t *testing.T) {
	t.Parallel()

	counter := &stubCounter{err: errors.New("redis connection refused")}
	handler := RateLimit(counter, 1, discardLogger(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/signup", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("counter outage must fail open, got %d", rec.Code)
	}
}

func TestRateLimit_PassthroughWithoutCounter(t *testing.T) {
	t.Parallel()

	var ran bool
	handler := RateLimit(nil, 10, discardLogger(), http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		ran = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/signup", nil))
	if !ran {
		t.Fatal("nil counter must pass requests through")
	}
}
