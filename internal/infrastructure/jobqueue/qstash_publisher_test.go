package jobqueue

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amberhearts/amberhearts/internal/platform/resilience"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQStashPublisher_Enqueue_PublishesWithHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/v2/publish/") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if !strings.HasSuffix(r.URL.Path, "/v1/internal/jobs/signup-nudge") {
			t.Fatalf("target url missing from path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer qstash-token" {
			t.Fatalf("unexpected authorization: %s", got)
		}
		if got := r.Header.Get("Upstash-Delay"); got != "30s" {
			t.Fatalf("unexpected delay header: %s", got)
		}
		if got := r.Header.Get("Upstash-Retries"); got != "3" {
			t.Fatalf("unexpected retries header: %s", got)
		}
		if got := r.Header.Get("Upstash-Deduplication-Id"); got != "signup-nudge-user-1" {
			t.Fatalf("unexpected dedup header: %s", got)
		}
		if got := r.Header.Get("Upstash-Forward-X-Internal-Job-Token"); got != "job-secret" {
			t.Fatalf("unexpected forward token header: %s", got)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://api.amberhearts.com",
		Retries:          3,
		InternalJobToken: "job-secret",
		CircuitBreaker:   resilience.CircuitBreakerConfig{Enabled: false},
	}, testLogger())

	err := publisher.Enqueue(
		context.Background(),
		"/v1/internal/jobs/signup-nudge",
		map[string]string{"user_id": "user-1"},
		30*time.Second,
		"signup-nudge-user-1",
	)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
}

func TestQStashPublisher_Enqueue_RequiresPath(t *testing.T) {
	t.Parallel()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       "https://qstash.upstash.io",
		Token:         "qstash-token",
		TargetBaseURL: "https://api.amberhearts.com",
	}, testLogger())

	if err := publisher.Enqueue(context.Background(), "  ", nil, 0, ""); err == nil {
		t.Fatalf("expected error for empty job path")
	}
}

func TestQStashPublisher_Enqueue_ServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:        srv.URL,
		Token:          "qstash-token",
		TargetBaseURL:  "https://api.amberhearts.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	}, testLogger())

	err := publisher.Enqueue(context.Background(), "/v1/internal/jobs/signup-welcome", nil, 0, "")
	if err == nil {
		t.Fatalf("expected error on 503")
	}
}

func TestNormalizeDelay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{90 * time.Second, "90s"},
		{2 * time.Minute, "120s"},
	}
	for _, tc := range cases {
		if got := normalizeDelay(tc.in); got != tc.want {
			t.Fatalf("normalizeDelay(%s)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateHTTPBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := validateHTTPBaseURL("ftp://example.com"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
	if _, err := validateHTTPBaseURL(""); err == nil {
		t.Fatalf("expected error for empty value")
	}
	got, err := validateHTTPBaseURL("https://example.com/")
	if err != nil {
		t.Fatalf("validate base url: %v", err)
	}
	if got != "https://example.com" {
		t.Fatalf("unexpected normalized url: %s", got)
	}
}
