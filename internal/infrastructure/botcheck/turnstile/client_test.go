package turnstile

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientVerify_SendsFormAndParsesVerdict(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Fatalf("unexpected content type: %s", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("secret"); got != "secret-key" {
			t.Fatalf("unexpected secret: %s", got)
		}
		if got := r.PostForm.Get("response"); got != "challenge-token" {
			t.Fatalf("unexpected response token: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"score":0.9}`))
	}))
	defer srv.Close()

	client := NewClient(Config{VerifyURL: srv.URL, SecretKey: "secret-key"}, testLogger())

	verdict, err := client.Verify(context.Background(), "challenge-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verdict.Success {
		t.Fatalf("expected success verdict")
	}
	if !verdict.HasScore || verdict.Score != 0.9 {
		t.Fatalf("unexpected score: %v (has=%v)", verdict.Score, verdict.HasScore)
	}
}

func TestClientVerify_SuccessWithoutScore(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{VerifyURL: srv.URL, SecretKey: "secret-key"}, testLogger())

	verdict, err := client.Verify(context.Background(), "challenge-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verdict.Success {
		t.Fatalf("expected success verdict")
	}
	if verdict.HasScore {
		t.Fatalf("score must be reported absent, got %v", verdict.Score)
	}
}

func TestClientVerify_FailedChallenge(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{VerifyURL: srv.URL, SecretKey: "secret-key"}, testLogger())

	verdict, err := client.Verify(context.Background(), "bad-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verdict.Success {
		t.Fatalf("expected failed verdict")
	}
}

func TestClientVerify_EmptyTokenSkipsUpstream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("siteverify must not be called for an empty token")
	}))
	defer srv.Close()

	client := NewClient(Config{VerifyURL: srv.URL, SecretKey: "secret-key"}, testLogger())

	verdict, err := client.Verify(context.Background(), "  ")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verdict.Success {
		t.Fatalf("empty token must yield a failing verdict")
	}
}

func TestClientVerify_UpstreamErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{VerifyURL: srv.URL, SecretKey: "secret-key"}, testLogger())

	if _, err := client.Verify(context.Background(), "challenge-token"); err == nil {
		t.Fatalf("expected error on upstream 502")
	}
}
