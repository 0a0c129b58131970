package sportmonks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data": {"id": 1}}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 3)
	client.limiter.sleep = func(context.Context, time.Duration) error { return nil }

	record, err := client.FetchSingle(context.Background(), "/things/1", PageOptions{})
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if id, _ := record.Int64("id"); id != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_TransportErrorOnExhaustion(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)

	start := time.Now()
	_, err := client.get(context.Background(), "/things", nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts (initial + 2 retries), got %d", calls.Load())
	}
	// Backoff 1s then 2s between the three attempts.
	if elapsed := time.Since(start); elapsed < 3*time.Second {
		t.Fatalf("expected backoff sleeps, elapsed only %s", elapsed)
	}
}

func TestClient_ProviderErrorFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "no such endpoint"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL, 3)

	_, err := client.get(context.Background(), "/missing", nil)
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if providerErr.Status != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", providerErr.Status)
	}
	if !strings.Contains(providerErr.Body, "no such endpoint") {
		t.Fatalf("expected body in error, got %q", providerErr.Body)
	}
	if calls.Load() != 1 {
		t.Fatalf("non-retryable status must not retry, got %d attempts", calls.Load())
	}
}

func TestClient_ContextCancelAbortsBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.get(ctx, "/things", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("cancellation did not abort the backoff sleep")
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	out := sanitizeSensitiveText("request to https://api.example.test/v3/teams?api_token=secret-token failed", "secret-token")
	if strings.Contains(out, "secret-token") {
		t.Fatalf("token leaked: %s", out)
	}
	if !strings.Contains(out, "api_token=REDACTED") {
		t.Fatalf("expected redaction marker, got %s", out)
	}
}

func TestRedactAPIURL(t *testing.T) {
	out := redactAPIURL("https://api.example.test/v3/teams?api_token=secret&page=2")
	if strings.Contains(out, "secret") {
		t.Fatalf("token leaked: %s", out)
	}
	if !strings.Contains(out, "page=2") {
		t.Fatalf("other params must survive: %s", out)
	}
}
