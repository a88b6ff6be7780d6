package youtube

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetryTransportRetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewRetryTransport(http.DefaultTransport, fastRetry())}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected eventual 200, got %d", resp.StatusCode)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestRetryTransportDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry())}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	resp.Body.Close()
	if hits.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", hits.Load())
	}
}

func TestRetryTransportGivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry())}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected last status to surface, got %d", resp.StatusCode)
	}
	if hits.Load() != 4 {
		t.Fatalf("expected 4 attempts, got %d", hits.Load())
	}
}

func TestBackoffDelayIsCapped(t *testing.T) {
	transport := NewRetryTransport(nil, RetryConfig{MaxRetries: 10, InitialDelay: time.Second, MaxDelay: 2 * time.Second})
	for attempt := 1; attempt <= 10; attempt++ {
		if delay := transport.backoffDelay(attempt); delay > 2500*time.Millisecond {
			t.Fatalf("attempt %d delay %v exceeds cap plus jitter", attempt, delay)
		}
	}
}
