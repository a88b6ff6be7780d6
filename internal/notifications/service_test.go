package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"povcat/internal/config"
	"povcat/internal/notifications"
)

type captured struct {
	calls    int
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.calls++
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		got.body = string(body)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, got
}

func serviceFor(url string, onSuccess bool) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	cfg.Notifications.NotifySuccess = onSuccess
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Notify(context.Background(), notifications.RunSummary{Status: "failed"}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNotifyFormatsRunOutcomes(t *testing.T) {
	tests := []struct {
		name           string
		summary        notifications.RunSummary
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name:           "failed",
			summary:        notifications.RunSummary{Status: "failed", Error: "save catalogue: disk full"},
			expectTitle:    "povcat - Run Failed",
			expectBody:     "Catalogue run failed: save catalogue: disk full",
			expectTags:     "povcat,error,alert",
			expectPriority: "high",
		},
		{
			name: "degraded",
			summary: notifications.RunSummary{
				Status:   "degraded",
				Entries:  12,
				Duration: 1500 * time.Millisecond,
				Degraded: []string{"whitelist: ranking unavailable", "channel lim: quota exceeded"},
			},
			expectTitle: "povcat - Run Degraded",
			expectBody:  "Catalogue written with 12 entries in 2s, degraded sources:\n- whitelist: ranking unavailable\n- channel lim: quota exceeded",
			expectTags:  "povcat,warning",
		},
		{
			name:           "ok",
			summary:        notifications.RunSummary{Status: "ok", Mode: "incremental", Entries: 40, Promoted: 3, Duration: 4 * time.Second},
			expectTitle:    "povcat - Catalogue Updated",
			expectBody:     "40 entries, 3 promoted players (incremental, 4s)",
			expectTags:     "povcat,completed",
			expectPriority: "low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, got := newNtfyServer(t, http.StatusOK)
			if err := serviceFor(server.URL, true).Notify(context.Background(), tt.summary); err != nil {
				t.Fatalf("Notify: %v", err)
			}
			if got.title != tt.expectTitle || got.body != tt.expectBody || got.tags != tt.expectTags || got.priority != tt.expectPriority {
				t.Fatalf("unexpected notification %+v", got)
			}
		})
	}
}

func TestHealthyRunsAreQuietByDefault(t *testing.T) {
	server, got := newNtfyServer(t, http.StatusOK)
	if err := serviceFor(server.URL, false).Notify(context.Background(), notifications.RunSummary{Status: "ok"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got.calls != 0 {
		t.Fatalf("expected no request for a healthy run, got %d", got.calls)
	}
}

func TestNotifyReportsHTTPErrors(t *testing.T) {
	server, _ := newNtfyServer(t, http.StatusForbidden)
	err := serviceFor(server.URL, false).Notify(context.Background(), notifications.RunSummary{Status: "failed"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
