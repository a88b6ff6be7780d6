package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"povcat/internal/config"
)

const userAgent = "povcat/0.1"

// RunSummary is what a notification says about a run.
type RunSummary struct {
	RunID    string
	Status   string // ok, degraded, or failed
	Mode     string
	Entries  int
	Promoted int
	Degraded []string
	Error    string
	Duration time.Duration
}

// Service delivers run notifications.
type Service interface {
	Notify(ctx context.Context, summary RunSummary) error
}

// NewService builds an ntfy-backed service, or a no-op when no topic is set.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		onSuccess: cfg.Notifications.NotifySuccess,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	onSuccess bool
}

// Notify sends the summary. Healthy runs are sent only when notify_success is on.
func (n *ntfyService) Notify(ctx context.Context, summary RunSummary) error {
	data, ok := n.format(summary)
	if !ok {
		return nil
	}
	return n.send(ctx, data)
}

func (n *ntfyService) format(summary RunSummary) (payload, bool) {
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	switch summary.Status {
	case "failed":
		message := "Catalogue run failed"
		if msg := strings.TrimSpace(summary.Error); msg != "" {
			message += ": " + msg
		}
		return payload{
			title:    "povcat - Run Failed",
			message:  message,
			tags:     []string{"povcat", "error", "alert"},
			priority: "high",
		}, true
	case "degraded":
		var b strings.Builder
		fmt.Fprintf(&b, "Catalogue written with %d entries in %s, degraded sources:", summary.Entries, duration)
		for _, reason := range summary.Degraded {
			b.WriteString("\n- ")
			b.WriteString(strings.TrimSpace(reason))
		}
		return payload{
			title:   "povcat - Run Degraded",
			message: b.String(),
			tags:    []string{"povcat", "warning"},
		}, true
	default:
		if !n.onSuccess {
			return payload{}, false
		}
		return payload{
			title:    "povcat - Catalogue Updated",
			message:  fmt.Sprintf("%d entries, %d promoted players (%s, %s)", summary.Entries, summary.Promoted, summary.Mode, duration),
			tags:     []string{"povcat", "completed"},
			priority: "low",
		}, true
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Notify(context.Context, RunSummary) error { return nil }
