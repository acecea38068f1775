package notifications

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"seasonmap/internal/config"
	"seasonmap/internal/httpretry"
)

const userAgent = "seasonmap"

// RunStats is the subset of a run summary worth publishing.
type RunStats struct {
	RunID       string
	Attempted   int
	Pending     int
	Matched     int
	Unresolved  int
	Skipped     int
	Interrupted bool
	Duration    time.Duration
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyRunFinished(ctx context.Context, stats RunStats) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// Requester is the subset of httpretry.Executor used to publish messages.
type Requester interface {
	Do(ctx context.Context, method, rawURL string, opts httpretry.Options) (*httpretry.Response, bool)
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured.
func NewService(cfg *config.Config, requester Requester) Service {
	if cfg == nil || requester == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	return &ntfyService{endpoint: topic, requester: requester}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	requester Requester
}

func (n *ntfyService) NotifyRunFinished(ctx context.Context, stats RunStats) error {
	duration := stats.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	data := payload{
		title: "seasonmap - Run Complete",
		message: fmt.Sprintf("Processed %d of %d: %d matched, %d unresolved, %d skipped in %s",
			stats.Attempted, stats.Pending, stats.Matched, stats.Unresolved, stats.Skipped, duration),
		tags: []string{"seasonmap", "run", "completed"},
	}
	if stats.Interrupted {
		data.title = "seasonmap - Run Interrupted"
		data.tags = []string{"seasonmap", "run", "interrupted"}
		data.priority = "high"
	}
	if stats.RunID != "" {
		data.message += "\nRun: " + stats.RunID
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" during ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "seasonmap - Error",
		message:  builder.String(),
		tags:     []string{"seasonmap", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "seasonmap - Test",
		message:  "Notification system test",
		tags:     []string{"seasonmap", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		header.Set("Priority", data.priority)
	}

	resp, ok := n.requester.Do(ctx, http.MethodPost, n.endpoint, httpretry.Options{
		Header: header,
		Body:   []byte(data.message),
	})
	if !ok {
		return fmt.Errorf("send ntfy notification: %s unreachable", n.endpoint)
	}
	if resp.StatusCode >= 300 {
		body := strings.TrimSpace(string(resp.Body))
		if len(body) > 2048 {
			body = body[:2048]
		}
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyRunFinished(context.Context, RunStats) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error  { return nil }
func (noopService) TestNotification(context.Context) error            { return nil }
