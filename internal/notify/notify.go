// Package notify implements the outbound notification hook: fire-and-forget
// JSON webhooks on successful completion and on bookmark persistence.
// Delivery failures are logged and never escalated into the invocation
// outcome.
package notify

import (
	"context"
	"time"

	"github.com/vk/stagehand/internal/ctxlog"
	"resty.dev/v3"
)

// Event names emitted by the harness.
const (
	EventCompleted = "completed"
	EventBookmark  = "bookmark"
)

// Event is the webhook payload.
type Event struct {
	Event  string `json:"event"`
	App    string `json:"app"`
	Detail any    `json:"detail,omitempty"`
	SentAt string `json:"sent_at"`
}

// Client posts events to a single webhook URL. A nil client or an empty URL
// disables notification entirely.
type Client struct {
	url string
	hc  *resty.Client
}

// New creates a notification client for the given webhook URL. An empty URL
// returns nil, which every method treats as "notifications disabled".
func New(url string) *Client {
	if url == "" {
		return nil
	}
	return &Client{
		url: url,
		hc:  resty.New().SetTimeout(10 * time.Second),
	}
}

// Fire posts one event. It never returns an error; failures are logged at
// WARN and forgotten.
func (c *Client) Fire(ctx context.Context, event, app string, detail any) {
	if c == nil {
		return
	}
	logger := ctxlog.FromContext(ctx)

	payload := Event{
		Event:  event,
		App:    app,
		Detail: detail,
		SentAt: time.Now().UTC().Format(time.RFC3339),
	}

	res, err := c.hc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.url)
	if err != nil {
		logger.Warn("Notification %q could not be delivered: %s", event, err)
		return
	}
	if res.IsError() {
		logger.Warn("Notification %q rejected by %s with status %d.", event, c.url, res.StatusCode())
		return
	}
	logger.Debug("Notification %q delivered to %s.", event, c.url)
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.hc.Close()
}
