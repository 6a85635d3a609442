// Package webhook relays product events to a Zapier catch hook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"topmarketingjobs/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventApplicationCreated = "application.created"
	EventAlertSubscribed    = "alert.subscribed"
)

const maxAttempts = 3

// Sender fires events without waiting for delivery.
type Sender interface {
	SendEvent(eventType string, payload any) bool
}

// Event is the JSON body posted to the hook.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Client posts events to a Zapier webhook URL
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
	userAgent  string
	backoff    time.Duration

	wg sync.WaitGroup
}

// New returns a client; an empty url disables delivery.
func New(url string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:    logger,
		metrics:   m,
		userAgent: "TopMarketingJobs/1.0",
		backoff:   time.Second,
	}
}

func (c *Client) Enabled() bool {
	return c.url != ""
}

// SendEvent queues one event and reports whether it was accepted. Delivery
// happens in the background and never blocks the caller.
func (c *Client) SendEvent(eventType string, payload any) bool {
	if !c.Enabled() {
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to encode webhook payload",
			zap.String("event", eventType),
			zap.Error(err),
		)
		return false
	}

	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), maxAttempts*(c.httpClient.Timeout+c.backoff*maxAttempts))
		defer cancel()

		if err := c.Deliver(ctx, event); err != nil {
			c.metrics.WebhookDelivered(metrics.OutcomeError)
			c.logger.Error("webhook delivery failed",
				zap.String("event", event.Type),
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			return
		}
		c.metrics.WebhookDelivered(metrics.OutcomeOK)
	}()

	return true
}

// Wait blocks until every queued event has been delivered or dropped.
func (c *Client) Wait() {
	c.wg.Wait()
}

// Deliver posts event with retries. Client errors (4xx other than 429) are
// not retried.
func (c *Client) Deliver(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.backoff
			c.logger.Debug("retrying webhook",
				zap.String("event_id", event.ID),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook cancelled: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		retry, err := c.post(ctx, body)
		if err == nil {
			c.logger.Debug("webhook delivered",
				zap.String("event", event.Type),
				zap.String("event_id", event.ID),
			)
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("webhook failed after retries: %w", lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}

	c.logger.Warn("webhook error response",
		zap.Int("status", resp.StatusCode),
		zap.String("body", string(respBody)),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("rate limit exceeded")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return false, fmt.Errorf("webhook rejected: status %d", resp.StatusCode)
	default:
		return true, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
