// Package notify delivers event log records to configured subscriber
// endpoints. Delivery is best-effort with bounded retries; a subscriber
// that stays unreachable loses events rather than stalling the sender.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bmcd/pkg/logger"
	"bmcd/pkg/models"
)

// Sender posts events to subscriber URLs.
type Sender struct {
	httpc       *http.Client
	urls        []string
	maxAttempts int
	retryDelay  time.Duration
}

// Option configures a Sender.
type Option func(*Sender)

// WithRetry overrides the retry policy.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(s *Sender) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		s.retryDelay = delay
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sender) { s.httpc = c }
}

// NewSender returns a sender for the given subscriber URLs.
func NewSender(urls []string, opts ...Option) *Sender {
	s := &Sender{
		httpc:       &http.Client{Timeout: 10 * time.Second},
		urls:        append([]string(nil), urls...),
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Enabled reports whether any subscribers are configured.
func (s *Sender) Enabled() bool { return len(s.urls) > 0 }

// Send delivers ev to every subscriber, retrying each with the
// configured policy. The last error per subscriber is aggregated into
// the return value; partial delivery is not rolled back.
func (s *Sender) Send(ctx context.Context, ev models.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	var firstErr error
	for _, url := range s.urls {
		if err := s.sendOne(ctx, url, body); err != nil {
			logger.Error("notify_delivery_failed", "url", url, "event", ev.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Sender) sendOne(ctx context.Context, url string, body []byte) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.httpc.Do(req)
		if err != nil {
			lastErr = err
			logger.Debug("notify_attempt_failed", "url", url, "attempt", attempt, "error", err)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("subscriber returned status %d", resp.StatusCode)
		logger.Debug("notify_attempt_failed", "url", url, "attempt", attempt, "status", resp.StatusCode)
	}
	return fmt.Errorf("after %d attempts: %w", s.maxAttempts, lastErr)
}
