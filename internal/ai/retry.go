package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryClient retries transient upstream failures with exponential backoff.
// Authentication failures and cancelled contexts are returned immediately.
type RetryClient struct {
	next       Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// NewRetryClient wraps next with at most maxRetries additional attempts.
func NewRetryClient(next Client, maxRetries int, backoff time.Duration, logger *slog.Logger) *RetryClient {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &RetryClient{
		next:       next,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}
}

// Chat forwards to the wrapped client, retrying while IsRetryable allows it.
func (c *RetryClient) Chat(ctx context.Context, messages []Message) (string, error) {
	var lastErr error
	delay := c.backoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WarnContext(ctx, "retrying text generation",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", delay),
				slog.String("error", lastErr.Error()),
			)

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			case <-time.After(delay):
				delay *= 2
			}
		}

		content, err := c.next.Chat(ctx, messages)
		if err == nil {
			return content, nil
		}

		lastErr = err
		if ctx.Err() != nil || !IsRetryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("text generation failed after %d attempts: %w", c.maxRetries+1, lastErr)
}
