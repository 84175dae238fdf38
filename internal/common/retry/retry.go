// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config bounds a retry loop. MaxAttempts counts the first call.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var Default = Config{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

// Always treats every error as transient.
func Always(error) bool { return true }

// Backoff returns the delay before attempt n+1 (n is zero-based): BaseDelay * 2^n, capped at MaxDelay.
func (c Config) Backoff(n int) time.Duration {
	delay := c.BaseDelay * time.Duration(1<<n)
	if c.MaxDelay > 0 && (delay > c.MaxDelay || delay <= 0) {
		delay = c.MaxDelay
	}
	return delay
}

// Do calls fn until it succeeds, returns a non-retryable error, attempts run out, or ctx ends.
// The last error is returned wrapped with the attempt count.
func Do(ctx context.Context, cfg Config, retryable func(error) bool, fn func(context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if retryable == nil {
		retryable = Always
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("cancelled after %d attempts: %w", attempt, lastErr)
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(cfg.Backoff(attempt)):
		case <-ctx.Done():
			return fmt.Errorf("cancelled after %d attempts: %w", attempt+1, lastErr)
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
