package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryWithBackoff retries fn up to maxRetries times with quadratic backoff.
// It gives up early when ctx is done.
func RetryWithBackoff(ctx context.Context, maxRetries int, fn func() error, logger *Logger) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			logger.Warn("Retrying (attempt %d/%d) after %v...", attempt+1, maxRetries, backoff)
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w (last error: %v)", ctx.Err(), lastErr)
			case <-time.After(backoff):
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			logger.Error("Attempt %d failed: %v", attempt+1, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", maxRetries, lastErr)
}
