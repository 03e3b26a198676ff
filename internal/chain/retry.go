package chain

import (
	"context"
	"fmt"
	"time"
)

const maxRetryDelay = 10 * time.Second

// WithRetry calls fn until it succeeds, doubling the delay after each failure
// up to maxRetryDelay. The last error is returned once maxRetries retries
// are spent; ctx cancellation ends the wait early.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			if attempt == 0 {
				return err
			}
			return fmt.Errorf("after %d attempts: %w", attempt+1, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
