package collect

import (
	"context"
	"fmt"
	"time"
)

// Policy retries a failing operation with linearly growing delay. The
// wait before attempt n+1 is Delay*n, so a 2s policy sleeps 2s, then
// 4s, then 6s.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy matches the collection defaults: three attempts with a
// two second base delay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Do runs op until it succeeds or attempts are exhausted. It returns
// the number of attempts made and the last error. Context cancellation
// interrupts both the operation and the inter-attempt wait.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return attempt - 1, fmt.Errorf("%w (after: %v)", err, lastErr)
			}
			return attempt - 1, err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == maxAttempts {
			break
		}

		wait := p.Delay * time.Duration(attempt)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, fmt.Errorf("%w (after: %v)", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return maxAttempts, fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
