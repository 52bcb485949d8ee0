// Package retry runs an operation a bounded number of times with a fixed
// delay between attempts.
package retry

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidPolicy = errors.New("retry: max attempts must be at least 1")

// Policy describes how often and on which errors an operation is retried.
// MaxAttempts counts the first call. A nil Retryable retries nothing.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

// Do calls fn until it succeeds, returns a non-retryable error or the
// attempt budget is spent. The last error is returned unchanged so callers
// can inspect it with errors.Is / errors.As.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, ErrInvalidPolicy
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == p.MaxAttempts || p.Retryable == nil || !p.Retryable(err) {
			break
		}

		if err := sleep(ctx, p.Delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
