package crawl

import (
	"context"
	"time"
)

// Backoff returns the delay before retry n, counting from zero.
type Backoff func(retry int) time.Duration

// Fixed returns a Backoff that waits delays[n] before retry n and repeats
// the last delay once the list is exhausted.
func Fixed(delays ...time.Duration) Backoff {
	return func(retry int) time.Duration {
		if len(delays) == 0 {
			return 0
		}
		if retry >= len(delays) {
			return delays[len(delays)-1]
		}
		return delays[retry]
	}
}

// DefaultRetryDelays returns the backoff delays for detail page navigation: 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{2 * time.Second, 4 * time.Second}
}

// Retry calls fn until it succeeds, making at most retries further attempts
// after the first. Before each retry it calls onRetry, when non-nil, and
// sleeps for backoff(n). The last error is returned when attempts run out;
// a canceled context ends the loop early with the context's error.
func Retry[T any](ctx context.Context, retries int, backoff Backoff, fn func(ctx context.Context) (T, error), onRetry func(retry int, err error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		// Don't wait after the last attempt
		if attempt == retries {
			break
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if onRetry != nil {
			onRetry(attempt+1, err)
		}

		var delay time.Duration
		if backoff != nil {
			delay = backoff(attempt)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// sleep waits for d or until ctx is done. A non-positive d returns at once.
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
