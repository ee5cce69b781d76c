package crawl

import (
	"context"
	"math/rand/v2"
	"time"
)

// Jitter is a uniformly random delay between Min and Max.
// The zero value never waits.
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// Next returns a random duration in [Min, Max].
func (j Jitter) Next() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}
	return j.Min + rand.N(j.Max-j.Min+1)
}

// Sleep waits for a random duration or until ctx is done.
func (j Jitter) Sleep(ctx context.Context) error {
	return sleep(ctx, j.Next())
}

// Backoff returns a Backoff that draws a fresh random delay per retry.
func (j Jitter) Backoff() Backoff {
	return func(int) time.Duration { return j.Next() }
}

// Delays is the throttling policy of a session.
type Delays struct {
	// Product is waited before each detail page visit.
	Product Jitter

	// Retry is waited between product-visibility retries on a listing.
	Retry Jitter

	// Recheck is waited before recounting product links after a
	// next-page click yielded too few.
	Recheck time.Duration
}

// DefaultDelays returns the production throttling policy.
func DefaultDelays() Delays {
	return Delays{
		Product: Jitter{Min: 1 * time.Second, Max: 2 * time.Second},
		Retry:   Jitter{Min: 1500 * time.Millisecond, Max: 3 * time.Second},
		Recheck: 2 * time.Second,
	}
}

// Timeouts bound each blocking page interaction.
type Timeouts struct {
	Navigate    time.Duration
	ProductWait time.Duration
	Idle        time.Duration
	Action      time.Duration
	Detail      time.Duration
}

// DefaultTimeouts returns the production timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Navigate:    60 * time.Second,
		ProductWait: 15 * time.Second,
		Idle:        10 * time.Second,
		Action:      5 * time.Second,
		Detail:      30 * time.Second,
	}
}

// withTimeout runs fn under a context bounded by d. A non-positive d
// leaves ctx unbounded.
func withTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return fn(ctx)
}
