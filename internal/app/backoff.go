package app

import (
	"context"
	"math/rand"
	"time"
)

// Default retry backoff bounds.
const (
	DefaultBackoffInitial = 200 * time.Millisecond
	DefaultBackoffMax     = 5 * time.Second
)

// Backoff implements exponential backoff with jitter.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff creates a backoff with the given bounds.
func NewBackoff(initial, max time.Duration) *Backoff {
	if initial <= 0 {
		initial = DefaultBackoffInitial
	}
	if max < initial {
		max = initial
	}
	return &Backoff{initial: initial, max: max, current: initial}
}

// Wait sleeps for the current delay (±20% jitter) and doubles it.
// It returns early with ctx's error if ctx is done.
func (b *Backoff) Wait(ctx context.Context) error {
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	timer := time.NewTimer(time.Duration(float64(b.current) + jitter))
	defer timer.Stop()

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Reset returns to the initial delay.
func (b *Backoff) Reset() {
	b.current = b.initial
}

// Current returns the delay of the next Wait, before jitter.
func (b *Backoff) Current() time.Duration {
	return b.current
}
