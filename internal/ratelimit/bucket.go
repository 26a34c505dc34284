// Package ratelimit provides the shared call budget for remote table
// mutations. One Bucket is created per sync cycle and passed to every
// executor worker; it is the only mutable state shared between workers.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Bucket is a mutex-guarded token bucket. The full budget refills once per
// window, mirroring the per-minute quota of the sheets API.
type Bucket struct {
	mu        sync.Mutex
	tokens    int
	capacity  int
	window    time.Duration
	lastReset time.Time
	now       func() time.Time
}

// New creates a bucket allowing capacity calls per window.
func New(capacity int, window time.Duration) *Bucket {
	return newBucket(capacity, window, time.Now)
}

// newBucket allows tests to inject a clock.
func newBucket(capacity int, window time.Duration, now func() time.Time) *Bucket {
	return &Bucket{
		tokens:    capacity,
		capacity:  capacity,
		window:    window,
		lastReset: now(),
		now:       now,
	}
}

// take consumes a token if one is available and otherwise reports how long
// until the next refill.
func (b *Bucket) take() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if since := b.now().Sub(b.lastReset); since >= b.window {
		b.tokens = b.capacity
		b.lastReset = b.now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}

	return false, b.window - b.now().Sub(b.lastReset)
}

// Allow consumes a token without blocking, reporting whether one was
// available.
func (b *Bucket) Allow() bool {
	ok, _ := b.take()
	return ok
}

// Wait blocks until a token is available or the context is done. Every
// worker calls Wait before each remote call.
func (b *Bucket) Wait(ctx context.Context) error {
	for {
		ok, wait := b.take()
		if ok {
			return nil
		}
		if wait <= 0 {
			wait = time.Millisecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
