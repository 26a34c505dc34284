package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowConsumesBudget(t *testing.T) {
	b := New(3, time.Minute)

	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow(), "budget exhausted")
}

func TestBudgetRefillsAfterWindow(t *testing.T) {
	current := time.Date(2025, 11, 2, 6, 0, 0, 0, time.UTC)
	b := newBucket(1, time.Minute, func() time.Time { return current })

	require.True(t, b.Allow())
	require.False(t, b.Allow())

	current = current.Add(61 * time.Second)
	assert.True(t, b.Allow(), "window elapsed, budget refilled")
}

func TestWaitReturnsImmediatelyWithTokens(t *testing.T) {
	b := New(1, time.Minute)
	require.NoError(t, b.Wait(context.Background()))
}

func TestWaitHonorsCancellation(t *testing.T) {
	b := New(1, time.Minute)
	require.True(t, b.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitUnblocksOnRefill(t *testing.T) {
	b := New(1, 30*time.Millisecond)
	require.True(t, b.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, b.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestConcurrentWaiters(t *testing.T) {
	b := New(10, 20*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 15)
	for i := 0; i < 15; i++ {
		go func() {
			done <- b.Wait(ctx)
		}()
	}

	for i := 0; i < 15; i++ {
		require.NoError(t, <-done)
	}
}
