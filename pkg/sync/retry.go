package sync

import (
	"context"
	"time"

	"github.com/dotshop/sheetsync/pkg/errors"
	"github.com/dotshop/sheetsync/pkg/logging"
)

// Sleeper performs retry waits. The executor never calls time.Sleep
// directly, so retry timing is testable without real network timing.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// stdSleeper waits on a timer, honoring context cancellation.
type stdSleeper struct{}

func (stdSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retrier drives one batch call through an explicit attempt/wait/give-up
// loop. Retry count and backoff are plain state, not nested error handling.
type retrier struct {
	max     int
	base    time.Duration
	cap     time.Duration
	sleeper Sleeper
}

func newRetrier(o *Options) retrier {
	return retrier{
		max:     o.MaxRetries,
		base:    o.RetryBackoff,
		cap:     o.MaxBackoff,
		sleeper: o.Sleeper,
	}
}

// do runs op until it succeeds, fails terminally, or exhausts the retry
// budget. Only rate-limit, transient, and timeout failures are retried.
func (r retrier) do(ctx context.Context, operation string, op func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if errors.IsFatal(err) || errors.IsCanceled(err) || !errors.IsTransient(err) {
			return err
		}
		if attempt >= r.max {
			logging.FromContext(ctx).Warn().
				Err(err).
				Str("operation", operation).
				Int("attempts", attempt+1).
				Msg("Giving up after exhausting retries")
			return err
		}

		wait := r.backoff(attempt)
		if ra := errors.RetryAfter(err); ra > wait {
			wait = ra
		}

		logging.FromContext(ctx).Debug().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("Transient failure, backing off")

		if serr := r.sleeper.Sleep(ctx, wait); serr != nil {
			return serr
		}
	}
}

// backoff returns the exponential wait for the given attempt, capped.
func (r retrier) backoff(attempt int) time.Duration {
	d := r.base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= r.cap {
			return r.cap
		}
	}
	if d > r.cap {
		return r.cap
	}
	return d
}
