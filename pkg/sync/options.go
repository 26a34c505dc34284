// Package sync applies a write plan against the remote table store: batching,
// retry with backoff, bounded parallel dispatch under a shared rate-limit
// budget, and partial-failure bookkeeping into the final report.
package sync

import (
	"time"

	"github.com/dotshop/sheetsync/internal/ratelimit"
	"github.com/dotshop/sheetsync/pkg/constants"
	"github.com/dotshop/sheetsync/pkg/errors"
)

// Mode controls how the executor treats the classified plan.
type Mode int

const (
	// ModeUpdate performs full reconciliation: inserts, in-place updates,
	// unchanged rows left untouched.
	ModeUpdate Mode = iota

	// ModeAppendOnly treats the sheet as an append log: update and
	// unchanged classifications become no-ops.
	ModeAppendOnly

	// ModeReplace clears all data rows first and re-appends everything.
	ModeReplace
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeUpdate:
		return "update"
	case ModeAppendOnly:
		return "append"
	case ModeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as accepted on the CLI.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "update", "":
		return ModeUpdate, nil
	case "append", "append_only", "append-only":
		return ModeAppendOnly, nil
	case "replace":
		return ModeReplace, nil
	default:
		return ModeUpdate, &errors.ValidationError{
			Field:   "Mode",
			Value:   s,
			Message: "must be one of update, append, replace",
		}
	}
}

// Options controls executor behavior for one sync cycle.
type Options struct {
	Mode   Mode
	DryRun bool // classify and report without mutating the remote store

	// Retry policy
	MaxRetries   int           // retries after the first attempt
	RetryBackoff time.Duration // base backoff, doubled per attempt
	MaxBackoff   time.Duration // backoff cap

	// Batching and dispatch
	BatchRows   int           // max rows per append/update call
	Workers     int           // worker pool bound for update batches
	CallTimeout time.Duration // timeout per remote call attempt

	// Limiter is the shared call budget consulted before every remote
	// call. Never a package-level singleton.
	Limiter *ratelimit.Bucket

	// Sleeper performs retry waits; tests inject a recording fake.
	Sleeper Sleeper
}

// Defaults returns the default executor options.
func Defaults() *Options {
	return &Options{
		Mode:         ModeUpdate,
		DryRun:       false,
		MaxRetries:   constants.MaxRetries,
		RetryBackoff: constants.RetryBackoff,
		MaxBackoff:   constants.MaxRetryBackoff,
		BatchRows:    constants.MaxBatchRows,
		Workers:      constants.MaxConcurrentBatches,
		CallTimeout:  constants.CallTimeout,
		Limiter:      ratelimit.New(constants.DefaultRateLimit, constants.RateWindow),
		Sleeper:      stdSleeper{},
	}
}

// Clone returns a shallow copy. The rate limiter is shared between the copy
// and the original so all cycles draw from one call budget.
func (o *Options) Clone() *Options {
	c := *o
	return &c
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks that the options are usable.
func (o *Options) Validate() error {
	if o.MaxRetries < 0 {
		return &errors.ValidationError{Field: "MaxRetries", Value: o.MaxRetries, Message: "must be non-negative"}
	}
	if o.RetryBackoff < 0 {
		return &errors.ValidationError{Field: "RetryBackoff", Value: o.RetryBackoff, Message: "must be non-negative"}
	}
	if o.BatchRows <= 0 {
		return &errors.ValidationError{Field: "BatchRows", Value: o.BatchRows, Message: "must be positive"}
	}
	if o.Workers <= 0 {
		return &errors.ValidationError{Field: "Workers", Value: o.Workers, Message: "must be positive"}
	}
	if o.CallTimeout <= 0 {
		return &errors.ValidationError{Field: "CallTimeout", Value: o.CallTimeout, Message: "must be positive"}
	}
	return nil
}

// Option is a function that configures executor Options.
type Option func(*Options)

// WithMode configures the sync mode.
func WithMode(mode Mode) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithMaxRetries configures the retry bound for a failing batch call.
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

// WithBackoff configures the base and maximum retry backoff.
func WithBackoff(base, maxBackoff time.Duration) Option {
	return func(o *Options) {
		o.RetryBackoff = base
		o.MaxBackoff = maxBackoff
	}
}

// WithBatchRows configures the maximum rows per remote call.
func WithBatchRows(n int) Option {
	return func(o *Options) {
		o.BatchRows = n
	}
}

// WithWorkers configures the worker pool bound for update batches.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithCallTimeout configures the per-attempt remote call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.CallTimeout = d
	}
}

// WithLimiter configures the shared rate-limit budget.
func WithLimiter(b *ratelimit.Bucket) Option {
	return func(o *Options) {
		o.Limiter = b
	}
}

// WithSleeper configures the retry wait implementation.
func WithSleeper(s Sleeper) Option {
	return func(o *Options) {
		o.Sleeper = s
	}
}
