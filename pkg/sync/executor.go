package sync

import (
	"context"
	stdsync "sync"

	"github.com/dotshop/sheetsync/pkg/diff"
	"github.com/dotshop/sheetsync/pkg/errors"
	"github.com/dotshop/sheetsync/pkg/logging"
	"github.com/dotshop/sheetsync/pkg/tables"
)

// Execute applies a write plan against the remote table store and returns
// the cycle report. Append batches run sequentially in plan order, because
// append order decides final row placement. Update batches target disjoint
// row ranges and are dispatched across a bounded worker pool. Every call
// consults the shared rate-limit budget and runs under the retry policy.
//
// A batch that exhausts its retries marks each of its identity keys failed
// and execution continues with the remaining batches. PermissionDenied and
// NotFound abort the cycle: the error is returned and no report is produced.
func Execute(ctx context.Context, plan []diff.Action, client tables.Client, ref tables.Ref, opts *Options) (*Report, error) {
	if opts == nil {
		opts = Defaults()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	plan = applyMode(plan, opts.Mode)
	inserts, updates, unchanged := buildBatches(plan, opts.BatchRows)

	report := &Report{Mode: opts.Mode, DryRun: opts.DryRun, Unchanged: unchanged}

	if opts.DryRun {
		for _, b := range inserts {
			report.Inserted += len(b.rows)
		}
		for _, b := range updates {
			report.Updated += len(b.rows)
		}
		logging.FromContext(ctx).Info().
			Str("summary", report.Summary()).
			Msg("Dry run completed, no changes applied")
		return report, nil
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ex := &executor{
		client:  client,
		ref:     ref,
		opts:    opts,
		retrier: newRetrier(opts),
		report:  report,
		cancel:  cancel,
	}

	// Appends first, one at a time, preserving plan order.
	for _, b := range inserts {
		if ctx.Err() != nil || ex.fatal() != nil {
			break
		}
		ex.run(ctx, b)
	}

	ex.dispatch(ctx, updates)

	if err := ex.fatal(); err != nil {
		return nil, err
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

// executor holds the mutable bookkeeping shared between batch workers.
type executor struct {
	client  tables.Client
	ref     tables.Ref
	opts    *Options
	retrier retrier

	mu       stdsync.Mutex
	report   *Report
	fatalErr error
	cancel   context.CancelFunc
}

// dispatch runs update batches across the bounded worker pool. Cancellation
// is checked cooperatively before each batch; in-flight calls are awaited.
func (ex *executor) dispatch(ctx context.Context, batches []batch) {
	if len(batches) == 0 {
		return
	}

	workers := ex.opts.Workers
	if workers > len(batches) {
		workers = len(batches)
	}

	work := make(chan batch)
	var wg stdsync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range work {
				if ctx.Err() != nil || ex.fatal() != nil {
					continue
				}
				ex.run(ctx, b)
			}
		}()
	}

	for _, b := range batches {
		work <- b
	}
	close(work)
	wg.Wait()
}

// run executes one batch call under the retry policy and records the outcome.
func (ex *executor) run(ctx context.Context, b batch) {
	err := ex.retrier.do(ctx, b.kind.String(), func(ctx context.Context) error {
		if ex.opts.Limiter != nil {
			if err := ex.opts.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, ex.opts.CallTimeout)
		defer cancel()

		if b.kind == diff.Insert {
			return ex.client.Append(callCtx, ex.ref, b.rows)
		}
		return ex.client.UpdateRange(callCtx, ex.ref, b.start, b.rows)
	})

	ex.mu.Lock()
	defer ex.mu.Unlock()

	switch {
	case err == nil:
		if b.kind == diff.Insert {
			ex.report.Inserted += len(b.rows)
		} else {
			ex.report.Updated += len(b.rows)
		}
	case errors.IsFatal(err):
		if ex.fatalErr == nil {
			ex.fatalErr = err
			ex.cancel()
		}
	case errors.IsCanceled(err):
		// Cycle canceled between attempts; the batch was not applied and
		// its records are not marked failed.
	default:
		logging.FromContext(ctx).Error().
			Err(err).
			Str("batch_kind", b.kind.String()).
			Int("batch_rows", len(b.rows)).
			Msg("Batch failed permanently")
		for _, key := range b.keys() {
			ex.report.Failures = append(ex.report.Failures, Failure{Key: key, Err: err})
		}
		ex.report.Failed += len(b.rows)
	}
}

// fatal returns the first fatal error observed, if any.
func (ex *executor) fatal() error {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.fatalErr
}

// applyMode rewrites the plan for the requested mode. Append-only keeps
// inserts and neutralizes updates into unchanged markers.
func applyMode(plan []diff.Action, mode Mode) []diff.Action {
	if mode != ModeAppendOnly {
		return plan
	}
	out := make([]diff.Action, len(plan))
	for i, action := range plan {
		if action.Kind == diff.Update {
			action.Kind = diff.Unchanged
		}
		out[i] = action
	}
	return out
}

// FetchSnapshot reads the full remote snapshot under the same retry policy
// and rate-limit budget the executor uses for writes.
func FetchSnapshot(ctx context.Context, client tables.Client, ref tables.Ref, opts *Options) ([]tables.RemoteRow, error) {
	if opts == nil {
		opts = Defaults()
	}

	r := newRetrier(opts)
	var snapshot []tables.RemoteRow
	err := r.do(ctx, "fetch", func(ctx context.Context) error {
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, opts.CallTimeout)
		defer cancel()

		rows, err := client.FetchAll(callCtx, ref)
		if err != nil {
			return err
		}
		snapshot = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
