// Package sheetsync reconciles scraped product records against a remote
// spreadsheet. Each cycle normalizes the incoming batch, fetches the current
// remote snapshot, computes a keyed insert/update plan, and executes it with
// batching, retries, and rate limiting. Rows present remotely but absent
// from the batch are never touched.
package sheetsync

import (
	"context"

	"github.com/dotshop/sheetsync/pkg/diff"
	"github.com/dotshop/sheetsync/pkg/errors"
	"github.com/dotshop/sheetsync/pkg/logging"
	"github.com/dotshop/sheetsync/pkg/record"
	"github.com/dotshop/sheetsync/pkg/sync"
	"github.com/dotshop/sheetsync/pkg/tables"
)

// Syncer runs reconciliation cycles against one worksheet. It is safe for
// concurrent use; each Sync call fetches its own snapshot and carries its
// own state.
type Syncer struct {
	client     tables.Client
	ref        tables.Ref
	normalizer *record.Normalizer
	opts       *sync.Options
}

// New creates a Syncer for the given remote table.
func New(client tables.Client, ref tables.Ref, opts ...Option) (*Syncer, error) {
	if client == nil {
		return nil, &errors.ValidationError{Field: "client", Message: "must not be nil"}
	}
	if ref.SpreadsheetID == "" || ref.Sheet == "" {
		return nil, &errors.ValidationError{Field: "ref", Value: ref, Message: "spreadsheet ID and sheet name are required"}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &Syncer{
		client:     client,
		ref:        ref,
		normalizer: record.NewNormalizer(cfg.normalizerOpts...),
		opts:       cfg.syncOpts,
	}, nil
}

// Sync reconciles one batch of raw records against the sheet and returns the
// cycle's report. Per-call options override the Syncer's configuration for
// this cycle only.
//
// Fatal failures (missing spreadsheet, missing permissions) abort the cycle
// with a nil report. Per-record normalization failures and per-batch write
// failures are recorded in the report instead.
func (s *Syncer) Sync(ctx context.Context, raws []record.Raw, opts ...sync.Option) (*sync.Report, error) {
	cycleOpts := s.opts.Clone().Apply(opts...)
	ctx = logging.WithSheet(ctx, s.ref.SpreadsheetID, s.ref.Sheet)

	rows, skipped := s.normalizer.NormalizeBatch(raws)
	for _, sk := range skipped {
		logging.FromContext(ctx).Warn().
			Err(sk.Err).
			Int("record", sk.Index).
			Msg("Skipping record that has no identity")
	}

	plan, err := s.plan(ctx, rows, cycleOpts)
	if err != nil {
		return nil, err
	}

	report, err := sync.Execute(ctx, plan, s.client, s.ref, cycleOpts)
	if err != nil {
		return nil, err
	}

	for _, sk := range skipped {
		report.Skipped = append(report.Skipped, sync.SkippedRecord{Index: sk.Index, Err: sk.Err})
	}

	logging.FromContext(ctx).Info().
		Str("summary", report.Summary()).
		Int("skipped", len(report.Skipped)).
		Msg("Sync cycle finished")
	return report, nil
}

// plan builds the action plan for the cycle. Replace mode clears the sheet
// and inserts everything; the other modes diff against a fresh snapshot.
func (s *Syncer) plan(ctx context.Context, rows []record.Row, opts *sync.Options) ([]diff.Action, error) {
	if opts.Mode == sync.ModeReplace {
		if !opts.DryRun {
			clearer, ok := s.client.(tables.Clearer)
			if !ok {
				return nil, errors.New("replace mode requires a client that can clear the sheet")
			}
			if err := clearer.Clear(ctx, s.ref); err != nil {
				return nil, err
			}
		}
		plan := make([]diff.Action, len(rows))
		for i, r := range rows {
			plan[i] = diff.Action{Kind: diff.Insert, Row: r}
		}
		return plan, nil
	}

	remote, err := sync.FetchSnapshot(ctx, s.client, s.ref, opts)
	if err != nil {
		return nil, err
	}

	volatile := s.normalizer.Schema().Index(record.ColLastUpdated)
	return diff.Plan(rows, remote, diff.WithVolatileColumns(volatile)), nil
}
