package sync

import (
	"fmt"

	"github.com/dotshop/sheetsync/pkg/record"
)

// Failure records one identity key whose batch exhausted its retries.
type Failure struct {
	Key record.Key
	Err error
}

// SkippedRecord records a raw record excluded before diffing by a
// normalization failure. Index is the record's position in the input batch.
type SkippedRecord struct {
	Index int
	Err   error
}

// Report is the result of one sync cycle. It is the only artifact that
// outlives the cycle and is immutable once returned.
type Report struct {
	Inserted  int
	Updated   int
	Unchanged int
	Failed    int

	Failures []Failure
	Skipped  []SkippedRecord

	Mode   Mode
	DryRun bool
}

// HasFailures returns true if any batch failed or any record was skipped.
func (r *Report) HasFailures() bool {
	return r.Failed > 0 || len(r.Skipped) > 0
}

// Summary returns a human-readable one-line summary, e.g. "+25 | ~0 | =0".
func (r *Report) Summary() string {
	s := fmt.Sprintf("+%d | ~%d | =%d", r.Inserted, r.Updated, r.Unchanged)
	if r.Failed > 0 {
		s += fmt.Sprintf(" | !%d failed", r.Failed)
	}
	if r.DryRun {
		s += " (dry run)"
	}
	return s
}

// FailedKeys returns the identity keys recorded as failed, in the order the
// failures were recorded.
func (r *Report) FailedKeys() []record.Key {
	keys := make([]record.Key, len(r.Failures))
	for i, f := range r.Failures {
		keys[i] = f.Key
	}
	return keys
}
