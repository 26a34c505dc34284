// Package diff classifies incoming canonical rows against a remote snapshot
// and produces the write plan the executor applies: inserts for unknown
// identity keys, updates where the remote content differs, and unchanged
// markers otherwise. The diff is sync-forward: rows present remotely but
// absent from the incoming batch are never touched.
package diff

import (
	"github.com/dotshop/sheetsync/pkg/record"
	"github.com/dotshop/sheetsync/pkg/tables"
)

// Kind classifies a write action.
type Kind int

// Write action kinds.
const (
	Insert Kind = iota
	Update
	Unchanged
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Action is one classified write action. Index is the 1-based remote row
// number; it is zero for inserts, whose final position is decided by the
// store at append time.
type Action struct {
	Kind  Kind
	Index int
	Row   record.Row
}

// differ holds diff configuration.
type differ struct {
	volatile map[int]bool // value indexes excluded from comparison
}

// Option configures a diff.
type Option func(*differ)

// WithVolatileColumns excludes the given value indexes from content
// comparison. Columns like a last-updated stamp change on every normalize
// and must not force spurious updates.
func WithVolatileColumns(indexes ...int) Option {
	return func(d *differ) {
		for _, i := range indexes {
			d.volatile[i] = true
		}
	}
}

// Plan compares incoming rows against the remote snapshot and returns one
// action per incoming row, in stable input order. Duplicate identity keys in
// the incoming batch were already merged by the normalizer; if the remote
// sheet itself holds duplicate keys, the last occurrence wins.
func Plan(incoming []record.Row, remote []tables.RemoteRow, opts ...Option) []Action {
	d := &differ{volatile: make(map[int]bool)}
	for _, opt := range opts {
		opt(d)
	}

	byKey := make(map[record.Key]tables.RemoteRow, len(remote))
	for _, rr := range remote {
		byKey[rr.Row.Key] = rr
	}

	plan := make([]Action, 0, len(incoming))
	for _, row := range incoming {
		existing, ok := byKey[row.Key]
		switch {
		case !ok:
			plan = append(plan, Action{Kind: Insert, Row: row})
		case d.changed(existing.Row, row):
			plan = append(plan, Action{Kind: Update, Index: existing.Index, Row: row})
		default:
			plan = append(plan, Action{Kind: Unchanged, Index: existing.Index, Row: row})
		}
	}

	return plan
}

// changed reports whether the incoming row differs from the remote row in
// any non-volatile column. Comparison is exact per normalized cell value.
func (d *differ) changed(remote, incoming record.Row) bool {
	n := len(incoming.Values)
	if len(remote.Values) > n {
		n = len(remote.Values)
	}
	for i := 0; i < n; i++ {
		if d.volatile[i] {
			continue
		}
		if cell(remote.Values, i) != cell(incoming.Values, i) {
			return true
		}
	}
	return false
}

// cell reads a value tolerating short rows; trailing empty cells are not
// returned by the sheets API, so a short remote row equals an incoming row
// with empty tail values.
func cell(values []string, i int) string {
	if i >= len(values) {
		return ""
	}
	return values[i]
}
