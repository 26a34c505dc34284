package sync

import (
	"sort"

	"github.com/dotshop/sheetsync/pkg/diff"
	"github.com/dotshop/sheetsync/pkg/record"
)

// batch is a single remote call's worth of rows. For update batches, start
// is the 1-based sheet row of the first row and the rows cover the
// contiguous range start..start+len(rows)-1.
type batch struct {
	kind  diff.Kind
	start int
	rows  []record.Row
}

// keys returns the identity keys the batch carries, for failure bookkeeping.
func (b batch) keys() []record.Key {
	keys := make([]record.Key, len(b.rows))
	for i, r := range b.rows {
		keys[i] = r.Key
	}
	return keys
}

// buildBatches groups the plan into the minimal set of remote calls:
// inserts into append batches in plan order, updates into contiguous
// row-range batches sorted by remote index. Both respect maxRows. Unchanged
// actions produce no calls and are returned as a count.
func buildBatches(plan []diff.Action, maxRows int) (inserts, updates []batch, unchanged int) {
	var pendingInsert []record.Row
	var pendingUpdates []diff.Action

	flushInserts := func() {
		for len(pendingInsert) > 0 {
			n := len(pendingInsert)
			if n > maxRows {
				n = maxRows
			}
			inserts = append(inserts, batch{kind: diff.Insert, rows: pendingInsert[:n]})
			pendingInsert = pendingInsert[n:]
		}
	}

	for _, action := range plan {
		switch action.Kind {
		case diff.Insert:
			pendingInsert = append(pendingInsert, action.Row)
		case diff.Update:
			pendingUpdates = append(pendingUpdates, action)
		case diff.Unchanged:
			unchanged++
		}
	}
	flushInserts()

	// Contiguous remote ranges collapse into one call. Ranges never
	// overlap: each remote row index appears at most once in a plan.
	sort.Slice(pendingUpdates, func(i, j int) bool {
		return pendingUpdates[i].Index < pendingUpdates[j].Index
	})

	var current *batch
	for _, action := range pendingUpdates {
		contiguous := current != nil &&
			action.Index == current.start+len(current.rows) &&
			len(current.rows) < maxRows
		if contiguous {
			current.rows = append(current.rows, action.Row)
			continue
		}
		updates = append(updates, batch{kind: diff.Update, start: action.Index, rows: []record.Row{action.Row}})
		current = &updates[len(updates)-1]
	}

	return inserts, updates, unchanged
}
