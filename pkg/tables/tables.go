// Package tables defines the interface to the remote tabular store.
// The reconciliation engine consumes the store only through Client; the
// Google Sheets implementation lives in internal/sheets.
package tables

import (
	"context"

	"github.com/dotshop/sheetsync/pkg/record"
)

// Ref identifies one worksheet inside a remote spreadsheet.
type Ref struct {
	SpreadsheetID string
	Sheet         string
}

// RemoteRow is a canonical row as last observed in the remote store, plus
// its remote position. Index is the 1-based sheet row number. RemoteRows are
// fetched fresh at the start of each sync cycle and never cached across
// cycles; the remote store may be edited out-of-band.
type RemoteRow struct {
	Index int
	Row   record.Row
}

// Client is the remote table store consumed by the engine.
//
// Implementations signal failures through the pkg/errors taxonomy:
// rate limiting as errors.ErrRateLimited (optionally with a retry-after
// hint), temporary failures as errors.ErrTransient, and unrecoverable
// conditions as errors.ErrPermissionDenied or errors.ErrNotFound.
type Client interface {
	// FetchAll reads the full data-row snapshot of the sheet.
	FetchAll(ctx context.Context, ref Ref) ([]RemoteRow, error)

	// Append appends rows after the current last data row.
	Append(ctx context.Context, ref Ref, rows []record.Row) error

	// UpdateRange overwrites a contiguous run of rows starting at the
	// 1-based sheet row startIndex.
	UpdateRange(ctx context.Context, ref Ref, startIndex int, rows []record.Row) error
}

// Clearer is an optional capability for stores that can drop all data rows
// while keeping headers. Required by replace mode only.
type Clearer interface {
	Clear(ctx context.Context, ref Ref) error
}
