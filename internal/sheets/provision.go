package sheets

import (
	"context"
	"fmt"

	gsheets "google.golang.org/api/sheets/v4"

	"github.com/dotshop/sheetsync/pkg/errors"
	"github.com/dotshop/sheetsync/pkg/logging"
	"github.com/dotshop/sheetsync/pkg/tables"
)

// CreateSpreadsheet creates a new spreadsheet holding a single product sheet
// with a frozen, formatted header row. It returns the ref of the new sheet
// and the spreadsheet's edit URL.
func (c *Client) CreateSpreadsheet(ctx context.Context, title, sheetName string) (tables.Ref, string, error) {
	body := &gsheets.Spreadsheet{
		Properties: &gsheets.SpreadsheetProperties{
			Title:    title,
			Locale:   "fa_IR",
			TimeZone: "Asia/Tehran",
		},
		Sheets: []*gsheets.Sheet{{
			Properties: &gsheets.SheetProperties{
				Title: sheetName,
				GridProperties: &gsheets.GridProperties{
					FrozenRowCount: 1,
				},
			},
		}},
	}

	created, err := c.svc.Spreadsheets.Create(body).
		Fields("spreadsheetId", "spreadsheetUrl").
		Context(ctx).Do()
	if err != nil {
		return tables.Ref{}, "", mapError("create", err)
	}

	ref := tables.Ref{SpreadsheetID: created.SpreadsheetId, Sheet: sheetName}
	if err := c.EnsureHeaders(ctx, ref); err != nil {
		return ref, created.SpreadsheetUrl, err
	}

	logging.FromContext(ctx).Info().
		Str("spreadsheet_id", ref.SpreadsheetID).
		Str("url", created.SpreadsheetUrl).
		Msg("Spreadsheet created")
	return ref, created.SpreadsheetUrl, nil
}

// EnsureHeaders writes the schema's header row into row 1 and applies the
// header formatting. Existing headers are overwritten, data rows untouched.
func (c *Client) EnsureHeaders(ctx context.Context, ref tables.Ref) error {
	headers := make([]interface{}, len(c.schema))
	for i, h := range c.schema.Headers() {
		headers[i] = h
	}

	_, err := c.svc.Spreadsheets.Values.
		Update(ref.SpreadsheetID, fmt.Sprintf("%s!A1", ref.Sheet), &gsheets.ValueRange{
			Values: [][]interface{}{headers},
		}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return mapError("write headers", err)
	}

	sheetID, err := c.sheetID(ctx, ref)
	if err != nil {
		return err
	}
	return c.formatHeaders(ctx, ref, sheetID)
}

// sheetID resolves the numeric sheet ID for the ref's sheet title. Cell
// formatting requests address sheets by ID, not title.
func (c *Client) sheetID(ctx context.Context, ref tables.Ref) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(ref.SpreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return 0, mapError("get sheet metadata", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == ref.Sheet {
			return s.Properties.SheetId, nil
		}
	}
	return 0, errors.NewAPIError(404, fmt.Sprintf("sheet %q not found in spreadsheet", ref.Sheet))
}

func (c *Client) formatHeaders(ctx context.Context, ref tables.Ref, sheetID int64) error {
	requests := []*gsheets.Request{
		{
			RepeatCell: &gsheets.RepeatCellRequest{
				Range: &gsheets.GridRange{
					SheetId:       sheetID,
					StartRowIndex: 0,
					EndRowIndex:   1,
				},
				Cell: &gsheets.CellData{
					UserEnteredFormat: &gsheets.CellFormat{
						BackgroundColor: &gsheets.Color{Red: 0.2, Green: 0.5, Blue: 0.8},
						TextFormat: &gsheets.TextFormat{
							ForegroundColor: &gsheets.Color{Red: 1.0, Green: 1.0, Blue: 1.0},
							FontSize:        11,
							Bold:            true,
						},
						HorizontalAlignment: "CENTER",
					},
				},
				Fields: "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
			},
		},
		{
			AutoResizeDimensions: &gsheets.AutoResizeDimensionsRequest{
				Dimensions: &gsheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(len(c.schema)),
				},
			},
		},
	}

	_, err := c.svc.Spreadsheets.BatchUpdate(ref.SpreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		// Formatting failures are cosmetic; the sheet still works.
		logging.FromContext(ctx).Warn().Err(err).Msg("Header formatting failed")
	}
	return nil
}

// URL returns the edit URL for a spreadsheet ID.
func URL(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", spreadsheetID)
}
