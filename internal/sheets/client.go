// Package sheets implements tables.Client on the Google Sheets v4 API.
//
// The adapter is deliberately thin: it converts canonical rows to and from
// the API's cell values, builds A1 ranges from the column schema, and maps
// API failures onto the error taxonomy the executor retries against. All
// batching, retrying, and rate limiting happen above it.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/dotshop/sheetsync/pkg/errors"
	"github.com/dotshop/sheetsync/pkg/logging"
	"github.com/dotshop/sheetsync/pkg/record"
	"github.com/dotshop/sheetsync/pkg/tables"
)

// Scopes requested for the service account.
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.file",
}

// Client talks to one Google Sheets service. It is safe for concurrent use;
// the underlying service is stateless per call.
type Client struct {
	svc    *gsheets.Service
	schema record.Schema
}

var _ tables.Client = (*Client)(nil)
var _ tables.Clearer = (*Client)(nil)

// New builds a Client authenticated with a service-account credentials file.
func New(ctx context.Context, credentialsFile string) (*Client, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(Scopes...),
	)
	if err != nil {
		return nil, &errors.ConfigError{
			Component: "sheets",
			Message:   "creating sheets service",
			Err:       err,
		}
	}
	logging.FromContext(ctx).Debug().Msg("Google Sheets service initialized")
	return NewWithService(svc), nil
}

// NewWithService wraps an already-constructed service. Used by tests and by
// callers that need custom client options.
func NewWithService(svc *gsheets.Service) *Client {
	return &Client{svc: svc, schema: record.DefaultSchema()}
}

// FetchAll reads every data row below the header.
func (c *Client) FetchAll(ctx context.Context, ref tables.Ref) ([]tables.RemoteRow, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(ref.SpreadsheetID, c.dataRange(ref)).
		Context(ctx).Do()
	if err != nil {
		return nil, mapError("fetch", err)
	}

	platformIdx := c.schema.Index(record.ColPlatform)
	productIdx := c.schema.Index(record.ColProductID)

	rows := make([]tables.RemoteRow, 0, len(resp.Values))
	for i, cells := range resp.Values {
		values := toStrings(cells)
		if isBlank(values) {
			continue
		}
		rows = append(rows, tables.RemoteRow{
			Index: i + 2, // data starts on sheet row 2
			Row: record.Row{
				Key:    record.KeyFor(cell(values, platformIdx), cell(values, productIdx)),
				Values: values,
			},
		})
	}

	logging.FromContext(ctx).Debug().
		Str("spreadsheet_id", ref.SpreadsheetID).
		Str("sheet", ref.Sheet).
		Int("rows", len(rows)).
		Msg("Fetched remote snapshot")
	return rows, nil
}

// Append adds rows after the last data row.
func (c *Client) Append(ctx context.Context, ref tables.Ref, rows []record.Row) error {
	_, err := c.svc.Spreadsheets.Values.
		Append(ref.SpreadsheetID, fmt.Sprintf("%s!A2", ref.Sheet), valueRange(rows)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return mapError("append", err)
}

// UpdateRange overwrites the contiguous run of rows starting at startIndex.
func (c *Client) UpdateRange(ctx context.Context, ref tables.Ref, startIndex int, rows []record.Row) error {
	_, err := c.svc.Spreadsheets.Values.
		Update(ref.SpreadsheetID, fmt.Sprintf("%s!A%d", ref.Sheet, startIndex), valueRange(rows)).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return mapError("update", err)
}

// Clear drops every data row, keeping the header row.
func (c *Client) Clear(ctx context.Context, ref tables.Ref) error {
	_, err := c.svc.Spreadsheets.Values.
		Clear(ref.SpreadsheetID, c.dataRange(ref), &gsheets.ClearValuesRequest{}).
		Context(ctx).Do()
	return mapError("clear", err)
}

// dataRange returns the A1 range covering all data rows, e.g. "Products!A2:K".
func (c *Client) dataRange(ref tables.Ref) string {
	return fmt.Sprintf("%s!A2:%s", ref.Sheet, columnLetter(len(c.schema)))
}

// columnLetter converts a 1-based column count to its A1 letter, so an
// 11-column schema yields "K".
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func valueRange(rows []record.Row) *gsheets.ValueRange {
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		cells := make([]interface{}, len(r.Values))
		for j, v := range r.Values {
			cells[j] = v
		}
		values[i] = cells
	}
	return &gsheets.ValueRange{Values: values}
}

// toStrings flattens the API's loosely typed cells into strings. Numeric
// cells come back as float64 when a sheet was edited by hand.
func toStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, v := range cells {
		switch t := v.(type) {
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(t)
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(t)
		}
	}
	return out
}

func cell(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return values[idx]
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// mapError translates API failures into the retryable/fatal taxonomy.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsCanceled(err) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 429 {
			return &errors.RateLimitedError{
				RetryAfter: retryAfterHint(gerr),
				Message:    fmt.Sprintf("%s: %s", operation, gerr.Message),
			}
		}
		return errors.NewAPIError(gerr.Code, fmt.Sprintf("%s: %s", operation, gerr.Message))
	}

	// Anything else is a transport-level failure worth retrying.
	return errors.WrapTransient(operation, err)
}

// retryAfterHint parses the Retry-After response header, when present.
func retryAfterHint(gerr *googleapi.Error) time.Duration {
	if gerr.Header == nil {
		return 0
	}
	raw := gerr.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
