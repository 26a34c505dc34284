// Package record defines the data model at the boundary between the scraper
// and the reconciliation engine: raw scraped records, the fixed column schema
// of the product sheet, canonical rows, and the identity key that matches
// incoming records to existing remote rows.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Column is the header name of a sheet column.
type Column string

// Columns of the product sheet, in their fixed order.
const (
	ColProductID      Column = "Product ID"
	ColPlatform       Column = "Platform"
	ColName           Column = "Name"
	ColPrice          Column = "Price (Toman)"
	ColPriceFormatted Column = "Price Formatted"
	ColImageURL       Column = "Image URL"
	ColProductURL     Column = "Product URL"
	ColCategory       Column = "Category"
	ColStatus         Column = "Status"
	ColLastUpdated    Column = "Last Updated"
	ColScrapedAt      Column = "Scraped At"
)

// Schema is an ordered list of sheet columns.
type Schema []Column

// DefaultSchema returns the product sheet schema.
func DefaultSchema() Schema {
	return Schema{
		ColProductID,
		ColPlatform,
		ColName,
		ColPrice,
		ColPriceFormatted,
		ColImageURL,
		ColProductURL,
		ColCategory,
		ColStatus,
		ColLastUpdated,
		ColScrapedAt,
	}
}

// Index returns the position of the column in the schema, or -1.
func (s Schema) Index(c Column) int {
	for i, col := range s {
		if col == c {
			return i
		}
	}
	return -1
}

// Headers returns the column names as strings, for header provisioning.
func (s Schema) Headers() []string {
	headers := make([]string, len(s))
	for i, c := range s {
		headers[i] = string(c)
	}
	return headers
}

// Raw is an unordered string-keyed record as produced by the scraper.
// No uniqueness or completeness is guaranteed at this boundary.
type Raw map[string]string

// RawFromAny converts a decoded JSON object into a Raw record, stringifying
// scalar values. Dynamic typing stays confined to this edge.
func RawFromAny(m map[string]any) Raw {
	raw := make(Raw, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			raw[k] = val
		case float64:
			if val == float64(int64(val)) {
				raw[k] = strconv.FormatInt(int64(val), 10)
			} else {
				raw[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		case bool:
			raw[k] = strconv.FormatBool(val)
		case nil:
			raw[k] = ""
		default:
			raw[k] = fmt.Sprintf("%v", val)
		}
	}
	return raw
}

// Key is the identity of a product row, stable across sync cycles.
type Key string

// KeyFor derives the identity key from a record's platform and product ID.
// Derivation must stay deterministic: the same product always maps to the
// same remote row.
func KeyFor(platform, productID string) Key {
	p := strings.ToLower(strings.TrimSpace(platform))
	id := strings.ToLower(strings.TrimSpace(FoldDigits(productID)))
	return Key(p + "_" + id)
}

// Row is a canonical row: cell values aligned to a Schema, plus the derived
// identity key. Rows are transient, built per sync cycle.
type Row struct {
	Key    Key
	Values []string
}

// Get returns the cell value for the given column, or "" if the column is
// not in the schema or the row is short.
func (r Row) Get(s Schema, c Column) string {
	i := s.Index(c)
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}
