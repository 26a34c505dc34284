package record

import (
	"strings"
	"time"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/dotshop/sheetsync/pkg/errors"
)

// Fields the normalizer needs to derive the identity key.
const (
	fieldPlatform  = "platform"
	fieldProductID = "product_id"
)

// digitFolder maps Persian and Arabic-Indic digits to ASCII so that prices
// scraped as "۱۲۳٬۰۰۰" and remote cells holding "123000" compare equal.
var digitFolder = runes.Map(func(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹': // Extended Arabic-Indic (Persian)
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩': // Arabic-Indic
		return '0' + (r - '٠')
	}
	return r
})

// FoldDigits rewrites Persian and Arabic-Indic digits in s to ASCII digits.
func FoldDigits(s string) string {
	out, _, err := transform.String(digitFolder, s)
	if err != nil {
		return s
	}
	return out
}

// normalizePrice reduces a scraped price to a canonical digit string.
// Thousands separators (ASCII and Persian) and surrounding text are dropped.
func normalizePrice(s string) string {
	folded := FoldDigits(s)
	var b strings.Builder
	for _, r := range folded {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	trimmed := strings.TrimLeft(b.String(), "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// Normalizer converts raw scraped records into canonical rows.
// It is a pure transformation; the only non-determinism is the Last Updated
// stamp, which the diff step treats as volatile.
type Normalizer struct {
	schema  Schema
	mapping Mapping
	now     func() time.Time
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithSchema overrides the default column schema.
func WithSchema(s Schema) NormalizerOption {
	return func(n *Normalizer) {
		n.schema = s
	}
}

// WithMapping overrides the default raw-field-to-column mapping.
func WithMapping(m Mapping) NormalizerOption {
	return func(n *Normalizer) {
		n.mapping = m
	}
}

// WithClock overrides the clock used for the Last Updated stamp.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.now = now
	}
}

// NewNormalizer creates a Normalizer with the given options.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		schema:  DefaultSchema(),
		mapping: DefaultMapping(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Schema returns the schema rows are normalized against.
func (n *Normalizer) Schema() Schema {
	return n.schema
}

// Normalize converts a raw record into a canonical row.
// Records missing an identity field (platform, product_id) are rejected with
// an error matching errors.ErrMissingIdentityField.
func (n *Normalizer) Normalize(raw Raw) (Row, error) {
	platform := strings.TrimSpace(raw[n.mapping.Field(ColPlatform)])
	productID := strings.TrimSpace(raw[n.mapping.Field(ColProductID)])

	if platform == "" {
		return Row{}, errors.NewMissingFieldError(n.mapping.Field(ColPlatform))
	}
	if productID == "" {
		return Row{}, errors.NewMissingFieldError(n.mapping.Field(ColProductID))
	}

	values := make([]string, len(n.schema))
	for i, col := range n.schema {
		values[i] = n.cell(col, raw)
	}

	return Row{
		Key:    KeyFor(platform, productID),
		Values: values,
	}, nil
}

// cell computes the canonical value for a single column.
func (n *Normalizer) cell(col Column, raw Raw) string {
	v := strings.TrimSpace(raw[n.mapping.Field(col)])

	switch col {
	case ColPrice:
		return normalizePrice(v)
	case ColProductID:
		return strings.TrimSpace(FoldDigits(v))
	case ColStatus:
		if v == "" {
			return "Active"
		}
		return v
	case ColLastUpdated:
		return n.now().Format("2006-01-02 15:04:05")
	default:
		return v
	}
}

// Skip records a raw record excluded from a batch by a normalization failure.
type Skip struct {
	Index int // position in the incoming batch
	Err   error
}

// NormalizeBatch normalizes a whole batch, merging duplicate identity keys
// last-write-wins while preserving first-seen order, and collecting
// per-record normalization failures instead of failing the batch.
func (n *Normalizer) NormalizeBatch(raws []Raw) ([]Row, []Skip) {
	rows := make([]Row, 0, len(raws))
	var skipped []Skip
	seen := make(map[Key]int, len(raws))

	for i, raw := range raws {
		row, err := n.Normalize(raw)
		if err != nil {
			skipped = append(skipped, Skip{Index: i, Err: err})
			continue
		}
		if pos, ok := seen[row.Key]; ok {
			rows[pos] = row
			continue
		}
		seen[row.Key] = len(rows)
		rows = append(rows, row)
	}

	return rows, skipped
}
