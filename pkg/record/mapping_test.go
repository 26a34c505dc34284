package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotshop/sheetsync/pkg/errors"
)

func writeTempMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMappingOverrides(t *testing.T) {
	path := writeTempMapping(t, "\"Product ID\": sku\n\"Product URL\": url\n")

	mapping, err := LoadMapping(path, DefaultSchema())
	require.NoError(t, err)

	assert.Equal(t, "sku", mapping.Field(ColProductID))
	assert.Equal(t, "url", mapping.Field(ColProductURL))
	// untouched columns keep defaults
	assert.Equal(t, "platform", mapping.Field(ColPlatform))
}

func TestLoadMappingUnknownColumn(t *testing.T) {
	path := writeTempMapping(t, "\"No Such Column\": sku\n")

	_, err := LoadMapping(path, DefaultSchema())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestLoadMappingMissingFile(t *testing.T) {
	_, err := LoadMapping(filepath.Join(t.TempDir(), "nope.yaml"), DefaultSchema())
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestLoadMappingInvalidYAML(t *testing.T) {
	path := writeTempMapping(t, ":\n  - broken: [\n")

	_, err := LoadMapping(path, DefaultSchema())
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestMappingFieldFallsBackToDefault(t *testing.T) {
	m := Mapping{ColName: "title"}
	assert.Equal(t, "title", m.Field(ColName))
	assert.Equal(t, "product_id", m.Field(ColProductID))
}

func TestRawFromAny(t *testing.T) {
	raw := RawFromAny(map[string]any{
		"name":   "headphones",
		"price":  1250000.0,
		"rating": 4.5,
		"active": true,
		"extra":  nil,
	})

	assert.Equal(t, "headphones", raw["name"])
	assert.Equal(t, "1250000", raw["price"], "whole floats render without exponent")
	assert.Equal(t, "4.5", raw["rating"])
	assert.Equal(t, "true", raw["active"])
	assert.Equal(t, "", raw["extra"])
}

func TestSchemaIndexAndHeaders(t *testing.T) {
	s := DefaultSchema()
	assert.Equal(t, 0, s.Index(ColProductID))
	assert.Equal(t, len(s)-1, s.Index(ColScrapedAt))
	assert.Equal(t, -1, s.Index(Column("missing")))
	assert.Equal(t, "Product ID", s.Headers()[0])
}
