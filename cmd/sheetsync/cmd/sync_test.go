package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProductsFlatList(t *testing.T) {
	path := writeInput(t, `[
		{"product_id": "1", "platform": "digikala", "name": "لپ تاپ", "price": 45000000},
		{"product_id": "2", "platform": "digikala", "name": "موبایل", "price": "30000000"}
	]`)

	raws, err := loadProducts(path)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "digikala", raws[0]["platform"])
	assert.Equal(t, "45000000", raws[0]["price"], "numeric prices are stringified")
}

func TestLoadProductsByPlatform(t *testing.T) {
	path := writeInput(t, `{
		"mihanstore": [{"product_id": "10", "name": "هدفون"}],
		"digikala":   [{"product_id": "20", "name": "تبلت", "platform": "digikala"}]
	}`)

	raws, err := loadProducts(path)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	// platforms are visited in sorted order and filled in when missing
	assert.Equal(t, "digikala", raws[0]["platform"])
	assert.Equal(t, "mihanstore", raws[1]["platform"])
	assert.Equal(t, "10", raws[1]["product_id"])
}

func TestLoadProductsMissingFile(t *testing.T) {
	_, err := loadProducts(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadProductsMalformed(t *testing.T) {
	path := writeInput(t, `{"broken`)
	_, err := loadProducts(path)
	require.Error(t, err)
}
