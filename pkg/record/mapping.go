package record

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/dotshop/sheetsync/pkg/errors"
)

// Mapping maps sheet columns to the raw field names the scraper emits.
// Raw scraped data shapes vary across platforms; the mapping keeps that
// variability out of the engine proper.
type Mapping map[Column]string

// DefaultMapping returns the field mapping for the standard scraper output.
func DefaultMapping() Mapping {
	return Mapping{
		ColProductID:      "product_id",
		ColPlatform:       "platform",
		ColName:           "name",
		ColPrice:          "price",
		ColPriceFormatted: "price_formatted",
		ColImageURL:       "image",
		ColProductURL:     "product_url",
		ColCategory:       "category",
		ColStatus:         "status",
		ColScrapedAt:      "scraped_at",
	}
}

// Field returns the raw field name for a column, defaulting to the standard
// mapping when the column has no override.
func (m Mapping) Field(c Column) string {
	if f, ok := m[c]; ok {
		return f
	}
	return DefaultMapping()[c]
}

// LoadMapping reads a column-to-field mapping from a YAML file and merges it
// over the default mapping. The file maps column header names to raw field
// names:
//
//	"Product ID": sku
//	"Product URL": url
func LoadMapping(path string, schema Schema) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	mapping := DefaultMapping()
	for col, field := range overrides {
		if schema.Index(Column(col)) < 0 {
			return nil, &errors.ValidationError{
				Field:   col,
				Value:   field,
				Message: "mapping refers to a column not present in the schema",
			}
		}
		mapping[Column(col)] = field
	}

	return mapping, nil
}
