package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sonafind/sonafind/core"
)

// Column names expected in catalog CSV exports.
const (
	ColumnName     = "product_name"
	ColumnBrand    = "brand_name"
	ColumnCategory = "category_name"
)

// ReadCSV parses a product catalog CSV into products.
//
// The first row must be a header containing the product_name, brand_name and
// category_name columns; column order and extra columns don't matter, and
// header names are matched case-insensitively. Rows whose product name is
// empty after trimming are skipped. IDs and phonetic codes are left unset;
// the repository fills them in on AddProducts.
func ReadCSV(r io.Reader) ([]core.Product, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrBadHeader)
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColumnName, ColumnBrand, ColumnCategory} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadHeader, required)
		}
	}

	var products []core.Product
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(row[columns[ColumnName]])
		if name == "" {
			continue
		}
		products = append(products, core.Product{
			Name:     name,
			Brand:    strings.TrimSpace(row[columns[ColumnBrand]]),
			Category: strings.TrimSpace(row[columns[ColumnCategory]]),
		})
	}
	return products, nil
}
