package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atmx/listing-metrics/internal/model"
)

/*
CSV layout

name,sale_price,cost_price,marketplace_fee,tax_rate,shipping_cost[,fee_mode,product_id]

Header names are matched case-insensitively and may come in any order.
Unknown columns are ignored; name and sale_price are required.
*/

// ErrMissingColumn is returned when a required CSV column is absent.
var ErrMissingColumn = errors.New("normalize: missing csv column")

// ReadCSV reads listing forms from CSV with a header row. Cells are kept as
// raw text; numeric handling is left to a Normalizer.
func ReadCSV(r io.Reader) ([]model.FormInput, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "sale_price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var forms []model.FormInput
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		cell := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		forms = append(forms, model.FormInput{
			Name:           cell("name"),
			ProductID:      cell("product_id"),
			SalePrice:      cell("sale_price"),
			CostPrice:      cell("cost_price"),
			MarketplaceFee: cell("marketplace_fee"),
			TaxRate:        cell("tax_rate"),
			ShippingCost:   cell("shipping_cost"),
			FeeMode:        cell("fee_mode"),
		})
	}
	return forms, nil
}
