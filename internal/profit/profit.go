// Package profit computes the gross profit and margin of a single listing.
//
//	grossProfit = salePrice − (costPrice + feeAmount + taxAmount + shippingCost)
//	marginRatio = grossProfit / salePrice     (0 when salePrice <= 0)
//
// The calculator is a pure function: it reads no clock, holds no state and
// returns the same Listing for the same id and draft. All monetary values use
// shopspring/decimal, never float64 for money.
package profit

import (
	"github.com/shopspring/decimal"

	"github.com/atmx/listing-metrics/internal/model"
	"github.com/atmx/listing-metrics/internal/normalize"
)

// Compute derives a Listing from a normalized draft. The marketplace fee is
// the draft's explicit fee when present, otherwise it is inferred from the
// raw text. Tax is always a fraction of the sale price.
func Compute(id string, d model.Draft) model.Listing {
	fee := normalize.InferFee(d.MarketplaceFeeRaw)
	if d.MarketplaceFee != nil {
		fee = *d.MarketplaceFee
	}
	feeAmount := fee.Amount(d.SalePrice)

	taxRate := normalize.ParsePercentage(d.TaxRateRaw)
	taxAmount := taxRate.Mul(d.SalePrice)

	costs := d.CostPrice.Add(feeAmount).Add(taxAmount).Add(d.ShippingCost)
	gross := d.SalePrice.Sub(costs)

	return model.Listing{
		ID:                   id,
		Name:                 d.Name,
		ProductID:            d.ProductID,
		SalePrice:            d.SalePrice,
		CostPrice:            d.CostPrice,
		MarketplaceFee:       fee,
		MarketplaceFeeAmount: feeAmount,
		TaxRate:              taxRate,
		TaxAmount:            taxAmount,
		ShippingCost:         d.ShippingCost,
		GrossProfit:          gross,
		MarginRatio:          Margin(gross, d.SalePrice),
	}
}

// Margin returns grossProfit / salePrice, or zero when the sale price is
// not positive.
func Margin(grossProfit, salePrice decimal.Decimal) decimal.Decimal {
	if !salePrice.IsPositive() {
		return decimal.Zero
	}
	return grossProfit.Div(salePrice)
}
