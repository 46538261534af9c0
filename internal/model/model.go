// Package model defines the core domain types shared across the listing
// metrics service. All monetary values use shopspring/decimal, never float64
// for money.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeKind tells how a marketplace fee value is expressed.
type FeeKind string

const (
	FeePercentage FeeKind = "percentage" // Value is a fraction of the sale price
	FeeFixed      FeeKind = "fixed"      // Value is a currency amount
)

// Fee is a marketplace commission with an explicit unit.
type Fee struct {
	Kind  FeeKind         `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// PercentageFee returns a fee charged as a fraction of the sale price.
func PercentageFee(fraction decimal.Decimal) Fee {
	return Fee{Kind: FeePercentage, Value: fraction}
}

// FixedFee returns a flat fee in currency units.
func FixedFee(amount decimal.Decimal) Fee {
	return Fee{Kind: FeeFixed, Value: amount}
}

// Amount resolves the fee to an absolute currency amount for a sale price.
func (f Fee) Amount(salePrice decimal.Decimal) decimal.Decimal {
	if f.Kind == FeeFixed {
		return f.Value
	}
	return f.Value.Mul(salePrice)
}

// FormInput is the raw text of one listing as typed by a user or read from
// a CSV row. Nothing in it has been validated.
type FormInput struct {
	Name           string `json:"name"`
	ProductID      string `json:"product_id,omitempty"`
	SalePrice      string `json:"sale_price"`
	CostPrice      string `json:"cost_price"`
	MarketplaceFee string `json:"marketplace_fee"`
	TaxRate        string `json:"tax_rate"`
	ShippingCost   string `json:"shipping_cost"`
	FeeMode        string `json:"fee_mode,omitempty"` // "", "percentage" or "fixed"
}

// Draft is the normalized input of one listing. The fee and tax rate are
// kept as raw text and resolved by the calculator, unless MarketplaceFee
// carries an explicit tagged value.
type Draft struct {
	Name              string
	ProductID         string
	SalePrice         decimal.Decimal
	CostPrice         decimal.Decimal
	ShippingCost      decimal.Decimal
	MarketplaceFeeRaw string
	TaxRateRaw        string
	MarketplaceFee    *Fee
}

// Listing is a single marketplace advertisement with its derived metrics.
// GrossProfit and MarginRatio are a pure function of the other inputs; an
// edit produces a new Listing rather than patching these fields.
type Listing struct {
	ID                   string          `json:"id" db:"id"`
	Name                 string          `json:"name" db:"name"`
	ProductID            string          `json:"product_id,omitempty" db:"product_id"`
	SalePrice            decimal.Decimal `json:"sale_price" db:"sale_price"`
	CostPrice            decimal.Decimal `json:"cost_price" db:"cost_price"`
	MarketplaceFee       Fee             `json:"marketplace_fee"`
	MarketplaceFeeAmount decimal.Decimal `json:"marketplace_fee_amount" db:"marketplace_fee_amount"`
	TaxRate              decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	TaxAmount            decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	ShippingCost         decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	GrossProfit          decimal.Decimal `json:"gross_profit" db:"gross_profit"`
	MarginRatio          decimal.Decimal `json:"margin_ratio" db:"margin_ratio"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
}

// PortfolioSummary aggregates KPIs across a collection of listings.
type PortfolioSummary struct {
	TotalGrossProfit   decimal.Decimal `json:"total_gross_profit"`
	AverageMarginRatio decimal.Decimal `json:"average_margin_ratio"` // unweighted mean
	ListingCount       int             `json:"listing_count"`
}

// Product is a catalogue item whose cost price can seed new listings.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	WeightGrams decimal.Decimal `json:"weight_grams" db:"weight_grams"`
	Dimensions  string          `json:"dimensions" db:"dimensions"` // e.g. "30 x 20 x 5 cm"
	CostPrice   decimal.Decimal `json:"cost_price" db:"cost_price"`
	Material    string          `json:"material" db:"material"`
	Size        string          `json:"size" db:"size"`
	Colors      []string        `json:"colors" db:"colors"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
