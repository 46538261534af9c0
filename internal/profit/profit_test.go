package profit

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atmx/listing-metrics/internal/model"
)

// d is a test helper for creating decimals from float64.
func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func sampleDraft() model.Draft {
	return model.Draft{
		Name:              "Camiseta Estampada",
		SalePrice:         d(89.90),
		CostPrice:         d(35.00),
		ShippingCost:      d(12.50),
		MarketplaceFeeRaw: "0.15",
		TaxRateRaw:        "0.10",
	}
}

func TestCompute_ReferenceListing(t *testing.T) {
	l := Compute("ad-1", sampleDraft())

	if l.ID != "ad-1" || l.Name != "Camiseta Estampada" {
		t.Errorf("identity not carried over: id=%q name=%q", l.ID, l.Name)
	}
	if !l.MarketplaceFeeAmount.Equal(d(13.485)) {
		t.Errorf("expected fee 13.485, got %s", l.MarketplaceFeeAmount)
	}
	if !l.TaxAmount.Equal(d(8.99)) {
		t.Errorf("expected tax 8.99, got %s", l.TaxAmount)
	}
	if !l.GrossProfit.Equal(d(19.925)) {
		t.Errorf("expected gross profit 19.925, got %s", l.GrossProfit)
	}
	if !l.MarginRatio.Round(4).Equal(d(0.2216)) {
		t.Errorf("expected margin ≈ 0.2216, got %s", l.MarginRatio)
	}
	if l.MarketplaceFee.Kind != model.FeePercentage {
		t.Errorf("expected inferred percentage fee, got %s", l.MarketplaceFee.Kind)
	}
}

func TestCompute_PercentagePointsAndAbsoluteFee(t *testing.T) {
	dr := model.Draft{SalePrice: d(200), MarketplaceFeeRaw: "15", TaxRateRaw: "10"}
	l := Compute("", dr)
	if !l.MarketplaceFeeAmount.Equal(d(30)) {
		t.Errorf("15 should read as 15%% of 200, got %s", l.MarketplaceFeeAmount)
	}
	if !l.TaxAmount.Equal(d(20)) {
		t.Errorf("10 should read as 10%% tax, got %s", l.TaxAmount)
	}

	dr.MarketplaceFeeRaw = "150"
	l = Compute("", dr)
	if !l.MarketplaceFeeAmount.Equal(d(150)) {
		t.Errorf("150 should read as a flat amount, got %s", l.MarketplaceFeeAmount)
	}
	if !l.GrossProfit.Equal(d(30)) {
		t.Errorf("expected gross profit 30, got %s", l.GrossProfit)
	}
}

func TestCompute_ExplicitFeeOverridesRaw(t *testing.T) {
	fee := model.FixedFee(d(50))
	dr := model.Draft{SalePrice: d(100), MarketplaceFeeRaw: "50", MarketplaceFee: &fee}
	l := Compute("", dr)
	if !l.MarketplaceFeeAmount.Equal(d(50)) {
		t.Errorf("explicit fixed fee should be 50, got %s", l.MarketplaceFeeAmount)
	}
	if l.MarketplaceFee.Kind != model.FeeFixed {
		t.Errorf("expected fixed fee kind, got %s", l.MarketplaceFee.Kind)
	}
}

func TestCompute_ZeroSalePrice(t *testing.T) {
	l := Compute("", model.Draft{CostPrice: d(10), MarketplaceFeeRaw: "0.2"})
	if !l.MarginRatio.IsZero() {
		t.Errorf("zero sale price must report zero margin, got %s", l.MarginRatio)
	}
	if !l.GrossProfit.Equal(d(-10)) {
		t.Errorf("expected gross profit -10, got %s", l.GrossProfit)
	}
}

func TestCompute_NegativeSalePrice(t *testing.T) {
	l := Compute("", model.Draft{SalePrice: d(-5)})
	if !l.MarginRatio.IsZero() {
		t.Errorf("negative sale price must report zero margin, got %s", l.MarginRatio)
	}
}

func TestCompute_MalformedRawDegradesToZero(t *testing.T) {
	dr := model.Draft{SalePrice: d(50), CostPrice: d(20), MarketplaceFeeRaw: "abc", TaxRateRaw: "??"}
	l := Compute("", dr)
	if !l.MarketplaceFeeAmount.IsZero() || !l.TaxAmount.IsZero() {
		t.Errorf("malformed fee/tax should be zero, got fee=%s tax=%s", l.MarketplaceFeeAmount, l.TaxAmount)
	}
	if !l.GrossProfit.Equal(d(30)) {
		t.Errorf("expected gross profit 30, got %s", l.GrossProfit)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	a := Compute("same", sampleDraft())
	b := Compute("same", sampleDraft())
	if !reflect.DeepEqual(a, b) {
		t.Errorf("compute is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestCompute_LossMakingListing(t *testing.T) {
	dr := model.Draft{SalePrice: d(20), CostPrice: d(18), MarketplaceFeeRaw: "0.2", ShippingCost: d(5)}
	l := Compute("", dr)
	// 20 - (18 + 4 + 0 + 5) = -7
	if !l.GrossProfit.Equal(d(-7)) {
		t.Errorf("expected gross profit -7, got %s", l.GrossProfit)
	}
	if !l.MarginRatio.Equal(d(-0.35)) {
		t.Errorf("expected margin -0.35, got %s", l.MarginRatio)
	}
}
