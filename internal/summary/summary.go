// Package summary aggregates computed listings into portfolio KPIs.
package summary

import (
	"github.com/shopspring/decimal"

	"github.com/atmx/listing-metrics/internal/model"
)

// Aggregate recomputes the portfolio summary from the whole collection.
// The average margin is unweighted: every listing counts once regardless of
// its sale price. An empty collection yields an all-zero summary.
func Aggregate(listings []model.Listing) model.PortfolioSummary {
	if len(listings) == 0 {
		return model.PortfolioSummary{
			TotalGrossProfit:   decimal.Zero,
			AverageMarginRatio: decimal.Zero,
		}
	}

	total := decimal.Zero
	marginSum := decimal.Zero
	for _, l := range listings {
		total = total.Add(l.GrossProfit)
		marginSum = marginSum.Add(l.MarginRatio)
	}

	return model.PortfolioSummary{
		TotalGrossProfit:   total,
		AverageMarginRatio: marginSum.Div(decimal.NewFromInt(int64(len(listings)))),
		ListingCount:       len(listings),
	}
}
