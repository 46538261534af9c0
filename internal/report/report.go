// Package report renders listings and their portfolio summary as a
// markdown document. The same text is served by the HTTP API and rendered
// to the terminal by listingctl.
package report

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/atmx/listing-metrics/internal/format"
	"github.com/atmx/listing-metrics/internal/model"
)

// Markdown renders a listing table followed by the portfolio KPIs.
func Markdown(listings []model.Listing, s model.PortfolioSummary, f *format.Formatter) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Listing Report")

	if len(listings) == 0 {
		doc.PlainText("No listings.")
	} else {
		rows := make([][]string, 0, len(listings))
		for _, l := range listings {
			rows = append(rows, []string{
				l.Name,
				f.Currency(l.SalePrice),
				f.Currency(l.CostPrice),
				f.Fee(l.MarketplaceFee),
				f.Percentage(l.TaxRate),
				f.Currency(l.ShippingCost),
				f.Currency(l.GrossProfit),
				f.Percentage(l.MarginRatio),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Listing", "Sale", "Cost", "Fee", "Tax", "Shipping", "Gross Profit", "Margin"},
			Rows:   rows,
		})
	}

	doc.H2("Summary")
	doc.Table(md.TableSet{
		Header: []string{"KPI", "Value"},
		Rows: [][]string{
			{"Listings", fmt.Sprintf("%d", s.ListingCount)},
			{"Total Gross Profit", f.Currency(s.TotalGrossProfit)},
			{"Average Margin", f.Percentage(s.AverageMarginRatio)},
		},
	})

	return doc.String()
}

// Breakdown renders the cost breakdown of a single listing.
func Breakdown(l model.Listing, f *format.Formatter) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(l.Name)
	doc.Table(md.TableSet{
		Header: []string{"Item", "Amount"},
		Rows: [][]string{
			{"Sale Price", f.Currency(l.SalePrice)},
			{"Cost Price", f.Currency(l.CostPrice)},
			{"Marketplace Fee (" + f.Fee(l.MarketplaceFee) + ")", f.Currency(l.MarketplaceFeeAmount)},
			{"Tax (" + f.Percentage(l.TaxRate) + ")", f.Currency(l.TaxAmount)},
			{"Shipping", f.Currency(l.ShippingCost)},
			{"Gross Profit", f.Currency(l.GrossProfit)},
			{"Margin", f.Percentage(l.MarginRatio)},
		},
	})

	return doc.String()
}
