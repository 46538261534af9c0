package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/atmx/listing-metrics/internal/format"
	"github.com/atmx/listing-metrics/internal/model"
	"github.com/atmx/listing-metrics/internal/normalize"
	"github.com/atmx/listing-metrics/internal/profit"
	"github.com/atmx/listing-metrics/internal/report"
)

// computeCmd holds the flags for the 'compute' subcommand.
type computeCmd struct {
	out io.Writer

	in       model.FormInput
	currency string
	strict   bool
	raw      bool
}

func (*computeCmd) Name() string     { return "compute" }
func (*computeCmd) Synopsis() string { return "compute gross profit and margin of one listing" }
func (*computeCmd) Usage() string {
	return `listingctl compute -name <name> -sale <price> [-cost <price>] [-fee <fee>] [-tax <rate>] [-shipping <cost>]

  Computes the metrics of a single listing and prints its cost breakdown.
  Fees of 1 or less are fractions, up to 100 are percentage points and
  larger values are absolute amounts, unless -fee-mode is given.
`
}

func (c *computeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in.Name, "name", "", "Listing name")
	f.StringVar(&c.in.SalePrice, "sale", "", "Sale price")
	f.StringVar(&c.in.CostPrice, "cost", "", "Cost price")
	f.StringVar(&c.in.MarketplaceFee, "fee", "", "Marketplace fee")
	f.StringVar(&c.in.TaxRate, "tax", "", "Tax rate, as a fraction or percentage points")
	f.StringVar(&c.in.ShippingCost, "shipping", "", "Shipping cost")
	f.StringVar(&c.in.FeeMode, "fee-mode", "", "Fee unit: percentage or fixed (default: inferred)")
	f.StringVar(&c.currency, "currency", format.DefaultCurrency, "Display currency (ISO 4217)")
	f.BoolVar(&c.strict, "strict", false, "Reject malformed numbers instead of reading them as zero")
	f.BoolVar(&c.raw, "raw", false, "Print plain markdown")
}

func (c *computeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	formatter, err := format.New(c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	policy := normalize.Lenient
	if c.strict {
		policy = normalize.Strict
	}

	d, err := normalize.Normalizer{Policy: policy}.Draft(c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := normalize.CheckSubmission(d); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	l := profit.Compute("", d)
	printMarkdown(c.out, report.Breakdown(l, formatter), c.raw)

	return subcommands.ExitSuccess
}
