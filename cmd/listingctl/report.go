package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"github.com/atmx/listing-metrics/internal/format"
	"github.com/atmx/listing-metrics/internal/model"
	"github.com/atmx/listing-metrics/internal/normalize"
	"github.com/atmx/listing-metrics/internal/profit"
	"github.com/atmx/listing-metrics/internal/report"
	"github.com/atmx/listing-metrics/internal/summary"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	out io.Writer

	file     string
	currency string
	strict   bool
	raw      bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "report metrics and KPIs for a CSV of listings" }
func (*reportCmd) Usage() string {
	return `listingctl report -f <listings.csv> [-currency <code>] [-strict] [-raw]

  Reads listings from a CSV file with a header row. Recognised columns are
  name, product_id, sale_price, cost_price, marketplace_fee, tax_rate,
  shipping_cost and fee_mode; name and sale_price are required.
  Rows without a name or a positive sale price are skipped with a warning.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "CSV file to read (- for stdin)")
	f.StringVar(&c.currency, "currency", format.DefaultCurrency, "Display currency (ISO 4217)")
	f.BoolVar(&c.strict, "strict", false, "Fail on malformed numbers instead of reading them as zero")
	f.BoolVar(&c.raw, "raw", false, "Print plain markdown")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		return subcommands.ExitUsageError
	}

	formatter, err := format.New(c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var r io.Reader = os.Stdin
	if c.file != "-" {
		file, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", c.file, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}

	forms, err := normalize.ReadCSV(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}

	listings, err := c.compute(forms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(c.out, report.Markdown(listings, summary.Aggregate(listings), formatter), c.raw)
	return subcommands.ExitSuccess
}

// compute derives a listing per row. Row numbers in messages count the
// header as row 1.
func (c *reportCmd) compute(forms []model.FormInput) ([]model.Listing, error) {
	policy := normalize.Lenient
	if c.strict {
		policy = normalize.Strict
	}
	n := normalize.Normalizer{Policy: policy}

	listings := make([]model.Listing, 0, len(forms))
	for i, in := range forms {
		row := i + 2
		d, err := n.Draft(in)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if err := normalize.CheckSubmission(d); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping row %d: %v\n", row, err)
			continue
		}
		listings = append(listings, profit.Compute(strconv.Itoa(row), d))
	}
	return listings, nil
}
