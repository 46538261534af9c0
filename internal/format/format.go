// Package format renders listing values for display. Currency strings follow
// the go-money tables for the configured market; percentages always carry
// exactly two fraction digits. Formatting never changes the values it reads.
package format

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/atmx/listing-metrics/internal/model"
)

// DefaultCurrency is the Brazilian real, the home market of the tracker.
const DefaultCurrency = "BRL"

// ErrUnknownCurrency is returned for an ISO code go-money does not know.
var ErrUnknownCurrency = errors.New("format: unknown currency")

var hundred = decimal.NewFromInt(100)

// Formatter renders amounts in one currency.
type Formatter struct {
	cur *money.Currency
}

// New returns a Formatter for an ISO 4217 currency code.
func New(code string) (*Formatter, error) {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if cur == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return &Formatter{cur: cur}, nil
}

// MustNew is like New but panics on an unknown code.
func MustNew(code string) *Formatter {
	f, err := New(code)
	if err != nil {
		panic(err)
	}
	return f
}

// Code returns the ISO code of the formatter's currency.
func (f *Formatter) Code() string { return f.cur.Code }

// Currency renders amount with the currency symbol and separators, rounded
// half away from zero to the currency's minor unit.
func (f *Formatter) Currency(amount decimal.Decimal) string {
	minor := amount.Round(int32(f.cur.Fraction)).Shift(int32(f.cur.Fraction))
	if !minor.BigInt().IsInt64() {
		return f.formatBig(minor.BigInt())
	}
	return f.cur.Formatter().Format(minor.IntPart())
}

// formatBig lays out minor units beyond int64 the way go-money's Formatter
// lays out an int64.
func (f *Formatter) formatBig(minor *big.Int) string {
	sa := new(big.Int).Abs(minor).String()
	frac := f.cur.Fraction
	if f.cur.Thousand != "" {
		for i := len(sa) - frac - 3; i > 0; i -= 3 {
			sa = sa[:i] + f.cur.Thousand + sa[i:]
		}
	}
	if frac > 0 {
		sa = sa[:len(sa)-frac] + f.cur.Decimal + sa[len(sa)-frac:]
	}
	sa = strings.Replace(f.cur.Template, "1", sa, 1)
	sa = strings.Replace(sa, "$", f.cur.Grapheme, 1)
	if minor.Sign() < 0 {
		sa = "-" + sa
	}
	return sa
}

// Percentage renders a fraction as a percentage with two fraction digits,
// e.g. 0.2216 -> "22.16%".
func (f *Formatter) Percentage(fraction decimal.Decimal) string {
	return fraction.Mul(hundred).StringFixed(2) + "%"
}

// Fee renders a percentage fee as a percentage and a fixed fee as currency.
func (f *Formatter) Fee(fee model.Fee) string {
	if fee.Kind == model.FeeFixed {
		return f.Currency(fee.Value)
	}
	return f.Percentage(fee.Value)
}

var defaultFormatter = MustNew(DefaultCurrency)

// FormatCurrency renders amount in the default market currency.
func FormatCurrency(amount decimal.Decimal) string {
	return defaultFormatter.Currency(amount)
}

// FormatPercentage renders a fraction as a two-digit percentage.
func FormatPercentage(fraction decimal.Decimal) string {
	return defaultFormatter.Percentage(fraction)
}
