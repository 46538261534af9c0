// Package normalize turns raw form text into the decimal quantities the
// profit calculator needs.
//
// Two parse policies exist. Lenient is the historical behaviour: malformed
// or empty text silently becomes zero so that one bad field degrades only
// itself. Strict reports a typed error for anything that is not a number.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput is returned by strict parsing for non-numeric text.
	ErrInvalidInput = errors.New("normalize: invalid numeric input")

	// ErrEmptyInput is returned by strict parsing for blank text.
	ErrEmptyInput = errors.New("normalize: empty input")
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// leadingNumber matches the longest numeric prefix, the way a browser's
// parseFloat reads "15%" as 15 and "12abc" as 12.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// wholeNumber matches text that is a decimal number and nothing else.
var wholeNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// LenientParse reads the leading decimal number of raw. Empty or
// non-numeric text yields zero; it never fails.
func LenientParse(raw string) decimal.Decimal {
	m := leadingNumber.FindString(strings.TrimSpace(raw))
	if m == "" {
		return decimal.Zero
	}
	v, err := toDecimal(m)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// StrictParse requires the whole trimmed text to be a decimal number.
func StrictParse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrEmptyInput
	}
	if !wholeNumber.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidInput, raw)
	}
	v, err := toDecimal(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidInput, raw, err)
	}
	return v, nil
}

// maxExponent bounds the decimal exponent of parsed input. Arithmetic on
// "1e900000000" rescales to a billion-digit integer.
const maxExponent = 30

var errOutOfRange = errors.New("exponent out of range")

// toDecimal converts text already matched by the number patterns.
func toDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimSuffix(s, ".")
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := v.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, errOutOfRange
	}
	return v, nil
}

// ParsePercentage converts a rate typed either in points ("10") or as a
// fraction ("0.10") into a fraction. Values above 1 are divided by 100;
// values at or below 1, negatives included, are returned unchanged.
func ParsePercentage(raw string) decimal.Decimal {
	n := LenientParse(raw)
	if n.GreaterThan(one) {
		return n.Div(hundred)
	}
	return n
}

// ParseMarketplaceFee resolves the fee field to an absolute amount for the
// given sale price using the magnitude heuristic of InferFee:
//
//	n <= 1        fraction of the sale price    ("0.15" -> 15% of price)
//	1 < n <= 100  percentage points            ("15"   -> 15% of price)
//	n > 100       flat amount                  ("150"  -> 150)
//
// A flat fee of 100 or less cannot be expressed this way, and "150" meant as
// 150% reads as a flat 150. Use an explicit fee mode when that matters.
func ParseMarketplaceFee(raw string, salePrice decimal.Decimal) decimal.Decimal {
	return InferFee(raw).Amount(salePrice)
}
