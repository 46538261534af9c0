package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atmx/listing-metrics/internal/model"
)

// Policy selects how malformed numeric text is handled.
type Policy string

const (
	Lenient Policy = "lenient" // malformed text becomes zero
	Strict  Policy = "strict"  // malformed text is reported
)

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Lenient:
		return Lenient, nil
	case Strict:
		return Strict, nil
	}
	return "", fmt.Errorf("normalize: unknown input policy %q", s)
}

// FieldError reports one form field that failed strict parsing.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e FieldError) Unwrap() error { return e.Err }

// FieldErrors collects every failing field of a form.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e FieldErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, fe := range e {
		errs[i] = fe
	}
	return errs
}

// Normalizer turns raw form input into a Draft under a parse policy.
type Normalizer struct {
	Policy Policy
}

// Draft normalizes one form. Under Lenient it only fails on an unknown fee
// mode. Under Strict every non-empty numeric field must be a number; blank
// fields still read as zero.
func (n Normalizer) Draft(in model.FormInput) (model.Draft, error) {
	var errs FieldErrors
	num := func(field, raw string) decimal.Decimal {
		if n.Policy != Strict {
			return LenientParse(raw)
		}
		v, err := StrictParse(raw)
		if errors.Is(err, ErrEmptyInput) {
			return decimal.Zero
		}
		if err != nil {
			errs = append(errs, FieldError{Field: field, Err: err})
		}
		return v
	}

	d := model.Draft{
		Name:              strings.TrimSpace(in.Name),
		ProductID:         strings.TrimSpace(in.ProductID),
		SalePrice:         num("sale_price", in.SalePrice),
		CostPrice:         num("cost_price", in.CostPrice),
		ShippingCost:      num("shipping_cost", in.ShippingCost),
		MarketplaceFeeRaw: strings.TrimSpace(in.MarketplaceFee),
		TaxRateRaw:        strings.TrimSpace(in.TaxRate),
	}
	// Fee and tax stay raw for the calculator; strict mode only checks them.
	num("marketplace_fee", in.MarketplaceFee)
	num("tax_rate", in.TaxRate)

	fee, err := ExplicitFee(in.FeeMode, in.MarketplaceFee)
	if err != nil {
		errs = append(errs, FieldError{Field: "fee_mode", Err: err})
	}
	d.MarketplaceFee = fee

	if len(errs) > 0 {
		return d, errs
	}
	return d, nil
}

// Degraded names the non-empty numeric fields whose text the lenient policy
// cannot read exactly, i.e. fields that were zeroed or truncated.
func Degraded(in model.FormInput) []string {
	var out []string
	for _, f := range []struct{ name, raw string }{
		{"sale_price", in.SalePrice},
		{"cost_price", in.CostPrice},
		{"marketplace_fee", in.MarketplaceFee},
		{"tax_rate", in.TaxRate},
		{"shipping_cost", in.ShippingCost},
	} {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		if _, err := StrictParse(f.raw); err != nil {
			out = append(out, f.name)
		}
	}
	return out
}

var (
	// ErrNameRequired is returned for a listing or product without a name.
	ErrNameRequired = errors.New("name is required")

	// ErrNonPositiveSale is returned when the sale price is not above zero.
	ErrNonPositiveSale = errors.New("sale_price must be greater than zero")
)

// CheckSubmission applies the rules a draft must meet before it is stored:
// a non-blank name and a positive sale price. Computing metrics does not
// require either.
func CheckSubmission(d model.Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if !d.SalePrice.IsPositive() {
		return ErrNonPositiveSale
	}
	return nil
}
