package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atmx/listing-metrics/internal/model"
)

// ErrUnknownFeeMode is returned for a fee mode other than "", "percentage"
// or "fixed".
var ErrUnknownFeeMode = errors.New("normalize: unknown fee mode")

// InferFee guesses the unit of a fee from its magnitude. It backs the
// single-field form where users type "15", "0.15" or "150" without
// choosing a mode.
func InferFee(raw string) model.Fee {
	n := LenientParse(raw)
	switch {
	case n.LessThanOrEqual(one):
		return model.PercentageFee(n)
	case n.LessThanOrEqual(hundred):
		return model.PercentageFee(n.Div(hundred))
	default:
		return model.FixedFee(n)
	}
}

// ExplicitFee builds a fee whose unit was chosen by the caller. An empty
// mode returns nil so the calculator falls back to InferFee.
func ExplicitFee(mode, raw string) (*model.Fee, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "":
		return nil, nil
	case string(model.FeePercentage):
		f := model.PercentageFee(ParsePercentage(raw))
		return &f, nil
	case string(model.FeeFixed):
		f := model.FixedFee(LenientParse(raw))
		return &f, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeeMode, mode)
	}
}
