package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Hundred is the percentage base.
var Hundred = decimal.NewFromInt(100)

// ErrPercentOutOfRange is returned for percentages outside [0, 100].
var ErrPercentOutOfRange = errors.New("percentage must be between 0 and 100")

// brl prints amounts with Brazilian grouping ("1.234,56").
var brl = message.NewPrinter(language.BrazilianPortuguese)

// Percentage returns amount * pct / 100 without rounding.
func Percentage(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(Hundred)
}

// RoundCents rounds half away from zero to two places, which is half-up for
// the non-negative amounts handled here.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidatePercent reports whether pct is within [0, 100].
func ValidatePercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(Hundred) {
		return ErrPercentOutOfRange
	}
	return nil
}

// ClampPercent forces pct into [0, 100].
func ClampPercent(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(Hundred) {
		return Hundred
	}
	return pct
}

// FormatBRL renders an amount as Brazilian reais, e.g. "R$ 1.234,56".
// Only used for presentation; arithmetic never leaves decimal.
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + brl.Sprintf("%.2f", RoundCents(d).InexactFloat64())
}
