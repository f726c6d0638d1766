package pricing

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/strategy"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Policy tags the single discount rule that produced a result.
type Policy string

const (
	PolicyADVEC          Policy = "advec"
	PolicySetup          Policy = "setup"
	PolicyReseller       Policy = "reseller"
	PolicyRepresentative Policy = "representative"
	PolicySeller         Policy = "seller"
	PolicyCategory       Policy = "category"
	PolicyNone           Policy = "none"
)

// AllPolicies returns the closed set of policy tags.
func AllPolicies() []Policy {
	return []Policy{
		PolicyCategory,
		PolicySeller,
		PolicyADVEC,
		PolicySetup,
		PolicyReseller,
		PolicyRepresentative,
		PolicyNone,
	}
}

// IsValid returns true if p is in the closed set
func (p Policy) IsValid() bool {
	for _, known := range AllPolicies() {
		if p == known {
			return true
		}
	}
	return false
}

// LineDiscount is the per-line breakdown. DiscountPct and DiscountAmount are
// exact, never rounded, so reports can re-aggregate without drift.
type LineDiscount struct {
	ProductID      string          `json:"product_id"`
	Category       Category        `json:"category"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// DiscountResult is computed on demand and never persisted.
//
// DiscountPct is the blended percentage rounded to two places, taken from
// the unrounded line discounts; DiscountAmount is their sum rounded to cents
// and always equals Subtotal - Total.
type DiscountResult struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	Policy         Policy          `json:"policy"`
	TierLabel      string          `json:"tier_label"`
	Lines          []LineDiscount  `json:"lines"`
}

// NoDiscount returns the result for a cart no rule applies to.
func NoDiscount(items []LineItem) DiscountResult {
	return FlatDiscount(items, decimal.Zero, PolicyNone, "")
}

// FlatDiscount applies one percentage to every line.
func FlatDiscount(items []LineItem, pct decimal.Decimal, policy Policy, label string) DiscountResult {
	pct = valueobject.ClampPercent(pct)
	res := PerLineDiscount(items, func(LineItem) decimal.Decimal { return pct }, policy, label)
	// A flat rate is reported as configured, not re-derived from rounded cents.
	res.DiscountPct = pct
	return res
}

// PerLineDiscount applies pctFor to each line and reports the blended
// percentage: the exact sum of line discounts over the subtotal, times 100,
// rounded to two places. Only the cart discount is rounded to cents.
func PerLineDiscount(items []LineItem, pctFor func(LineItem) decimal.Decimal, policy Policy, label string) DiscountResult {
	lines := make([]LineDiscount, 0, len(items))
	subtotal := decimal.Zero
	exactDiscount := decimal.Zero

	for _, item := range items {
		lineSubtotal := item.Subtotal()
		pct := valueobject.ClampPercent(pctFor(item))
		amount := valueobject.Percentage(lineSubtotal, pct)

		lines = append(lines, LineDiscount{
			ProductID:      item.ProductID,
			Category:       item.Category,
			Subtotal:       lineSubtotal,
			DiscountPct:    pct,
			DiscountAmount: amount,
		})
		subtotal = subtotal.Add(lineSubtotal)
		exactDiscount = exactDiscount.Add(amount)
	}

	if exactDiscount.GreaterThan(subtotal) {
		exactDiscount = subtotal
	}
	discount := valueobject.RoundCents(exactDiscount)

	blended := decimal.Zero
	if subtotal.IsPositive() {
		blended = exactDiscount.Div(subtotal).Mul(valueobject.Hundred).Round(2)
	}

	return DiscountResult{
		Subtotal:       subtotal,
		DiscountPct:    blended,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
		Policy:         policy,
		TierLabel:      label,
		Lines:          lines,
	}
}

// DiscountInput is what every rule sees: the classified cart, the profile and
// the precomputed subtotal.
type DiscountInput struct {
	Items    []LineItem
	Profile  ClientProfile
	Subtotal decimal.Decimal
}

// NewDiscountInput classifies items and computes the subtotal once.
func NewDiscountInput(items []LineItem, profile ClientProfile) DiscountInput {
	classified := Classified(items)
	return DiscountInput{
		Items:    classified,
		Profile:  profile,
		Subtotal: Subtotal(classified),
	}
}

// DiscountRule is one predicate/handler pair of the resolver chain.
type DiscountRule interface {
	strategy.Strategy
	// Policy is the tag stamped on results produced by Apply.
	Policy() Policy
	// Matches reports whether the rule claims the cart.
	Matches(in DiscountInput) bool
	// Apply computes the result; only called after Matches returned true.
	Apply(in DiscountInput) DiscountResult
}

// DiscountResolver picks exactly one policy for a cart.
type DiscountResolver interface {
	Resolve(items []LineItem, profile ClientProfile) DiscountResult
}
