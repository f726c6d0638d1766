package pricing

import (
	domain "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// CategoryOverrideRule applies the client's per-category percentages.
// All-zero overrides do not claim the cart.
type CategoryOverrideRule struct {
	strategy.BaseStrategy
}

// NewCategoryOverrideRule creates the category override rule
func NewCategoryOverrideRule() *CategoryOverrideRule {
	return &CategoryOverrideRule{
		BaseStrategy: strategy.NewBaseStrategy(
			"category",
			strategy.StrategyTypeDiscount,
			"Per-category discount overrides set on the client profile",
		),
	}
}

// Policy implements domain.DiscountRule
func (r *CategoryOverrideRule) Policy() domain.Policy { return domain.PolicyCategory }

// Matches implements domain.DiscountRule
func (r *CategoryOverrideRule) Matches(in domain.DiscountInput) bool {
	return in.Profile.HasCategoryOverrides()
}

// Apply implements domain.DiscountRule
func (r *CategoryOverrideRule) Apply(in domain.DiscountInput) domain.DiscountResult {
	return domain.PerLineDiscount(in.Items, func(item domain.LineItem) decimal.Decimal {
		return in.Profile.OverrideFor(item.Category)
	}, domain.PolicyCategory, "")
}
