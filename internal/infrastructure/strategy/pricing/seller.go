package pricing

import (
	domain "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/strategy"
)

// SellerDiscountRule applies the flat percentage a seller assigned to the client.
type SellerDiscountRule struct {
	strategy.BaseStrategy
}

// NewSellerDiscountRule creates the seller discount rule
func NewSellerDiscountRule() *SellerDiscountRule {
	return &SellerDiscountRule{
		BaseStrategy: strategy.NewBaseStrategy(
			"seller",
			strategy.StrategyTypeDiscount,
			"Flat discount assigned by the client's seller",
		),
	}
}

// Policy implements domain.DiscountRule
func (r *SellerDiscountRule) Policy() domain.Policy { return domain.PolicySeller }

// Matches implements domain.DiscountRule
func (r *SellerDiscountRule) Matches(in domain.DiscountInput) bool {
	return in.Profile.SellerDiscountPct.IsPositive()
}

// Apply implements domain.DiscountRule
func (r *SellerDiscountRule) Apply(in domain.DiscountInput) domain.DiscountResult {
	return domain.FlatDiscount(in.Items, in.Profile.SellerDiscountPct, domain.PolicySeller, "")
}
