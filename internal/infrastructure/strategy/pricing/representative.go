package pricing

import (
	domain "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// RepresentativeRule gives sales representatives a configured flat rate.
// With a zero rate the rule never matches and representatives fall through
// to no discount.
type RepresentativeRule struct {
	strategy.BaseStrategy
	pct decimal.Decimal
}

// NewRepresentativeRule creates the representative rule with the given rate
func NewRepresentativeRule(pct decimal.Decimal) *RepresentativeRule {
	return &RepresentativeRule{
		BaseStrategy: strategy.NewBaseStrategy(
			"representative",
			strategy.StrategyTypeDiscount,
			"Flat discount for sales representatives buying for themselves",
		),
		pct: pct,
	}
}

// Policy implements domain.DiscountRule
func (r *RepresentativeRule) Policy() domain.Policy { return domain.PolicyRepresentative }

// Matches implements domain.DiscountRule
func (r *RepresentativeRule) Matches(in domain.DiscountInput) bool {
	return in.Profile.Type == domain.ClientTypeRepresentative && r.pct.IsPositive()
}

// Apply implements domain.DiscountRule
func (r *RepresentativeRule) Apply(in domain.DiscountInput) domain.DiscountResult {
	return domain.FlatDiscount(in.Items, r.pct, domain.PolicyRepresentative, "Representante")
}
