package pricing

import (
	domain "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// DefaultADVECTitles are the title fragments that get the higher ADVEC rate.
var DefaultADVECTitles = []string{
	"evangelho de joão",
	"o maior de todos",
	"o amor de deus",
}

// ADVECRule gives the partner organization a fixed per-item schedule:
// allow-listed titles at the high rate, everything else at the base rate.
type ADVECRule struct {
	strategy.BaseStrategy
	titles   []string
	highRate decimal.Decimal
	baseRate decimal.Decimal
}

// NewADVECRule creates the ADVEC rule with the standard 50%/40% schedule
func NewADVECRule() *ADVECRule {
	return &ADVECRule{
		BaseStrategy: strategy.NewBaseStrategy(
			"advec",
			strategy.StrategyTypeDiscount,
			"ADVEC partner schedule: 50% on selected titles, 40% otherwise",
		),
		titles:   DefaultADVECTitles,
		highRate: decimal.NewFromInt(50),
		baseRate: decimal.NewFromInt(40),
	}
}

// Policy implements domain.DiscountRule
func (r *ADVECRule) Policy() domain.Policy { return domain.PolicyADVEC }

// Matches implements domain.DiscountRule
func (r *ADVECRule) Matches(in domain.DiscountInput) bool {
	return in.Profile.Type == domain.ClientTypeADVEC
}

// Apply implements domain.DiscountRule
func (r *ADVECRule) Apply(in domain.DiscountInput) domain.DiscountResult {
	return domain.PerLineDiscount(in.Items, r.rateFor, domain.PolicyADVEC, "")
}

func (r *ADVECRule) rateFor(item domain.LineItem) decimal.Decimal {
	for _, title := range r.titles {
		if domain.ContainsFolded(item.Title, title) {
			return r.highRate
		}
	}
	return r.baseRate
}
