package pricing

import (
	"sort"

	domain "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// DiscountTier is one subtotal threshold of a tiered rule.
type DiscountTier struct {
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
	// Exclusive makes the threshold strict (subtotal > MinSubtotal).
	Exclusive bool            `json:"exclusive"`
	Pct       decimal.Decimal `json:"pct"`
	Label     string          `json:"label"`
}

func (t DiscountTier) reached(subtotal decimal.Decimal) bool {
	if t.Exclusive {
		return subtotal.GreaterThan(t.MinSubtotal)
	}
	return subtotal.GreaterThanOrEqual(t.MinSubtotal)
}

// TieredDiscountRule applies a flat percentage chosen by subtotal thresholds.
// Below the lowest tier the rule still claims the cart with 0% and no label.
type TieredDiscountRule struct {
	strategy.BaseStrategy
	policy  domain.Policy
	applies func(domain.ClientProfile) bool
	tiers   []DiscountTier
}

// NewTieredDiscountRule creates a tiered rule. Tiers may be given in any
// order; they are sorted by threshold descending so the highest reached
// tier wins.
func NewTieredDiscountRule(
	name string,
	policy domain.Policy,
	description string,
	applies func(domain.ClientProfile) bool,
	tiers []DiscountTier,
) *TieredDiscountRule {
	sorted := make([]DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinSubtotal.GreaterThan(sorted[j].MinSubtotal)
	})

	return &TieredDiscountRule{
		BaseStrategy: strategy.NewBaseStrategy(name, strategy.StrategyTypeDiscount, description),
		policy:       policy,
		applies:      applies,
		tiers:        sorted,
	}
}

// Tiers returns a copy of the tiers, highest threshold first
func (r *TieredDiscountRule) Tiers() []DiscountTier {
	out := make([]DiscountTier, len(r.tiers))
	copy(out, r.tiers)
	return out
}

// Policy implements domain.DiscountRule
func (r *TieredDiscountRule) Policy() domain.Policy { return r.policy }

// Matches implements domain.DiscountRule
func (r *TieredDiscountRule) Matches(in domain.DiscountInput) bool {
	return r.applies(in.Profile)
}

// Apply implements domain.DiscountRule
func (r *TieredDiscountRule) Apply(in domain.DiscountInput) domain.DiscountResult {
	for _, tier := range r.tiers {
		if tier.reached(in.Subtotal) {
			return domain.FlatDiscount(in.Items, tier.Pct, r.policy, tier.Label)
		}
	}
	return domain.FlatDiscount(in.Items, decimal.Zero, r.policy, "")
}

// SetupTiers are the church tiers unlocked by completing onboarding.
func SetupTiers() []DiscountTier {
	return []DiscountTier{
		{MinSubtotal: decimal.NewFromInt(501), Pct: decimal.NewFromInt(30), Label: "Premium"},
		{MinSubtotal: decimal.NewFromInt(301), Pct: decimal.NewFromInt(25), Label: "Avançado"},
		{MinSubtotal: decimal.Zero, Exclusive: true, Pct: decimal.NewFromInt(20), Label: "Básico"},
	}
}

// ResellerTiers are the volume tiers for resellers.
func ResellerTiers() []DiscountTier {
	return []DiscountTier{
		{MinSubtotal: decimal.RequireFromString("699.90"), Pct: decimal.NewFromInt(30), Label: "Ouro"},
		{MinSubtotal: decimal.RequireFromString("499.90"), Pct: decimal.NewFromInt(25), Label: "Prata"},
		{MinSubtotal: decimal.RequireFromString("299.90"), Pct: decimal.NewFromInt(20), Label: "Bronze"},
	}
}

// NewSetupRule returns the church/onboarding tier rule.
func NewSetupRule() *TieredDiscountRule {
	return NewTieredDiscountRule(
		"setup",
		domain.PolicySetup,
		"Tiered discount for churches that completed onboarding",
		func(p domain.ClientProfile) bool {
			return p.Type == domain.ClientTypeChurch && p.OnboardingComplete
		},
		SetupTiers(),
	)
}

// NewResellerRule returns the reseller volume tier rule.
func NewResellerRule() *TieredDiscountRule {
	return NewTieredDiscountRule(
		"reseller",
		domain.PolicyReseller,
		"Tiered discount for resellers by order subtotal",
		func(p domain.ClientProfile) bool {
			return p.Type == domain.ClientTypeReseller
		},
		ResellerTiers(),
	)
}
