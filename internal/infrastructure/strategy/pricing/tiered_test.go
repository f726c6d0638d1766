package pricing

import (
	"testing"

	domain "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func cart(subtotal string) []domain.LineItem {
	return []domain.LineItem{
		{ProductID: "p1", Title: "Revista EBD", UnitPrice: decimal.RequireFromString(subtotal), Quantity: 1},
	}
}

func TestSetupRule_Tiers(t *testing.T) {
	rule := NewSetupRule()
	profile := domain.ClientProfile{Type: domain.ClientTypeChurch, OnboardingComplete: true}

	tests := []struct {
		name          string
		subtotal      string
		expectedPct   decimal.Decimal
		expectedLabel string
	}{
		{"exactly 501 is premium", "501", decimal.NewFromInt(30), "Premium"},
		{"above 501 is premium", "1200.50", decimal.NewFromInt(30), "Premium"},
		{"exactly 301 is advanced", "301", decimal.NewFromInt(25), "Avançado"},
		{"just below 501", "500.99", decimal.NewFromInt(25), "Avançado"},
		{"small order is basic", "50", decimal.NewFromInt(20), "Básico"},
		{"one cent is basic", "0.01", decimal.NewFromInt(20), "Básico"},
		{"zero subtotal has no tier", "0", decimal.Zero, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := domain.NewDiscountInput(cart(tt.subtotal), profile)
			assert.True(t, rule.Matches(in))

			res := rule.Apply(in)
			assert.True(t, tt.expectedPct.Equal(res.DiscountPct), "pct %s", res.DiscountPct)
			assert.Equal(t, tt.expectedLabel, res.TierLabel)
			assert.Equal(t, domain.PolicySetup, res.Policy)
		})
	}
}

func TestSetupRule_RequiresOnboarding(t *testing.T) {
	rule := NewSetupRule()
	in := domain.NewDiscountInput(cart("600"), domain.ClientProfile{Type: domain.ClientTypeChurch})
	assert.False(t, rule.Matches(in))
}

func TestResellerRule_Tiers(t *testing.T) {
	rule := NewResellerRule()
	profile := domain.ClientProfile{Type: domain.ClientTypeReseller}

	tests := []struct {
		name          string
		subtotal      string
		expectedPct   decimal.Decimal
		expectedLabel string
	}{
		{"gold at threshold", "699.90", decimal.NewFromInt(30), "Ouro"},
		{"silver at threshold", "499.90", decimal.NewFromInt(25), "Prata"},
		{"just under gold", "699.89", decimal.NewFromInt(25), "Prata"},
		{"bronze", "300", decimal.NewFromInt(20), "Bronze"},
		{"bronze at threshold", "299.90", decimal.NewFromInt(20), "Bronze"},
		{"below bronze", "100", decimal.Zero, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rule.Apply(domain.NewDiscountInput(cart(tt.subtotal), profile))
			assert.True(t, tt.expectedPct.Equal(res.DiscountPct), "pct %s", res.DiscountPct)
			assert.Equal(t, tt.expectedLabel, res.TierLabel)
			assert.Equal(t, domain.PolicyReseller, res.Policy)
		})
	}
}

func TestTieredDiscountRule_SortsTiers(t *testing.T) {
	rule := NewTieredDiscountRule("custom", domain.PolicyReseller, "test",
		func(domain.ClientProfile) bool { return true },
		[]DiscountTier{
			{MinSubtotal: decimal.NewFromInt(10), Pct: decimal.NewFromInt(5), Label: "low"},
			{MinSubtotal: decimal.NewFromInt(100), Pct: decimal.NewFromInt(15), Label: "high"},
		})

	tiers := rule.Tiers()
	assert.Equal(t, "high", tiers[0].Label)
	assert.Equal(t, "custom", rule.Name())
	assert.Equal(t, strategy.StrategyTypeDiscount, rule.Type())

	res := rule.Apply(domain.NewDiscountInput(cart("150"), domain.ClientProfile{}))
	assert.Equal(t, "high", res.TierLabel)
}
