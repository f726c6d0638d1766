package pricing

import (
	"testing"

	domain "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mixedCart() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: "joao", Title: "Livro Evangelho de João", UnitPrice: dec("40"), Quantity: 2},
		{ProductID: "biblia", Title: "Bíblia Sagrada", UnitPrice: dec("120"), Quantity: 1},
		{ProductID: "rev", Title: "Revista EBD Aluno", UnitPrice: dec("15.90"), Quantity: 10},
	}
}

func TestChainResolver_PriorityOrder(t *testing.T) {
	r := NewDefaultResolver(ResolverOptions{})
	assert.Equal(t, []string{"category", "seller", "advec", "setup", "reseller", "representative"}, r.Rules())

	overrides := map[domain.Category]decimal.Decimal{domain.CategoryBiblia: dec("10")}

	tests := []struct {
		name     string
		profile  domain.ClientProfile
		expected domain.Policy
	}{
		{
			name: "category override beats everything",
			profile: domain.ClientProfile{
				Type: domain.ClientTypeADVEC, SellerDiscountPct: dec("15"), CategoryOverrides: overrides,
			},
			expected: domain.PolicyCategory,
		},
		{
			name:     "seller beats client type",
			profile:  domain.ClientProfile{Type: domain.ClientTypeADVEC, SellerDiscountPct: dec("15")},
			expected: domain.PolicySeller,
		},
		{
			name:     "advec",
			profile:  domain.ClientProfile{Type: domain.ClientTypeADVEC},
			expected: domain.PolicyADVEC,
		},
		{
			name:     "church with onboarding",
			profile:  domain.ClientProfile{Type: domain.ClientTypeChurch, OnboardingComplete: true},
			expected: domain.PolicySetup,
		},
		{
			name:     "church without onboarding",
			profile:  domain.ClientProfile{Type: domain.ClientTypeChurch},
			expected: domain.PolicyNone,
		},
		{
			name:     "reseller",
			profile:  domain.ClientProfile{Type: domain.ClientTypeReseller},
			expected: domain.PolicyReseller,
		},
		{
			name:     "representative without configured rate",
			profile:  domain.ClientProfile{Type: domain.ClientTypeRepresentative},
			expected: domain.PolicyNone,
		},
		{
			name:     "unknown type",
			profile:  domain.ClientProfile{Type: domain.ClientType("")},
			expected: domain.PolicyNone,
		},
		{
			name: "all-zero overrides fall through",
			profile: domain.ClientProfile{
				Type:              domain.ClientTypeReseller,
				CategoryOverrides: map[domain.Category]decimal.Decimal{domain.CategoryBiblia: decimal.Zero},
			},
			expected: domain.PolicyReseller,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(mixedCart(), tt.profile)
			assert.Equal(t, tt.expected, res.Policy)
			assert.True(t, res.Policy.IsValid())
		})
	}
}

func TestChainResolver_ADVEC(t *testing.T) {
	r := NewDefaultResolver(ResolverOptions{})
	profile := domain.ClientProfile{Type: domain.ClientTypeADVEC}

	t.Run("allow-listed title gets 50%", func(t *testing.T) {
		res := r.Resolve([]domain.LineItem{
			{ProductID: "joao", Title: "EVANGELHO DE JOAO - bolso", UnitPrice: dec("20"), Quantity: 1},
		}, profile)
		require.Len(t, res.Lines, 1)
		assert.True(t, dec("50").Equal(res.Lines[0].DiscountPct))
		assert.True(t, dec("50").Equal(res.DiscountPct))
		assert.True(t, dec("10").Equal(res.Total))
	})

	t.Run("other title gets 40%", func(t *testing.T) {
		res := r.Resolve([]domain.LineItem{
			{ProductID: "x", Title: "Bíblia", UnitPrice: dec("20"), Quantity: 1},
		}, profile)
		assert.True(t, dec("40").Equal(res.DiscountPct))
	})

	t.Run("mixed cart blends between 40 and 50", func(t *testing.T) {
		res := r.Resolve(mixedCart(), profile)
		assert.True(t, res.DiscountPct.GreaterThanOrEqual(dec("40")), res.DiscountPct.String())
		assert.True(t, res.DiscountPct.LessThanOrEqual(dec("50")), res.DiscountPct.String())
		// 80*50% + 120*40% + 159*40% = 40 + 48 + 63.6 = 151.6 of 359
		assert.True(t, dec("151.60").Equal(res.DiscountAmount))
		assert.True(t, dec("42.23").Equal(res.DiscountPct), res.DiscountPct.String())
		assert.Equal(t, "", res.TierLabel)
	})

	t.Run("blended percent comes from unrounded line discounts", func(t *testing.T) {
		res := r.Resolve([]domain.LineItem{
			{ProductID: "joao", Title: "Evangelho de João", UnitPrice: dec("9.99"), Quantity: 1},
			{ProductID: "rev", Title: "Revista EBD Adultos Aluno", UnitPrice: dec("12.99"), Quantity: 1},
		}, profile)
		// 4.995 + 5.196 = 10.191 of 22.98
		assert.True(t, dec("44.35").Equal(res.DiscountPct), res.DiscountPct.String())
		assert.True(t, dec("10.19").Equal(res.DiscountAmount), res.DiscountAmount.String())
		assert.True(t, dec("12.79").Equal(res.Total), res.Total.String())
	})
}

func TestChainResolver_CategoryOverrides(t *testing.T) {
	r := NewDefaultResolver(ResolverOptions{})
	profile := domain.ClientProfile{
		Type: domain.ClientTypeOther,
		CategoryOverrides: map[domain.Category]decimal.Decimal{
			domain.CategoryBiblia:       dec("10"),
			domain.CategoryRevistaAluno: dec("20"),
		},
	}

	res := r.Resolve(mixedCart(), profile)
	// 0 + 12 + 31.8 = 43.8 of 359 -> 12.20%
	assert.Equal(t, domain.PolicyCategory, res.Policy)
	assert.True(t, dec("43.80").Equal(res.DiscountAmount), res.DiscountAmount.String())
	assert.True(t, dec("12.20").Equal(res.DiscountPct), res.DiscountPct.String())
	assert.True(t, res.Lines[0].DiscountAmount.IsZero())
}

func TestChainResolver_Representative(t *testing.T) {
	r := NewDefaultResolver(ResolverOptions{RepresentativePct: dec("35")})
	res := r.Resolve(mixedCart(), domain.ClientProfile{Type: domain.ClientTypeRepresentative})
	assert.Equal(t, domain.PolicyRepresentative, res.Policy)
	assert.Equal(t, "Representante", res.TierLabel)
	assert.True(t, dec("35").Equal(res.DiscountPct))
}

func TestChainResolver_Invariants(t *testing.T) {
	r := NewDefaultResolver(ResolverOptions{RepresentativePct: dec("12")})
	profiles := []domain.ClientProfile{
		{Type: domain.ClientTypeADVEC},
		{Type: domain.ClientTypeChurch, OnboardingComplete: true},
		{Type: domain.ClientTypeReseller},
		{Type: domain.ClientTypeRepresentative},
		{Type: domain.ClientTypeOther, SellerDiscountPct: dec("7.5")},
		{Type: domain.ClientTypeOther},
	}
	carts := [][]domain.LineItem{
		nil,
		mixedCart(),
		{{Title: "x", UnitPrice: dec("0.33"), Quantity: 3}},
		{{Title: "Bíblia", UnitPrice: dec("999.99"), Quantity: 4}},
	}

	for _, p := range profiles {
		for _, items := range carts {
			res := r.Resolve(items, p)
			assert.True(t, res.Policy.IsValid())
			assert.True(t, res.DiscountAmount.Equal(res.Subtotal.Sub(res.Total)))
			assert.False(t, res.Total.IsNegative())
		}
	}
}
