package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	strategypricing "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/strategy/pricing"
)

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*pricing.ClientProfile, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.ClientProfile), args.Error(1)
}

func (m *mockProfileRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]pricing.ClientProfile, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]pricing.ClientProfile), args.Error(1)
}

func (m *mockProfileRepo) Save(ctx context.Context, profile *pricing.ClientProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func newQuoteService(repo *mockProfileRepo) *QuoteService {
	return NewQuoteService(repo, strategypricing.NewDefaultResolver(strategypricing.ResolverOptions{}), nil)
}

func item(title, price string, qty int) pricing.LineItem {
	return pricing.LineItem{ProductID: title, Title: title, UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestQuoteService_Quote(t *testing.T) {
	ctx := context.Background()
	tenantID, clientID := uuid.New(), uuid.New()

	church, err := pricing.NewClientProfile(tenantID, "Igreja Central", pricing.ClientTypeChurch)
	require.NoError(t, err)
	church.CompleteOnboarding()

	repo := new(mockProfileRepo)
	repo.On("FindByID", ctx, tenantID, clientID).Return(church, nil)
	svc := newQuoteService(repo)

	res, err := svc.Quote(ctx, tenantID, clientID, []pricing.LineItem{
		item("Revista Adultos Aluno", "35.00", 10),
	})
	require.NoError(t, err)
	assert.Equal(t, pricing.PolicySetup, res.Policy)
	assert.Equal(t, "Avançado", res.TierLabel)
	assert.True(t, res.DiscountPct.Equal(decimal.NewFromInt(25)))
	assert.True(t, res.Total.Equal(decimal.RequireFromString("262.50")))
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Category.IsValid())
	repo.AssertExpectations(t)
}

func TestQuoteService_QuoteErrors(t *testing.T) {
	ctx := context.Background()
	tenantID, clientID := uuid.New(), uuid.New()

	repo := new(mockProfileRepo)
	repo.On("FindByID", ctx, tenantID, clientID).Return(nil, pricing.ErrClientNotFound)
	svc := newQuoteService(repo)

	_, err := svc.Quote(ctx, tenantID, clientID, []pricing.LineItem{item("Bíblia", "10", 1)})
	assert.ErrorIs(t, err, pricing.ErrClientNotFound)

	profile := pricing.ClientProfile{Type: pricing.ClientTypeReseller}
	_, err = svc.QuoteAnonymous(ctx, nil, profile)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.QuoteAnonymous(ctx, []pricing.LineItem{item("Bíblia", "10", 0)}, profile)
	assert.Error(t, err)

	_, err = svc.QuoteAnonymous(ctx, []pricing.LineItem{item("Bíblia", "-1", 1)}, profile)
	assert.Error(t, err)
}

func TestQuoteService_QuoteAnonymous(t *testing.T) {
	svc := newQuoteService(new(mockProfileRepo))
	ctx := context.Background()

	tests := []struct {
		name   string
		ptype  pricing.ClientType
		items  []pricing.LineItem
		policy pricing.Policy
		pct    string
		label  string
	}{
		{
			name:  "advec blends allow-listed and base rates",
			ptype: pricing.ClientTypeADVEC,
			items: []pricing.LineItem{
				item("Evangelho de JOAO - Revista", "100", 1),
				item("Bíblia de Estudo", "100", 1),
			},
			policy: pricing.PolicyADVEC,
			pct:    "45",
		},
		{
			name:   "reseller gold tier",
			ptype:  pricing.ClientTypeReseller,
			items:  []pricing.LineItem{item("Kit Professor", "699.90", 1)},
			policy: pricing.PolicyReseller,
			pct:    "30",
			label:  "Ouro",
		},
		{
			name:   "reseller below bronze",
			ptype:  pricing.ClientTypeReseller,
			items:  []pricing.LineItem{item("Kit Professor", "100", 1)},
			policy: pricing.PolicyReseller,
			pct:    "0",
		},
		{
			name:   "unknown type gets nothing",
			ptype:  pricing.ClientType("vip"),
			items:  []pricing.LineItem{item("Livro", "1000", 1)},
			policy: pricing.PolicyNone,
			pct:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.QuoteAnonymous(ctx, tt.items, pricing.ClientProfile{Type: tt.ptype})
			require.NoError(t, err)
			assert.Equal(t, tt.policy, res.Policy)
			assert.Equal(t, tt.label, res.TierLabel)
			assert.True(t, res.DiscountPct.Equal(decimal.RequireFromString(tt.pct)), "pct %s", res.DiscountPct)
			assert.True(t, res.DiscountAmount.Equal(res.Subtotal.Sub(res.Total)))
		})
	}
}

func TestQuoteService_SaveProfile(t *testing.T) {
	ctx := context.Background()
	tenantID, clientID := uuid.New(), uuid.New()

	t.Run("creates under the given id", func(t *testing.T) {
		repo := new(mockProfileRepo)
		repo.On("FindByID", ctx, tenantID, clientID).Return(nil, pricing.ErrClientNotFound)
		repo.On("Save", ctx, mock.MatchedBy(func(p *pricing.ClientProfile) bool {
			return p.ID == clientID && p.Type == pricing.ClientTypeChurch && p.OnboardingComplete
		})).Return(nil)

		profile, err := newQuoteService(repo).SaveProfile(ctx, tenantID, clientID, ProfileInput{
			Name: "Igreja Batista", Type: "IGREJA CNPJ", OnboardingComplete: true,
		})
		require.NoError(t, err)
		assert.Equal(t, tenantID, profile.TenantID)
		repo.AssertExpectations(t)
	})

	t.Run("updates existing", func(t *testing.T) {
		existing, err := pricing.NewClientProfile(tenantID, "Loja", pricing.ClientTypeOther)
		require.NoError(t, err)
		repo := new(mockProfileRepo)
		repo.On("FindByID", ctx, tenantID, clientID).Return(existing, nil)
		repo.On("Save", ctx, existing).Return(nil)

		profile, err := newQuoteService(repo).SaveProfile(ctx, tenantID, clientID, ProfileInput{
			Type: "revendedor", SellerDiscountPct: decimal.NewFromInt(12),
		})
		require.NoError(t, err)
		assert.Equal(t, "Loja", profile.Name)
		assert.Equal(t, pricing.ClientTypeReseller, profile.Type)
		assert.True(t, profile.SellerDiscountPct.Equal(decimal.NewFromInt(12)))
	})

	t.Run("rejects seller pct above 100", func(t *testing.T) {
		existing, err := pricing.NewClientProfile(tenantID, "Loja", pricing.ClientTypeOther)
		require.NoError(t, err)
		repo := new(mockProfileRepo)
		repo.On("FindByID", ctx, tenantID, clientID).Return(existing, nil)

		_, err = newQuoteService(repo).SaveProfile(ctx, tenantID, clientID, ProfileInput{
			SellerDiscountPct: decimal.NewFromInt(101),
		})
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_SetCategoryDiscounts(t *testing.T) {
	ctx := context.Background()
	tenantID, clientID := uuid.New(), uuid.New()
	existing, err := pricing.NewClientProfile(tenantID, "Igreja", pricing.ClientTypeChurch)
	require.NoError(t, err)

	repo := new(mockProfileRepo)
	repo.On("FindByID", ctx, tenantID, clientID).Return(existing, nil)
	repo.On("Save", ctx, existing).Return(nil).Once()
	svc := newQuoteService(repo)

	_, err = svc.SetCategoryDiscounts(ctx, tenantID, clientID, map[pricing.Category]decimal.Decimal{
		pricing.Category("brinquedos"): decimal.NewFromInt(5),
	})
	assert.Error(t, err)

	profile, err := svc.SetCategoryDiscounts(ctx, tenantID, clientID, map[pricing.Category]decimal.Decimal{
		pricing.CategoryBiblia: decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	assert.True(t, profile.HasCategoryOverrides())
	repo.AssertExpectations(t)
}
