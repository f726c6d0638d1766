package handler

import (
	"context"
	"net/http"
	"testing"

	pricingapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) Quote(ctx context.Context, tenantID, clientID uuid.UUID, items []pricing.LineItem) (*pricingapp.QuoteResult, error) {
	args := m.Called(ctx, tenantID, clientID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricingapp.QuoteResult), args.Error(1)
}

func (m *MockPricingService) QuoteAnonymous(ctx context.Context, items []pricing.LineItem, profile pricing.ClientProfile) (*pricingapp.QuoteResult, error) {
	args := m.Called(ctx, items, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricingapp.QuoteResult), args.Error(1)
}

func (m *MockPricingService) Classify(title string) pricing.Category {
	return m.Called(title).Get(0).(pricing.Category)
}

func (m *MockPricingService) GetProfile(ctx context.Context, tenantID, clientID uuid.UUID) (*pricing.ClientProfile, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.ClientProfile), args.Error(1)
}

func (m *MockPricingService) ListProfiles(ctx context.Context, tenantID uuid.UUID) ([]pricing.ClientProfile, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.ClientProfile), args.Error(1)
}

func (m *MockPricingService) SaveProfile(ctx context.Context, tenantID, clientID uuid.UUID, in pricingapp.ProfileInput) (*pricing.ClientProfile, error) {
	args := m.Called(ctx, tenantID, clientID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.ClientProfile), args.Error(1)
}

func (m *MockPricingService) SetCategoryDiscounts(ctx context.Context, tenantID, clientID uuid.UUID, overrides map[pricing.Category]decimal.Decimal) (*pricing.ClientProfile, error) {
	args := m.Called(ctx, tenantID, clientID, overrides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.ClientProfile), args.Error(1)
}

func setupPricingRouter(svc *MockPricingService) *gin.Engine {
	h := NewPricingHandler(svc)
	return newTestRouter(func(r *gin.Engine) {
		r.POST("/pricing/quote", h.Quote)
		r.GET("/pricing/classify", h.Classify)
		r.GET("/clients", h.ListProfiles)
		r.GET("/clients/:id/profile", h.GetProfile)
		r.PUT("/clients/:id/profile", h.SaveProfile)
		r.PUT("/clients/:id/category-discounts", h.SetCategoryDiscounts)
	})
}

func sampleProfile(id uuid.UUID) *pricing.ClientProfile {
	p, _ := pricing.NewClientProfile(testTenantID, "Igreja Central", pricing.ClientTypeChurch)
	p.ID = id
	return p
}

func TestPricingHandler_QuoteStoredClient(t *testing.T) {
	svc := new(MockPricingService)
	clientID := uuid.New()
	result := &pricingapp.QuoteResult{
		DiscountResult: pricing.DiscountResult{
			Subtotal:       decimal.RequireFromString("600"),
			DiscountPct:    decimal.NewFromInt(30),
			DiscountAmount: decimal.RequireFromString("180"),
			Total:          decimal.RequireFromString("420"),
			Policy:         pricing.PolicySetup,
			TierLabel:      "Premium",
		},
	}
	svc.On("Quote", mock.Anything, testTenantID, clientID, mock.MatchedBy(func(items []pricing.LineItem) bool {
		return len(items) == 1 && items[0].Quantity == 10 && items[0].UnitPrice.Equal(decimal.NewFromInt(60))
	})).Return(result, nil)

	w := performRequest(setupPricingRouter(svc), http.MethodPost, "/pricing/quote", map[string]any{
		"client_id": clientID.String(),
		"items": []map[string]any{
			{"product_id": "p1", "title": "Revista EBD Aluno", "unit_price": "60", "quantity": 10},
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		Policy    string `json:"policy"`
		TierLabel string `json:"tier_label"`
		Total     string `json:"total"`
	}
	decodeData(t, w, &got)
	assert.Equal(t, "setup", got.Policy)
	assert.Equal(t, "Premium", got.TierLabel)
	assert.Equal(t, "420", got.Total)
	svc.AssertExpectations(t)
}

func TestPricingHandler_QuoteAnonymousProfile(t *testing.T) {
	svc := new(MockPricingService)
	svc.On("QuoteAnonymous", mock.Anything, mock.Anything, mock.MatchedBy(func(p pricing.ClientProfile) bool {
		return p.Type == pricing.ClientTypeReseller && p.CategoryOverrides[pricing.CategoryBiblia].Equal(decimal.NewFromInt(15))
	})).Return(&pricingapp.QuoteResult{DiscountResult: pricing.DiscountResult{Policy: pricing.PolicyCategory}}, nil)

	w := performRequest(setupPricingRouter(svc), http.MethodPost, "/pricing/quote", map[string]any{
		"profile": map[string]any{
			"type":               "reseller",
			"category_discounts": map[string]string{"biblia": "15"},
		},
		"items": []map[string]any{{"title": "Bíblia de Estudo", "unit_price": "100", "quantity": 1}},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestPricingHandler_QuoteRejections(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"no items", map[string]any{"items": []any{}}},
		{"zero quantity", map[string]any{"items": []map[string]any{{"title": "Kit", "unit_price": "10", "quantity": 0}}}},
		{"negative price", map[string]any{"items": []map[string]any{{"title": "Kit", "unit_price": "-1", "quantity": 1}}}},
		{"bad client id", map[string]any{"client_id": "nope", "items": []map[string]any{{"title": "Kit", "unit_price": "1", "quantity": 1}}}},
		{"unknown category", map[string]any{
			"profile": map[string]any{"category_discounts": map[string]string{"dvd": "10"}},
			"items":   []map[string]any{{"title": "Kit", "unit_price": "1", "quantity": 1}},
		}},
		{"malformed json", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPricingService)
			w := performRequest(setupPricingRouter(svc), http.MethodPost, "/pricing/quote", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			svc.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			svc.AssertNotCalled(t, "QuoteAnonymous", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPricingHandler_QuoteUnknownClient(t *testing.T) {
	svc := new(MockPricingService)
	svc.On("Quote", mock.Anything, testTenantID, mock.Anything, mock.Anything).Return(nil, pricing.ErrClientNotFound)

	w := performRequest(setupPricingRouter(svc), http.MethodPost, "/pricing/quote", map[string]any{
		"client_id": uuid.NewString(),
		"items":     []map[string]any{{"title": "Kit", "unit_price": "1", "quantity": 1}},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPricingHandler_QuoteRequiresTenant(t *testing.T) {
	svc := new(MockPricingService)
	w := performRequest(setupPricingRouter(svc), http.MethodPost, "/pricing/quote",
		map[string]any{"items": []map[string]any{{"title": "Kit", "unit_price": "1", "quantity": 1}}},
		headerNoTenant, "1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPricingHandler_Classify(t *testing.T) {
	svc := new(MockPricingService)
	svc.On("Classify", "Revista Professor 3º Tri").Return(pricing.CategoryRevistaProfessor)
	r := setupPricingRouter(svc)

	w := performRequest(r, http.MethodGet, "/pricing/classify?title=Revista+Professor+3%C2%BA+Tri", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got ClassifyResponse
	decodeData(t, w, &got)
	assert.Equal(t, pricing.CategoryRevistaProfessor, got.Category)

	w = performRequest(r, http.MethodGet, "/pricing/classify", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPricingHandler_Profiles(t *testing.T) {
	clientID := uuid.New()

	t.Run("get", func(t *testing.T) {
		svc := new(MockPricingService)
		svc.On("GetProfile", mock.Anything, testTenantID, clientID).Return(sampleProfile(clientID), nil)

		w := performRequest(setupPricingRouter(svc), http.MethodGet, "/clients/"+clientID.String()+"/profile", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got ProfileResponse
		decodeData(t, w, &got)
		assert.Equal(t, clientID, got.ID)
		assert.Equal(t, pricing.ClientTypeChurch, got.Type)
	})

	t.Run("get invalid id", func(t *testing.T) {
		w := performRequest(setupPricingRouter(new(MockPricingService)), http.MethodGet, "/clients/abc/profile", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("save", func(t *testing.T) {
		svc := new(MockPricingService)
		want := pricingapp.ProfileInput{
			Name:               "Igreja Central",
			Type:               "church",
			OnboardingComplete: true,
			SellerDiscountPct:  decimal.NewFromInt(5),
		}
		saved := sampleProfile(clientID)
		saved.OnboardingComplete = true
		svc.On("SaveProfile", mock.Anything, testTenantID, clientID, mock.MatchedBy(func(in pricingapp.ProfileInput) bool {
			return in.Name == want.Name && in.Type == want.Type && in.OnboardingComplete && in.SellerDiscountPct.Equal(want.SellerDiscountPct)
		})).Return(saved, nil)

		w := performRequest(setupPricingRouter(svc), http.MethodPut, "/clients/"+clientID.String()+"/profile", map[string]any{
			"name":                "Igreja Central",
			"type":                "church",
			"onboarding_complete": true,
			"seller_discount_pct": "5",
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("save invalid percent", func(t *testing.T) {
		svc := new(MockPricingService)
		svc.On("SaveProfile", mock.Anything, testTenantID, clientID, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_INPUT", "seller discount: percent out of range"))

		w := performRequest(setupPricingRouter(svc), http.MethodPut, "/clients/"+clientID.String()+"/profile", map[string]any{
			"name": "X", "type": "reseller", "seller_discount_pct": "150",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("category discounts", func(t *testing.T) {
		svc := new(MockPricingService)
		saved := sampleProfile(clientID)
		saved.CategoryOverrides = map[pricing.Category]decimal.Decimal{pricing.CategoryKit: decimal.NewFromInt(12)}
		svc.On("SetCategoryDiscounts", mock.Anything, testTenantID, clientID, mock.MatchedBy(func(m map[pricing.Category]decimal.Decimal) bool {
			return len(m) == 1 && m[pricing.CategoryKit].Equal(decimal.NewFromInt(12))
		})).Return(saved, nil)

		w := performRequest(setupPricingRouter(svc), http.MethodPut, "/clients/"+clientID.String()+"/category-discounts", map[string]any{
			"discounts": map[string]string{"kit": "12"},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got ProfileResponse
		decodeData(t, w, &got)
		assert.True(t, got.CategoryDiscounts["kit"].Equal(decimal.NewFromInt(12)))
	})

	t.Run("list", func(t *testing.T) {
		svc := new(MockPricingService)
		svc.On("ListProfiles", mock.Anything, testTenantID).Return([]pricing.ClientProfile{*sampleProfile(clientID)}, nil)

		w := performRequest(setupPricingRouter(svc), http.MethodGet, "/clients", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got []ProfileResponse
		decodeData(t, w, &got)
		assert.Len(t, got, 1)
	})
}
