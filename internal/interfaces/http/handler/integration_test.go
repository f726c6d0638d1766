package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	integrationapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReconcileAPI struct {
	mock.Mock
}

func (m *MockReconcileAPI) batch(args mock.Arguments) (*integration.BatchResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.BatchResult), args.Error(1)
}

func (m *MockReconcileAPI) SyncOrders(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error) {
	return m.batch(m.Called(ctx, tenantID, page))
}

func (m *MockReconcileAPI) SyncInvoices(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error) {
	return m.batch(m.Called(ctx, tenantID, page))
}

func (m *MockReconcileAPI) SyncPayments(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error) {
	return m.batch(m.Called(ctx, tenantID, page))
}

func (m *MockReconcileAPI) ListOrders(ctx context.Context, tenantID uuid.UUID, filter integration.OrderFilter) (*integrationapp.OrderList, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.OrderList), args.Error(1)
}

func (m *MockReconcileAPI) InvoiceDownloadURL(ctx context.Context, tenantID uuid.UUID, externalID string) (*integrationapp.InvoiceDownload, error) {
	args := m.Called(ctx, tenantID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.InvoiceDownload), args.Error(1)
}

type MockShopifyOrders struct {
	mock.Mock
}

func (m *MockShopifyOrders) OrderDetail(ctx context.Context, tenantID uuid.UUID, orderID string) (*integrationapp.ShopifyOrderDetail, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.ShopifyOrderDetail), args.Error(1)
}

type MockConnections struct {
	mock.Mock
}

func (m *MockConnections) ConnectBling(ctx context.Context, tenantID uuid.UUID, in integrationapp.ConnectInput) (*integrationapp.Connection, error) {
	args := m.Called(ctx, tenantID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.Connection), args.Error(1)
}

type MockStorefront struct {
	mock.Mock
}

func (m *MockStorefront) ListProducts(ctx context.Context, first int, after string) (*integration.ProductPage, error) {
	args := m.Called(ctx, first, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ProductPage), args.Error(1)
}

func (m *MockStorefront) CreateCart(ctx context.Context, lines []integration.CartLine) (*integration.Cart, error) {
	args := m.Called(ctx, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Cart), args.Error(1)
}

type integrationMocks struct {
	reconcile   *MockReconcileAPI
	shopify     *MockShopifyOrders
	connections *MockConnections
}

func setupIntegrationRouter() (*gin.Engine, integrationMocks) {
	m := integrationMocks{
		reconcile:   new(MockReconcileAPI),
		shopify:     new(MockShopifyOrders),
		connections: new(MockConnections),
	}
	h := NewIntegrationHandler(m.reconcile, m.shopify, m.connections)
	r := newTestRouter(func(r *gin.Engine) {
		r.POST("/integrations/bling/connect", h.ConnectBling)
		r.POST("/integrations/bling/orders/sync", h.SyncOrders)
		r.POST("/integrations/bling/invoices/sync", h.SyncInvoices)
		r.POST("/integrations/mercadopago/payments/sync", h.SyncPayments)
		r.GET("/integrations/orders", h.ListOrders)
		r.GET("/integrations/bling/invoices/:id/xml", h.InvoiceXML)
		r.GET("/integrations/shopify/orders/:id", h.ShopifyOrder)
	})
	return r, m
}

func TestIntegrationHandler_ConnectBling(t *testing.T) {
	r, m := setupIntegrationRouter()
	expires := time.Now().Add(6 * time.Hour).UTC()
	m.connections.On("ConnectBling", mock.Anything, testTenantID, integrationapp.ConnectInput{
		AccessToken: "at", RefreshToken: "rt",
	}).Return(&integrationapp.Connection{Provider: integration.ProviderBling, ExpiresAt: expires}, nil)

	w := performRequest(r, http.MethodPost, "/integrations/bling/connect",
		map[string]string{"access_token": "at", "refresh_token": "rt"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(r, http.MethodPost, "/integrations/bling/connect", map[string]string{"access_token": "at"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegrationHandler_SyncPassesCursor(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		method string
	}{
		{"orders", "/integrations/bling/orders/sync", "SyncOrders"},
		{"invoices", "/integrations/bling/invoices/sync", "SyncInvoices"},
		{"payments", "/integrations/mercadopago/payments/sync", "SyncPayments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := setupIntegrationRouter()
			result := &integration.BatchResult{
				SyncResult: integration.SyncResult{Status: integration.SyncStatusPartial, TotalCount: 2, SuccessCount: 1, FailedCount: 1,
					FailedItems: []integration.SyncFailure{{ExternalID: "42", Error: "boom"}}},
				NextCursor: "3",
				Remaining:  -1,
				HasMore:    true,
			}
			m.reconcile.On(tt.method, mock.Anything, testTenantID, integration.PageRequest{Cursor: "2", Limit: 25}).Return(result, nil)

			w := performRequest(r, http.MethodPost, tt.path+"?cursor=2&limit=25", nil)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var got integration.BatchResult
			decodeData(t, w, &got)
			assert.Equal(t, "3", got.NextCursor)
			assert.True(t, got.HasMore)
			assert.Equal(t, integration.SyncStatusPartial, got.Status)
			require.Len(t, got.FailedItems, 1)
			assert.Equal(t, "42", got.FailedItems[0].ExternalID)
		})
	}
}

func TestIntegrationHandler_SyncErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not connected", integration.ErrProviderNotConnected, http.StatusConflict},
		{"not configured", integration.ErrProviderNotConfigured, http.StatusServiceUnavailable},
		{"auth failed", fmt.Errorf("bling: %w", integration.ErrPlatformAuthFailed), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, m := setupIntegrationRouter()
			m.reconcile.On("SyncOrders", mock.Anything, testTenantID, mock.Anything).Return(nil, tt.err)

			w := performRequest(r, http.MethodPost, "/integrations/bling/orders/sync", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestIntegrationHandler_SyncRejectsBadLimit(t *testing.T) {
	r, m := setupIntegrationRouter()

	w := performRequest(r, http.MethodPost, "/integrations/bling/orders/sync?limit=500", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.reconcile.AssertNotCalled(t, "SyncOrders", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntegrationHandler_ListOrders(t *testing.T) {
	r, m := setupIntegrationRouter()
	order, err := integration.NewERPOrder(testTenantID, integration.ProviderShopify, integration.RemoteOrder{
		ExternalID: "5001", Number: "#1001", State: integration.SyncStateApproved, Total: decimal.RequireFromString("199.90"),
	})
	require.NoError(t, err)
	m.reconcile.On("ListOrders", mock.Anything, testTenantID, integration.OrderFilter{
		Provider: integration.ProviderShopify, State: integration.SyncStateApproved, Offset: 0, Limit: 20,
	}).Return(&integrationapp.OrderList{Orders: []integration.ERPOrder{*order}, Total: 1, Offset: 0, Limit: 20}, nil)

	w := performRequest(r, http.MethodGet, "/integrations/orders?provider=shopify&state=approved&limit=20", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got []OrderResponse
	decodeData(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "5001", got[0].ExternalID)
	assert.Equal(t, integration.SyncStateApproved, got[0].State)

	w = performRequest(r, http.MethodGet, "/integrations/orders?state=shipped", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntegrationHandler_InvoiceXML(t *testing.T) {
	r, m := setupIntegrationRouter()
	m.reconcile.On("InvoiceDownloadURL", mock.Anything, testTenantID, "777").Return(&integrationapp.InvoiceDownload{
		InvoiceID: "777", URL: "https://s3.example.com/nfe/777.xml?sig=abc", ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil)
	m.reconcile.On("InvoiceDownloadURL", mock.Anything, testTenantID, "778").
		Return(nil, fmt.Errorf("%w: xml not archived yet", integration.ErrInvoiceNotFound))

	w := performRequest(r, http.MethodGet, "/integrations/bling/invoices/777/xml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got integrationapp.InvoiceDownload
	decodeData(t, w, &got)
	assert.Contains(t, got.URL, "sig=abc")

	w = performRequest(r, http.MethodGet, "/integrations/bling/invoices/778/xml", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegrationHandler_ShopifyOrder(t *testing.T) {
	r, m := setupIntegrationRouter()
	m.shopify.On("OrderDetail", mock.Anything, testTenantID, "5001").Return(&integrationapp.ShopifyOrderDetail{
		Order: &integration.RemoteOrder{
			ExternalID: "5001",
			Number:     "#1001",
			Items:      []integration.RemoteOrderItem{{SKU: "REV-01", Title: "Revista", Quantity: 2, UnitPrice: decimal.NewFromInt(20)}},
		},
		Fulfillments: []integration.Fulfillment{{ID: "f1", Status: "success", TrackingNumber: "BR123"}},
		Metafields:   []integration.Metafield{{Namespace: "ebd", Key: "church", Value: "Central", Type: "single_line_text_field"}},
	}, nil)

	w := performRequest(r, http.MethodGet, "/integrations/shopify/orders/5001", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got ShopifyOrderResponse
	decodeData(t, w, &got)
	assert.Equal(t, "#1001", got.Order.Number)
	require.Len(t, got.Order.Items, 1)
	assert.Equal(t, "REV-01", got.Order.Items[0].SKU)
	require.Len(t, got.Fulfillments, 1)
	assert.Equal(t, "BR123", got.Fulfillments[0].TrackingNumber)
	require.Len(t, got.Metafields, 1)
	assert.Equal(t, "church", got.Metafields[0].Key)
}

func TestStorefrontHandler(t *testing.T) {
	sf := new(MockStorefront)
	h := NewStorefrontHandler(sf)
	r := newTestRouter(func(r *gin.Engine) {
		r.GET("/storefront/products", h.ListProducts)
		r.POST("/storefront/cart", h.CreateCart)
	})

	t.Run("products", func(t *testing.T) {
		sf.On("ListProducts", mock.Anything, 2, "cur1").Return(&integration.ProductPage{
			Products: []integration.StorefrontProduct{
				{ID: "gid://shopify/Product/1", Title: "Bíblia", VariantID: "gid://shopify/ProductVariant/9", Price: decimal.RequireFromString("89.90"), Available: true},
			},
			EndCursor: "cur2",
			HasMore:   true,
		}, nil).Once()

		w := performRequest(r, http.MethodGet, "/storefront/products?first=2&after=cur1", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got ProductPageResponse
		decodeData(t, w, &got)
		require.Len(t, got.Products, 1)
		assert.Equal(t, "cur2", got.EndCursor)
		assert.True(t, got.Products[0].Price.Equal(decimal.RequireFromString("89.90")))
	})

	t.Run("cart", func(t *testing.T) {
		sf.On("CreateCart", mock.Anything, []integration.CartLine{{VariantID: "v9", Quantity: 3}}).
			Return(&integration.Cart{ID: "c1", CheckoutURL: "https://shop.example.com/checkout/c1"}, nil).Once()

		w := performRequest(r, http.MethodPost, "/storefront/cart",
			map[string]any{"lines": []map[string]any{{"variant_id": "v9", "quantity": 3}}})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got CartResponse
		decodeData(t, w, &got)
		assert.Equal(t, "https://shop.example.com/checkout/c1", got.CheckoutURL)
	})

	t.Run("cart without lines", func(t *testing.T) {
		w := performRequest(r, http.MethodPost, "/storefront/cart", map[string]any{"lines": []any{}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storefront down", func(t *testing.T) {
		sf.On("ListProducts", mock.Anything, 0, "").Return(nil, integration.ErrPlatformUnavailable).Once()

		w := performRequest(r, http.MethodGet, "/storefront/products", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
