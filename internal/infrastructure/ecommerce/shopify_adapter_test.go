package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/provider"
)

func newTestClient(t *testing.T, header string, handler http.HandlerFunc) *provider.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return provider.NewClient(provider.ClientConfig{
		Provider:    integration.ProviderShopify,
		BaseURL:     srv.URL,
		StaticToken: "shpat_test",
		TokenHeader: header,
		RetryDelay:  time.Millisecond,
	}, zap.NewNop(), provider.WithSleep(func(context.Context, time.Duration) error { return nil }))
}

func newAdminAdapter(t *testing.T, handler http.HandlerFunc) *ShopifyAdapter {
	return NewShopifyAdapter(newTestClient(t, "X-Shopify-Access-Token", handler), nil)
}

func newStorefrontAdapter(t *testing.T, handler http.HandlerFunc) *ShopifyAdapter {
	return NewShopifyAdapter(nil, newTestClient(t, "X-Shopify-Storefront-Access-Token", handler))
}

const sampleOrder = `{
	"id": 450789469,
	"name": "#1001",
	"email": "compras@igreja.org",
	"financial_status": "paid",
	"fulfillment_status": null,
	"cancelled_at": null,
	"total_price": "199.80",
	"created_at": "2025-03-01T10:00:00-03:00",
	"customer": {"first_name": "Maria", "last_name": "Souza"},
	"line_items": [
		{"sku": "REV-ADULTO-1T", "title": "Revista Adultos", "quantity": 10, "price": "19.98"}
	],
	"note_attributes": [{"name": "CPF", "value": "123.456.789-09"}]
}`

// ---------------------------------------------------------------------------
// Admin API
// ---------------------------------------------------------------------------

func TestShopifyAdapter_GetOrder(t *testing.T) {
	adapter := newAdminAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/450789469.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"order":` + sampleOrder + `}`))
	})

	order, err := adapter.GetOrder(context.Background(), uuid.New(), "450789469")
	require.NoError(t, err)
	assert.Equal(t, "450789469", order.ExternalID)
	assert.Equal(t, "#1001", order.Number)
	assert.Equal(t, "paid", order.ProviderStatus)
	assert.Equal(t, integration.SyncStateApproved, order.State)
	assert.Equal(t, "Maria Souza", order.CustomerName)
	assert.Equal(t, "12345678909", order.CustomerDocument)
	assert.True(t, decimal.RequireFromString("199.80").Equal(order.Total))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 10, order.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("19.98").Equal(order.Items[0].UnitPrice))
	require.NotNil(t, order.PlacedAt)
}

func TestShopifyAdapter_GetOrder_Errors(t *testing.T) {
	adapter := newAdminAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := adapter.GetOrder(context.Background(), uuid.New(), "1")
	assert.ErrorIs(t, err, integration.ErrOrderNotFound)

	_, err = adapter.GetOrder(context.Background(), uuid.New(), "../shop")
	assert.ErrorIs(t, err, ErrShopifyInvalidID)
}

func TestShopifyAdapter_ListFulfillments(t *testing.T) {
	adapter := newAdminAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/42/fulfillments.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"fulfillments":[{"id":9,"status":"success",
			"tracking_company":"Correios","tracking_number":"BR123","tracking_url":"https://rastreio/BR123"}]}`))
	})

	out, err := adapter.ListFulfillments(context.Background(), uuid.New(), "42")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, integration.Fulfillment{
		ID: "9", Status: "success", TrackingCompany: "Correios",
		TrackingNumber: "BR123", TrackingURL: "https://rastreio/BR123",
	}, out[0])
}

func TestShopifyAdapter_GetMetafields(t *testing.T) {
	adapter := newAdminAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/77/metafields.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"metafields":[
			{"namespace":"ebd","key":"categoria","value":"revista_adulto","type":"single_line_text_field"},
			{"namespace":"ebd","key":"trimestre","value":2,"type":"number_integer"}
		]}`))
	})

	out, err := adapter.GetMetafields(context.Background(), uuid.New(), "products", "77")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "revista_adulto", out[0].Value)
	assert.Equal(t, "2", out[1].Value)

	_, err = adapter.GetMetafields(context.Background(), uuid.New(), "shop", "77")
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
}

func TestShopifyAdapter_NotConfigured(t *testing.T) {
	adapter := NewShopifyAdapter(nil, nil)
	_, err := adapter.GetOrder(context.Background(), uuid.New(), "1")
	assert.ErrorIs(t, err, integration.ErrProviderNotConfigured)
	_, err = adapter.ListProducts(context.Background(), 10, "")
	assert.ErrorIs(t, err, integration.ErrProviderNotConfigured)
}

// ---------------------------------------------------------------------------
// Storefront API
// ---------------------------------------------------------------------------

func decodeGraphQL(t *testing.T, r *http.Request) graphQLRequest {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var req graphQLRequest
	require.NoError(t, json.Unmarshal(body, &req))
	return req
}

func TestShopifyAdapter_ListProducts(t *testing.T) {
	adapter := newStorefrontAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Storefront-Access-Token"))
		req := decodeGraphQL(t, r)
		assert.Contains(t, req.Query, "products(first: $first, after: $after)")
		assert.EqualValues(t, 5, req.Variables["first"])
		assert.Equal(t, "abc", req.Variables["after"])
		_, _ = w.Write([]byte(`{"data":{"products":{
			"pageInfo":{"hasNextPage":true,"endCursor":"def"},
			"edges":[{"node":{"id":"gid://shopify/Product/1","handle":"revista-jovens","title":"Revista Jovens",
				"availableForSale":true,
				"variants":{"edges":[{"node":{"id":"gid://shopify/ProductVariant/11","price":{"amount":"24.90"}}}]}}}]
		}}}`))
	})

	page, err := adapter.ListProducts(context.Background(), 5, "abc")
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, "def", page.EndCursor)
	require.Len(t, page.Products, 1)
	p := page.Products[0]
	assert.Equal(t, "gid://shopify/ProductVariant/11", p.VariantID)
	assert.True(t, p.Available)
	assert.True(t, decimal.RequireFromString("24.90").Equal(p.Price))
}

func TestShopifyAdapter_ListProducts_GraphQLError(t *testing.T) {
	adapter := newStorefrontAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Throttled"}]}`))
	})
	_, err := adapter.ListProducts(context.Background(), 0, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)
	assert.Contains(t, err.Error(), "Throttled")
}

func TestShopifyAdapter_CreateCart(t *testing.T) {
	adapter := newStorefrontAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGraphQL(t, r)
		assert.Contains(t, req.Query, "cartCreate")
		input := req.Variables["input"].(map[string]any)
		lines := input["lines"].([]any)
		require.Len(t, lines, 1)
		line := lines[0].(map[string]any)
		assert.Equal(t, "gid://shopify/ProductVariant/11", line["merchandiseId"])
		assert.EqualValues(t, 3, line["quantity"])
		_, _ = w.Write([]byte(`{"data":{"cartCreate":{"cart":{"id":"gid://shopify/Cart/c1","checkoutUrl":"https://loja/checkout/c1"},"userErrors":[]}}}`))
	})

	cart, err := adapter.CreateCart(context.Background(), []integration.CartLine{{VariantID: "gid://shopify/ProductVariant/11", Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, "https://loja/checkout/c1", cart.CheckoutURL)
}

func TestShopifyAdapter_CreateCart_Errors(t *testing.T) {
	adapter := newStorefrontAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"cartCreate":{"cart":null,"userErrors":[{"field":["input"],"message":"Merchandise does not exist"}]}}}`))
	})

	_, err := adapter.CreateCart(context.Background(), nil)
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)

	_, err = adapter.CreateCart(context.Background(), []integration.CartLine{{VariantID: "x", Quantity: 0}})
	assert.ErrorIs(t, err, integration.ErrPlatformRequestFailed)

	_, err = adapter.CreateCart(context.Background(), []integration.CartLine{{VariantID: "x", Quantity: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Merchandise does not exist")
}

// ---------------------------------------------------------------------------
// Status mapping and webhooks
// ---------------------------------------------------------------------------

func TestMapShopifyOrderStatus(t *testing.T) {
	tests := []struct {
		financial   string
		fulfillment string
		cancelled   bool
		want        integration.SyncState
	}{
		{"pending", "", false, integration.SyncStatePending},
		{"authorized", "", false, integration.SyncStateProcessing},
		{"partially_paid", "", false, integration.SyncStateProcessing},
		{"paid", "", false, integration.SyncStateApproved},
		{"paid", "fulfilled", false, integration.SyncStateApproved},
		{"pending", "fulfilled", false, integration.SyncStateApproved},
		{"refunded", "", false, integration.SyncStateRejected},
		{"voided", "", false, integration.SyncStateRejected},
		{"paid", "", true, integration.SyncStateRejected},
		{"something_new", "", false, integration.SyncStatePending},
	}
	for _, tt := range tests {
		t.Run(tt.financial+"/"+tt.fulfillment, func(t *testing.T) {
			assert.Equal(t, tt.want, MapShopifyOrderStatus(tt.financial, tt.fulfillment, tt.cancelled))
		})
	}
}

func TestVerifyWebhook(t *testing.T) {
	body := []byte(sampleOrder)
	sig := SignWebhook(body, "s3cret")

	assert.NoError(t, VerifyWebhook(body, sig, "s3cret"))

	tests := []struct {
		name   string
		body   []byte
		sig    string
		secret string
	}{
		{"wrong secret", body, sig, "other"},
		{"tampered body", append([]byte(sampleOrder), ' '), sig, "s3cret"},
		{"not base64", body, "%%%", "s3cret"},
		{"missing signature", body, "", "s3cret"},
		{"missing secret", body, sig, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyWebhook(tt.body, tt.sig, tt.secret)
			assert.True(t, errors.Is(err, integration.ErrInvalidSignature))
		})
	}
}

func TestDecodeWebhookOrder(t *testing.T) {
	order, err := DecodeWebhookOrder([]byte(sampleOrder))
	require.NoError(t, err)
	assert.Equal(t, "450789469", order.ExternalID)
	assert.Equal(t, "12345678909", order.CustomerDocument)

	fulfilled := `{"id":1,"financial_status":"paid","fulfillment_status":"fulfilled","total_price":"1.00"}`
	order, err = DecodeWebhookOrder([]byte(fulfilled))
	require.NoError(t, err)
	assert.Equal(t, "paid/fulfilled", order.ProviderStatus)

	_, err = DecodeWebhookOrder([]byte(`{"name":"#1"}`))
	assert.ErrorIs(t, err, integration.ErrMissingExternalID)

	_, err = DecodeWebhookOrder([]byte(`not json`))
	assert.ErrorIs(t, err, integration.ErrPlatformInvalidResponse)
}
