// Package ecommerce adapts the Shopify Admin and Storefront APIs to the
// integration ports and verifies Shopify webhooks.
package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/provider"
)

// ErrShopifyInvalidID indicates a non-numeric Shopify id
var ErrShopifyInvalidID = errors.New("shopify: invalid id")

// AdminBaseURL returns the Admin REST root for a shop
func AdminBaseURL(shopDomain, apiVersion string) string {
	return fmt.Sprintf("https://%s/admin/api/%s", shopDomain, apiVersion)
}

// StorefrontURL returns the Storefront GraphQL endpoint for a shop
func StorefrontURL(shopDomain, apiVersion string) string {
	return fmt.Sprintf("https://%s/api/%s/graphql.json", shopDomain, apiVersion)
}

// ShopifyAdapter implements integration.CommerceGateway over the Admin REST
// API and integration.Storefront over the Storefront GraphQL API.
type ShopifyAdapter struct {
	admin      *provider.Client
	storefront *provider.Client
}

// NewShopifyAdapter creates the adapter. Either client may be nil when that
// API is not configured; calls through it then fail with
// integration.ErrProviderNotConfigured.
func NewShopifyAdapter(admin, storefront *provider.Client) *ShopifyAdapter {
	return &ShopifyAdapter{admin: admin, storefront: storefront}
}

func validateShopifyID(id string) error {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil || id == "" {
		return fmt.Errorf("%w: %q", ErrShopifyInvalidID, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Admin API
// ---------------------------------------------------------------------------

// GetOrder fetches one order
func (a *ShopifyAdapter) GetOrder(ctx context.Context, tenantID uuid.UUID, orderID string) (*integration.RemoteOrder, error) {
	if a.admin == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if err := validateShopifyID(orderID); err != nil {
		return nil, err
	}
	var env shopifyOrderEnvelope
	err := a.admin.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     "/orders/" + orderID + ".json",
	}, &env)
	if provider.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", integration.ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	order := convertShopifyOrder(env.Order)
	return &order, nil
}

// ListFulfillments lists an order's fulfillments
func (a *ShopifyAdapter) ListFulfillments(ctx context.Context, tenantID uuid.UUID, orderID string) ([]integration.Fulfillment, error) {
	if a.admin == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if err := validateShopifyID(orderID); err != nil {
		return nil, err
	}
	var env shopifyFulfillmentsEnvelope
	if err := a.admin.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     "/orders/" + orderID + "/fulfillments.json",
	}, &env); err != nil {
		return nil, err
	}
	out := make([]integration.Fulfillment, 0, len(env.Fulfillments))
	for _, f := range env.Fulfillments {
		out = append(out, integration.Fulfillment{
			ID:              strconv.FormatInt(f.ID, 10),
			Status:          f.Status,
			TrackingCompany: f.TrackingCompany,
			TrackingNumber:  f.TrackingNumber,
			TrackingURL:     f.TrackingURL,
		})
	}
	return out, nil
}

var metafieldOwners = map[string]bool{
	"products":  true,
	"orders":    true,
	"customers": true,
	"variants":  true,
}

// GetMetafields lists metafields of a product, order, customer or variant
func (a *ShopifyAdapter) GetMetafields(ctx context.Context, tenantID uuid.UUID, ownerResource, ownerID string) ([]integration.Metafield, error) {
	if a.admin == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if !metafieldOwners[ownerResource] {
		return nil, fmt.Errorf("%w: unsupported metafield owner %q", integration.ErrPlatformRequestFailed, ownerResource)
	}
	if err := validateShopifyID(ownerID); err != nil {
		return nil, err
	}
	var env shopifyMetafieldsEnvelope
	if err := a.admin.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     fmt.Sprintf("/%s/%s/metafields.json", ownerResource, ownerID),
	}, &env); err != nil {
		return nil, err
	}
	out := make([]integration.Metafield, 0, len(env.Metafields))
	for _, m := range env.Metafields {
		out = append(out, integration.Metafield{
			Namespace: m.Namespace,
			Key:       m.Key,
			Value:     rawToString(m.Value),
			Type:      m.Type,
		})
	}
	return out, nil
}

// rawToString unquotes JSON strings and keeps numbers and booleans verbatim
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ---------------------------------------------------------------------------
// Storefront API
// ---------------------------------------------------------------------------

// ListProducts returns one cursor page of products with their first variant
func (a *ShopifyAdapter) ListProducts(ctx context.Context, first int, after string) (*integration.ProductPage, error) {
	if a.storefront == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if first <= 0 || first > integration.MaxPageSize {
		first = integration.DefaultPageSize
	}
	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}

	var resp productsResponse
	if err := a.graphQL(ctx, productsQuery, vars, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, resp.Errors[0].Message)
	}

	products := resp.Data.Products
	page := &integration.ProductPage{
		Products:  make([]integration.StorefrontProduct, 0, len(products.Edges)),
		EndCursor: products.PageInfo.EndCursor,
		HasMore:   products.PageInfo.HasNextPage,
	}
	for _, e := range products.Edges {
		p := integration.StorefrontProduct{
			ID:        e.Node.ID,
			Handle:    e.Node.Handle,
			Title:     e.Node.Title,
			Available: e.Node.AvailableForSale,
		}
		if len(e.Node.Variants.Edges) > 0 {
			v := e.Node.Variants.Edges[0].Node
			p.VariantID = v.ID
			p.Price = v.Price.Amount
		}
		page.Products = append(page.Products, p)
	}
	return page, nil
}

// CreateCart creates a cart and returns its checkout URL
func (a *ShopifyAdapter) CreateCart(ctx context.Context, lines []integration.CartLine) (*integration.Cart, error) {
	if a.storefront == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart needs at least one line", integration.ErrPlatformRequestFailed)
	}
	inputLines := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		if l.VariantID == "" || l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: invalid cart line", integration.ErrPlatformRequestFailed)
		}
		inputLines = append(inputLines, map[string]any{"merchandiseId": l.VariantID, "quantity": l.Quantity})
	}

	var resp cartCreateResponse
	if err := a.graphQL(ctx, cartCreateMutation, map[string]any{"input": map[string]any{"lines": inputLines}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, resp.Errors[0].Message)
	}
	created := resp.Data.CartCreate
	if len(created.UserErrors) > 0 {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, created.UserErrors[0].Message)
	}
	if created.Cart == nil || created.Cart.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: cart without checkout url", integration.ErrPlatformInvalidResponse)
	}
	return &integration.Cart{ID: created.Cart.ID, CheckoutURL: created.Cart.CheckoutURL}, nil
}

func (a *ShopifyAdapter) graphQL(ctx context.Context, query string, vars map[string]any, out any) error {
	return a.storefront.DoJSON(ctx, &provider.Request{
		Method: http.MethodPost,
		Body:   graphQLRequest{Query: query, Variables: vars},
	}, out)
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func convertShopifyOrder(o shopifyOrder) integration.RemoteOrder {
	fulfillment := ""
	if o.FulfillmentStatus != nil {
		fulfillment = *o.FulfillmentStatus
	}
	order := integration.RemoteOrder{
		ExternalID:       strconv.FormatInt(o.ID, 10),
		Number:           o.Name,
		ProviderStatus:   shopifyProviderStatus(o.FinancialStatus, fulfillment),
		State:            MapShopifyOrderStatus(o.FinancialStatus, fulfillment, o.CancelledAt != nil),
		CustomerEmail:    o.Email,
		CustomerDocument: documentFromAttributes(o.NoteAttributes),
		Total:            o.TotalPrice,
		PlacedAt:         o.CreatedAt,
	}
	if o.Customer != nil {
		order.CustomerName = strings.TrimSpace(o.Customer.FirstName + " " + o.Customer.LastName)
		if order.CustomerEmail == "" {
			order.CustomerEmail = o.Customer.Email
		}
	}
	if order.CustomerName == "" && o.BillingAddress != nil {
		order.CustomerName = o.BillingAddress.Name
	}
	for _, li := range o.LineItems {
		order.Items = append(order.Items, integration.RemoteOrderItem{
			SKU:       li.SKU,
			Title:     li.Title,
			Quantity:  li.Quantity,
			UnitPrice: li.Price,
		})
	}
	return order
}

func shopifyProviderStatus(financial, fulfillment string) string {
	if fulfillment == "" {
		return financial
	}
	return financial + "/" + fulfillment
}

// MapShopifyOrderStatus maps Shopify financial and fulfillment status to a
// local state. A fulfilled order counts as approved.
func MapShopifyOrderStatus(financial, fulfillment string, cancelled bool) integration.SyncState {
	if cancelled {
		return integration.SyncStateRejected
	}
	if fulfillment == "fulfilled" {
		return integration.SyncStateApproved
	}
	switch financial {
	case "paid":
		return integration.SyncStateApproved
	case "authorized", "partially_paid":
		return integration.SyncStateProcessing
	case "refunded", "voided", "partially_refunded":
		return integration.SyncStateRejected
	case "pending", "":
		return integration.SyncStatePending
	default:
		return integration.SyncStatePending
	}
}

// documentAttributeNames are the checkout note attributes the store uses for
// the buyer's CPF or CNPJ
var documentAttributeNames = []string{"cpf", "cnpj", "cpf/cnpj", "documento"}

func documentFromAttributes(attrs []shopifyNoteAttribute) string {
	for _, want := range documentAttributeNames {
		for _, a := range attrs {
			if strings.EqualFold(strings.TrimSpace(a.Name), want) {
				return onlyDigits(a.Value)
			}
		}
	}
	return ""
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var (
	_ integration.CommerceGateway = (*ShopifyAdapter)(nil)
	_ integration.Storefront      = (*ShopifyAdapter)(nil)
)
