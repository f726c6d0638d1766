package handler

import (
	"context"
	"time"

	integrationapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconcileAPI pulls provider pages into the local copies
type ReconcileAPI interface {
	SyncOrders(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error)
	SyncInvoices(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error)
	SyncPayments(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error)
	ListOrders(ctx context.Context, tenantID uuid.UUID, filter integration.OrderFilter) (*integrationapp.OrderList, error)
	InvoiceDownloadURL(ctx context.Context, tenantID uuid.UUID, externalID string) (*integrationapp.InvoiceDownload, error)
}

// ShopifyOrdersAPI reads Admin orders
type ShopifyOrdersAPI interface {
	OrderDetail(ctx context.Context, tenantID uuid.UUID, orderID string) (*integrationapp.ShopifyOrderDetail, error)
}

// ConnectionAPI stores provider credentials
type ConnectionAPI interface {
	ConnectBling(ctx context.Context, tenantID uuid.UUID, in integrationapp.ConnectInput) (*integrationapp.Connection, error)
}

// IntegrationHandler serves provider connection, reconciliation and lookups
type IntegrationHandler struct {
	BaseHandler
	reconcile   ReconcileAPI
	shopify     ShopifyOrdersAPI
	connections ConnectionAPI
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(reconcile ReconcileAPI, shopify ShopifyOrdersAPI, connections ConnectionAPI) *IntegrationHandler {
	return &IntegrationHandler{
		reconcile:   reconcile,
		shopify:     shopify,
		connections: connections,
	}
}

// ---------------------------------------------------------------------------
// Request / response bodies
// ---------------------------------------------------------------------------

// SyncQuery is the query of the sync endpoints
type SyncQuery struct {
	Cursor string     `form:"cursor" binding:"max=64"`
	Limit  int        `form:"limit" binding:"omitempty,min=1,max=100"`
	Since  *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ListOrdersQuery is the query of GET /integrations/orders
type ListOrdersQuery struct {
	Provider string `form:"provider" binding:"omitempty,oneof=bling shopify"`
	State    string `form:"state" binding:"omitempty,oneof=pending processing authorized approved rejected denied error"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// OrderResponse is the JSON view of a local order copy
type OrderResponse struct {
	ID               uuid.UUID             `json:"id"`
	Provider         integration.Provider  `json:"provider"`
	ExternalID       string                `json:"external_id"`
	Number           string                `json:"number"`
	ProviderStatus   string                `json:"provider_status"`
	State            integration.SyncState `json:"state"`
	CustomerName     string                `json:"customer_name"`
	CustomerDocument string                `json:"customer_document,omitempty"`
	CustomerEmail    string                `json:"customer_email,omitempty"`
	Total            decimal.Decimal       `json:"total"`
	PlacedAt         *time.Time            `json:"placed_at,omitempty"`
	ERPOrderID       string                `json:"erp_order_id,omitempty"`
	LastError        string                `json:"last_error,omitempty"`
	SyncedAt         time.Time             `json:"synced_at"`
}

// RemoteOrderItemResponse is one line of a provider order
type RemoteOrderItemResponse struct {
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RemoteOrderResponse is the JSON view of an order as the provider returns it
type RemoteOrderResponse struct {
	ExternalID     string                    `json:"external_id"`
	Number         string                    `json:"number"`
	ProviderStatus string                    `json:"provider_status"`
	State          integration.SyncState     `json:"state"`
	CustomerName   string                    `json:"customer_name"`
	CustomerEmail  string                    `json:"customer_email,omitempty"`
	Total          decimal.Decimal           `json:"total"`
	PlacedAt       *time.Time                `json:"placed_at,omitempty"`
	Items          []RemoteOrderItemResponse `json:"items"`
}

// FulfillmentResponse is the JSON view of a Shopify fulfillment
type FulfillmentResponse struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	TrackingCompany string `json:"tracking_company,omitempty"`
	TrackingNumber  string `json:"tracking_number,omitempty"`
	TrackingURL     string `json:"tracking_url,omitempty"`
}

// MetafieldResponse is the JSON view of a Shopify metafield
type MetafieldResponse struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// ShopifyOrderResponse is the body of GET /integrations/shopify/orders/:id
type ShopifyOrderResponse struct {
	Order        RemoteOrderResponse   `json:"order"`
	Fulfillments []FulfillmentResponse `json:"fulfillments"`
	Metafields   []MetafieldResponse   `json:"metafields"`
}

func toOrderResponse(o *integration.ERPOrder) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		Provider:         o.Provider,
		ExternalID:       o.ExternalID,
		Number:           o.Number,
		ProviderStatus:   o.ProviderStatus,
		State:            o.State,
		CustomerName:     o.CustomerName,
		CustomerDocument: o.CustomerDocument,
		CustomerEmail:    o.CustomerEmail,
		Total:            o.Total,
		PlacedAt:         o.PlacedAt,
		ERPOrderID:       o.ERPOrderID,
		LastError:        o.LastError,
		SyncedAt:         o.SyncedAt,
	}
}

func toShopifyOrderResponse(d *integrationapp.ShopifyOrderDetail) ShopifyOrderResponse {
	resp := ShopifyOrderResponse{
		Fulfillments: make([]FulfillmentResponse, 0, len(d.Fulfillments)),
		Metafields:   make([]MetafieldResponse, 0, len(d.Metafields)),
	}
	if o := d.Order; o != nil {
		resp.Order = RemoteOrderResponse{
			ExternalID:     o.ExternalID,
			Number:         o.Number,
			ProviderStatus: o.ProviderStatus,
			State:          o.State,
			CustomerName:   o.CustomerName,
			CustomerEmail:  o.CustomerEmail,
			Total:          o.Total,
			PlacedAt:       o.PlacedAt,
			Items:          make([]RemoteOrderItemResponse, 0, len(o.Items)),
		}
		for _, it := range o.Items {
			resp.Order.Items = append(resp.Order.Items, RemoteOrderItemResponse{
				SKU:       it.SKU,
				Title:     it.Title,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}
	}
	for _, f := range d.Fulfillments {
		resp.Fulfillments = append(resp.Fulfillments, FulfillmentResponse(f))
	}
	for _, m := range d.Metafields {
		resp.Metafields = append(resp.Metafields, MetafieldResponse(m))
	}
	return resp
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// ConnectBling handles POST /integrations/bling/connect
// @ID           connectBling
// @Summary      Connect Bling
// @Description  Stores the OAuth token pair of a tenant
// @Tags         integrations
// @Accept       json
// @Produce      json
// @Param        request body integrationapp.ConnectInput true "Token pair"
// @Success      201 {object} APIResponse[integrationapp.Connection]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/integrations/bling/connect [post]
func (h *IntegrationHandler) ConnectBling(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req integrationapp.ConnectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	conn, err := h.connections.ConnectBling(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, conn)
}

// SyncOrders handles POST /integrations/bling/orders/sync
// @ID           syncBlingOrders
// @Summary      Sync Bling orders
// @Description  Pulls one page of sales orders
// @Tags         integrations
// @Produce      json
// @Param        cursor query string false "Page cursor"
// @Param        limit query int false "Page size" maximum(100)
// @Param        since query string false "Only changes after" format(date-time)
// @Success      200 {object} APIResponse[integration.BatchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/integrations/bling/orders/sync [post]
func (h *IntegrationHandler) SyncOrders(c *gin.Context) {
	h.sync(c, h.reconcile.SyncOrders)
}

// SyncInvoices handles POST /integrations/bling/invoices/sync
// @ID           syncBlingInvoices
// @Summary      Sync Bling invoices
// @Description  Pulls one page of NF-e invoices
// @Tags         integrations
// @Produce      json
// @Param        cursor query string false "Page cursor"
// @Param        limit query int false "Page size" maximum(100)
// @Param        since query string false "Only changes after" format(date-time)
// @Success      200 {object} APIResponse[integration.BatchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/integrations/bling/invoices/sync [post]
func (h *IntegrationHandler) SyncInvoices(c *gin.Context) {
	h.sync(c, h.reconcile.SyncInvoices)
}

// SyncPayments handles POST /integrations/mercadopago/payments/sync
// @ID           syncMercadoPagoPayments
// @Summary      Sync Mercado Pago payments
// @Description  Pulls one page of payments
// @Tags         integrations
// @Produce      json
// @Param        cursor query string false "Page cursor"
// @Param        limit query int false "Page size" maximum(100)
// @Param        since query string false "Only changes after" format(date-time)
// @Success      200 {object} APIResponse[integration.BatchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/integrations/mercadopago/payments/sync [post]
func (h *IntegrationHandler) SyncPayments(c *gin.Context) {
	h.sync(c, h.reconcile.SyncPayments)
}

type syncFunc func(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error)

func (h *IntegrationHandler) sync(c *gin.Context, run syncFunc) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var q SyncQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := run(c.Request.Context(), tenantID, integration.PageRequest{
		Cursor: q.Cursor,
		Limit:  q.Limit,
		Since:  q.Since,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListOrders handles GET /integrations/orders
// @ID           listIntegrationOrders
// @Summary      List synced orders
// @Tags         integrations
// @Produce      json
// @Param        provider query string false "Provider" Enums(bling, shopify)
// @Param        state query string false "Sync state"
// @Param        offset query int false "Offset" default(0)
// @Param        limit query int false "Limit" maximum(100)
// @Success      200 {object} APIResponse[[]OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/integrations/orders [get]
func (h *IntegrationHandler) ListOrders(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	list, err := h.reconcile.ListOrders(c.Request.Context(), tenantID, integration.OrderFilter{
		Provider: integration.Provider(q.Provider),
		State:    integration.SyncState(q.State),
		Offset:   q.Offset,
		Limit:    q.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]OrderResponse, 0, len(list.Orders))
	for i := range list.Orders {
		out = append(out, toOrderResponse(&list.Orders[i]))
	}
	h.SuccessWithMeta(c, out, list.Total, list.Offset, list.Limit)
}

// InvoiceXML handles GET /integrations/bling/invoices/:id/xml
// @ID           getBlingInvoiceXML
// @Summary      Get an invoice XML link
// @Description  Returns a short-lived download URL for the NF-e XML
// @Tags         integrations
// @Produce      json
// @Param        id path string true "Bling invoice ID"
// @Success      200 {object} APIResponse[integrationapp.InvoiceDownload]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/integrations/bling/invoices/{id}/xml [get]
func (h *IntegrationHandler) InvoiceXML(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	download, err := h.reconcile.InvoiceDownloadURL(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, download)
}

// ShopifyOrder handles GET /integrations/shopify/orders/:id
// @ID           getShopifyOrder
// @Summary      Get a Shopify order
// @Description  Reads the order, fulfillments and metafields from the Admin API
// @Tags         integrations
// @Produce      json
// @Param        id path string true "Shopify order ID"
// @Success      200 {object} APIResponse[ShopifyOrderResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/integrations/shopify/orders/{id} [get]
func (h *IntegrationHandler) ShopifyOrder(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	detail, err := h.shopify.OrderDetail(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toShopifyOrderResponse(detail))
}
