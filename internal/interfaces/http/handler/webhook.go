package handler

import (
	"context"
	"encoding/json"
	"io"

	integrationapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/ecommerce"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShopifyWebhookAPI processes signed shop deliveries
type ShopifyWebhookAPI interface {
	HandleWebhook(ctx context.Context, hook integrationapp.ShopifyWebhook) (integrationapp.WebhookOutcome, error)
}

// PaymentSyncAPI refreshes one payment by its provider id
type PaymentSyncAPI interface {
	SyncPayment(ctx context.Context, tenantID uuid.UUID, externalID string) (*integration.PaymentRecord, error)
}

// WebhookMetrics counts deliveries by provider and outcome
type WebhookMetrics interface {
	RecordWebhook(ctx context.Context, provider, outcome string)
}

// outcomeRejected labels deliveries that ended in an error response
const outcomeRejected = "rejected"

// WebhookHandler receives unauthenticated provider notifications
type WebhookHandler struct {
	BaseHandler
	shopify  ShopifyWebhookAPI
	payments PaymentSyncAPI
	metrics  WebhookMetrics

	// mercadoPagoTenant owns the Mercado Pago account that sends notifications
	mercadoPagoTenant uuid.UUID
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(shopify ShopifyWebhookAPI, payments PaymentSyncAPI, mercadoPagoTenant uuid.UUID) *WebhookHandler {
	return &WebhookHandler{
		shopify:           shopify,
		payments:          payments,
		mercadoPagoTenant: mercadoPagoTenant,
	}
}

// WithMetrics reports every delivery to m
func (h *WebhookHandler) WithMetrics(m WebhookMetrics) *WebhookHandler {
	h.metrics = m
	return h
}

func (h *WebhookHandler) record(c *gin.Context, provider integration.Provider, outcome string) {
	if h.metrics != nil {
		h.metrics.RecordWebhook(c.Request.Context(), string(provider), outcome)
	}
}

// WebhookAck is the body returned to providers
type WebhookAck struct {
	Outcome string `json:"outcome"`
	State   string `json:"state,omitempty"`
}

// mercadoPagoNotification is the JSON body Mercado Pago posts
type mercadoPagoNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Shopify handles POST /webhooks/shopify
// @ID           shopifyWebhook
// @Summary      Receive a Shopify webhook
// @Description  Verifies the HMAC signature and applies orders/paid and orders/fulfilled
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Shopify-Hmac-Sha256 header string true "Body signature"
// @Param        X-Shopify-Topic header string true "Topic"
// @Param        X-Shopify-Webhook-Id header string false "Delivery ID"
// @Param        X-Shopify-Shop-Domain header string false "Shop domain"
// @Success      200 {object} APIResponse[WebhookAck]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /webhooks/shopify [post]
func (h *WebhookHandler) Shopify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	outcome, err := h.shopify.HandleWebhook(c.Request.Context(), integrationapp.ShopifyWebhook{
		Body:      body,
		Signature: c.GetHeader(ecommerce.HeaderHmac),
		Topic:     c.GetHeader(ecommerce.HeaderTopic),
		WebhookID: c.GetHeader(ecommerce.HeaderWebhookID),
		Shop:      c.GetHeader(ecommerce.HeaderShop),
	})
	if err != nil {
		h.record(c, integration.ProviderShopify, outcomeRejected)
		h.HandleError(c, err)
		return
	}
	h.record(c, integration.ProviderShopify, string(outcome))
	h.Success(c, WebhookAck{Outcome: string(outcome)})
}

// MercadoPago handles POST /webhooks/mercadopago. Both the JSON body form
// ({"type":"payment","data":{"id":...}}) and the legacy query form
// (?type=payment&data.id=... or ?topic=payment&id=...) are accepted.
// @ID           mercadoPagoWebhook
// @Summary      Receive a Mercado Pago notification
// @Description  Accepts the JSON body form and the legacy query form
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        type query string false "Notification type"
// @Param        data.id query string false "Payment ID"
// @Success      200 {object} APIResponse[WebhookAck]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /webhooks/mercadopago [post]
func (h *WebhookHandler) MercadoPago(c *gin.Context) {
	kind, paymentID := c.Query("type"), c.Query("data.id")
	if kind == "" {
		kind, paymentID = c.Query("topic"), c.Query("id")
	}

	var note mercadoPagoNotification
	if c.Request.ContentLength != 0 {
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&note); err == nil && note.Type != "" {
			kind, paymentID = note.Type, note.Data.ID.String()
		}
	}

	log := logger.GetGinLogger(c)
	if kind != "payment" {
		log.Debug("mercadopago notification ignored", zap.String("type", kind))
		h.record(c, integration.ProviderMercadoPago, string(integrationapp.WebhookIgnored))
		h.Success(c, WebhookAck{Outcome: string(integrationapp.WebhookIgnored)})
		return
	}
	if h.mercadoPagoTenant == uuid.Nil {
		h.record(c, integration.ProviderMercadoPago, outcomeRejected)
		h.HandleError(c, integration.ErrProviderNotConfigured)
		return
	}

	payment, err := h.payments.SyncPayment(c.Request.Context(), h.mercadoPagoTenant, paymentID)
	if err != nil {
		log.Warn("mercadopago notification failed",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		h.record(c, integration.ProviderMercadoPago, outcomeRejected)
		h.HandleError(c, err)
		return
	}
	h.record(c, integration.ProviderMercadoPago, string(integrationapp.WebhookProcessed))
	h.Success(c, WebhookAck{
		Outcome: string(integrationapp.WebhookProcessed),
		State:   string(payment.State),
	})
}
