package integration

import (
	"context"
	"errors"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/ecommerce"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShopifyWebhook is one delivery as received over HTTP
type ShopifyWebhook struct {
	Body      []byte
	Signature string
	Topic     string
	WebhookID string
	Shop      string
}

// ShopifyService handles shop webhooks and Admin order lookups. Paid orders
// are copied locally and pushed to the ERP as sales orders.
type ShopifyService struct {
	secret      string
	tenantID    uuid.UUID
	commerce    integration.CommerceGateway
	erp         integration.ERPGateway
	orders      integration.ERPOrderRepository
	idempotency shared.IdempotencyStore
	ttl         time.Duration
	logger      *zap.Logger
}

// ShopifyServiceConfig wires a ShopifyService. TenantID owns every order
// arriving through the shop's webhooks. ERP is optional; without it paid
// orders are only copied locally.
type ShopifyServiceConfig struct {
	WebhookSecret string
	TenantID      uuid.UUID
	Commerce      integration.CommerceGateway
	ERP           integration.ERPGateway
	Orders        integration.ERPOrderRepository
	Idempotency   shared.IdempotencyStore
	DedupTTL      time.Duration
	Logger        *zap.Logger
}

// NewShopifyService creates a ShopifyService
func NewShopifyService(cfg ShopifyServiceConfig) *ShopifyService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.DedupTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	return &ShopifyService{
		secret:      cfg.WebhookSecret,
		tenantID:    cfg.TenantID,
		commerce:    cfg.Commerce,
		erp:         cfg.ERP,
		orders:      cfg.Orders,
		idempotency: cfg.Idempotency,
		ttl:         ttl,
		logger:      logger.Named("shopify"),
	}
}

// ---------------------------------------------------------------------------
// Webhooks
// ---------------------------------------------------------------------------

// HandleWebhook verifies and processes one delivery. A bad signature returns
// ErrInvalidSignature before anything is read or stored. A delivery id seen
// before is acknowledged as a duplicate. When processing fails the mark is
// dropped so Shopify's retry gets another chance.
func (s *ShopifyService) HandleWebhook(ctx context.Context, hook ShopifyWebhook) (WebhookOutcome, error) {
	if err := ecommerce.VerifyWebhook(hook.Body, hook.Signature, s.secret); err != nil {
		s.logger.Warn("webhook signature rejected",
			zap.String("topic", hook.Topic),
			zap.String("shop", hook.Shop))
		return "", err
	}
	if s.tenantID == uuid.Nil {
		return "", integration.ErrProviderNotConfigured
	}
	if hook.Topic != ecommerce.TopicOrdersPaid && hook.Topic != ecommerce.TopicOrdersFulfilled {
		s.logger.Debug("webhook topic ignored", zap.String("topic", hook.Topic))
		return WebhookIgnored, nil
	}

	dedupKey := ""
	if hook.WebhookID != "" && s.idempotency != nil {
		dedupKey = "shopify:" + hook.WebhookID
		fresh, err := s.idempotency.MarkProcessed(ctx, dedupKey, s.ttl)
		if err != nil {
			return "", err
		}
		if !fresh {
			s.logger.Info("duplicate webhook acknowledged",
				zap.String("webhook_id", hook.WebhookID),
				zap.String("topic", hook.Topic))
			return WebhookDuplicate, nil
		}
	}

	if err := s.process(ctx, hook); err != nil {
		if dedupKey != "" {
			if ferr := s.idempotency.Forget(ctx, dedupKey); ferr != nil {
				s.logger.Error("failed to release webhook mark", zap.String("webhook_id", hook.WebhookID), zap.Error(ferr))
			}
		}
		s.logger.Error("webhook processing failed",
			zap.String("webhook_id", hook.WebhookID),
			zap.String("topic", hook.Topic),
			zap.Error(err))
		return "", err
	}
	return WebhookProcessed, nil
}

func (s *ShopifyService) process(ctx context.Context, hook ShopifyWebhook) error {
	remote, err := ecommerce.DecodeWebhookOrder(hook.Body)
	if err != nil {
		return err
	}

	order, err := s.orders.FindByExternalID(ctx, s.tenantID, integration.ProviderShopify, remote.ExternalID)
	switch {
	case errors.Is(err, integration.ErrOrderNotFound):
		order, err = integration.NewERPOrder(s.tenantID, integration.ProviderShopify, *remote)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		order.Apply(*remote)
	}

	if hook.Topic == ecommerce.TopicOrdersPaid && order.ERPOrderID == "" && s.erp != nil {
		s.pushToERP(ctx, order, *remote)
	}
	if err := s.orders.Upsert(ctx, order); err != nil {
		return err
	}
	s.logger.Info("shopify order stored",
		zap.String("external_id", order.ExternalID),
		zap.String("topic", hook.Topic),
		zap.String("state", string(order.State)),
		zap.String("erp_order_id", order.ERPOrderID))
	return nil
}

// pushToERP is best effort: the outcome lands on the order row and never
// fails the webhook.
func (s *ShopifyService) pushToERP(ctx context.Context, order *integration.ERPOrder, remote integration.RemoteOrder) {
	contactID, err := s.ensureContact(ctx, remote)
	if err == nil {
		order.ERPOrderID, err = s.erp.CreateSalesOrder(ctx, s.tenantID, remote, contactID)
	}
	if err != nil {
		order.LastError = "erp push: " + err.Error()
		s.logger.Warn("erp push failed", zap.String("external_id", order.ExternalID), zap.Error(err))
		return
	}
	order.LastError = ""
}

func (s *ShopifyService) ensureContact(ctx context.Context, remote integration.RemoteOrder) (string, error) {
	contact, err := s.erp.FindContactByDocument(ctx, s.tenantID, remote.CustomerDocument)
	if err != nil {
		return "", err
	}
	if contact != nil {
		return contact.ID, nil
	}
	return s.erp.CreateContact(ctx, s.tenantID, integration.Contact{
		Name:     remote.CustomerName,
		Document: remote.CustomerDocument,
		Email:    remote.CustomerEmail,
	})
}

// ---------------------------------------------------------------------------
// Admin lookups
// ---------------------------------------------------------------------------

// OrderDetail fetches an Admin order with its fulfillments and metafields
func (s *ShopifyService) OrderDetail(ctx context.Context, tenantID uuid.UUID, orderID string) (*ShopifyOrderDetail, error) {
	if s.commerce == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	order, err := s.commerce.GetOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	fulfillments, err := s.commerce.ListFulfillments(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	metafields, err := s.commerce.GetMetafields(ctx, tenantID, "orders", orderID)
	if err != nil {
		return nil, err
	}
	return &ShopifyOrderDetail{Order: order, Fulfillments: fulfillments, Metafields: metafields}, nil
}
