// Package commission records reseller commissions and author royalties and
// moves them through payout batches.
package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/commission"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Metrics counts payout batch transitions
type Metrics interface {
	RecordPayoutTransition(ctx context.Context, status string, total decimal.Decimal)
}

// Service is the commission application service
type Service struct {
	configs   commission.ConfigRepository
	sales     commission.SaleRepository
	payouts   commission.PayoutRepository
	payments  integration.PaymentGateway
	notifyURL string
	metrics   Metrics
	logger    *zap.Logger
}

// ServiceConfig wires a Service. Payments is optional; without it payment
// links must be supplied by the caller.
type ServiceConfig struct {
	Configs   commission.ConfigRepository
	Sales     commission.SaleRepository
	Payouts   commission.PayoutRepository
	Payments  integration.PaymentGateway
	NotifyURL string
	Metrics   Metrics
	Logger    *zap.Logger
}

// NewService creates a Service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		configs:   cfg.Configs,
		sales:     cfg.Sales,
		payouts:   cfg.Payouts,
		payments:  cfg.Payments,
		notifyURL: cfg.NotifyURL,
		metrics:   cfg.Metrics,
		logger:    logger.Named("commission"),
	}
}

// ---------------------------------------------------------------------------
// Configs and sales
// ---------------------------------------------------------------------------

// SaveConfig creates or updates the percentage for a product and kind
func (s *Service) SaveConfig(ctx context.Context, tenantID uuid.UUID, in SaveConfigInput) (*commission.CommissionConfig, error) {
	cfg, err := s.configs.FindByProduct(ctx, tenantID, in.ProductID, in.Kind)
	switch {
	case errors.Is(err, commission.ErrCommissionConfigNotFound):
		cfg, err = commission.NewCommissionConfig(tenantID, in.ProductID, in.Kind, in.Pct, in.DefaultBeneficiaryID)
	case err == nil:
		err = cfg.Update(in.Pct, in.DefaultBeneficiaryID)
	}
	if err != nil {
		return nil, err
	}
	if err := s.configs.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RecordSale copies the product's current percentage into a new sale. A
// product without a config is a data-integrity error and nothing is stored.
func (s *Service) RecordSale(ctx context.Context, tenantID uuid.UUID, in RecordSaleInput) (*commission.Sale, error) {
	cfg, err := s.configs.FindByProduct(ctx, tenantID, in.ProductID, in.Kind)
	if err != nil {
		if errors.Is(err, commission.ErrCommissionConfigNotFound) {
			s.logger.Warn("sale for product without commission config",
				zap.String("tenant_id", tenantID.String()),
				zap.String("product_id", in.ProductID),
				zap.String("kind", string(in.Kind)),
			)
		}
		return nil, err
	}

	sale, err := commission.NewSale(cfg, commission.NewSaleInput{
		ProductID:       in.ProductID,
		ProductTitle:    in.ProductTitle,
		BeneficiaryID:   in.BeneficiaryID,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		ExternalOrderID: in.ExternalOrderID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("kind", string(sale.Kind)),
		zap.String("commission_total", sale.CommissionTotal.String()),
	)
	return sale, nil
}

// AttachPaymentLink stores link on the sale. An empty link asks Mercado Pago
// for a checkout preference referencing the sale id.
func (s *Service) AttachPaymentLink(ctx context.Context, tenantID, saleID uuid.UUID, link string) (*commission.Sale, error) {
	sale, err := s.sales.FindByID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}

	if link == "" {
		if s.payments == nil {
			return nil, fmt.Errorf("%w: mercadopago", integration.ErrProviderNotConfigured)
		}
		title := sale.ProductTitle
		if title == "" {
			title = sale.ProductID
		}
		pref, err := s.payments.CreatePreference(ctx, tenantID, integration.PreferenceRequest{
			Title:             title,
			Quantity:          sale.Quantity,
			UnitPrice:         sale.UnitPrice,
			ExternalReference: sale.ID.String(),
			NotificationURL:   s.notifyURL,
		})
		if err != nil {
			return nil, err
		}
		link = pref.InitPoint
	}

	if err := sale.SetPaymentLink(link); err != nil {
		return nil, err
	}
	if err := s.sales.UpdatePaymentLink(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSale loads one sale
func (s *Service) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*commission.Sale, error) {
	return s.sales.FindByID(ctx, tenantID, saleID)
}

// ListSales returns one page of sales, newest first
func (s *Service) ListSales(ctx context.Context, tenantID uuid.UUID, filter commission.SaleFilter) ([]commission.Sale, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	return s.sales.FindAll(ctx, tenantID, filter)
}

// ---------------------------------------------------------------------------
// Payouts
// ---------------------------------------------------------------------------

// CreatePayout batches sales of a single beneficiary. Every sale must exist
// and none may already sit in an open batch; the store checks membership and
// claims the sales in one transaction.
func (s *Service) CreatePayout(ctx context.Context, tenantID uuid.UUID, saleIDs []uuid.UUID) (*commission.PayoutBatch, error) {
	if len(saleIDs) == 0 {
		return nil, commission.ErrEmptyPayout
	}
	ids := dedupe(saleIDs)

	sales, err := s.sales.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	if len(sales) != len(ids) {
		return nil, commission.ErrSaleNotFound
	}

	batch, err := commission.NewPayoutBatch(tenantID, sales)
	if err != nil {
		return nil, err
	}
	if err := s.payouts.Create(ctx, batch); err != nil {
		if errors.Is(err, commission.ErrSaleAlreadyBatched) {
			s.logger.Info("payout rejected, sales already batched", zap.Int("sales", len(ids)))
		}
		return nil, err
	}

	s.logger.Info("payout created",
		zap.String("payout_id", batch.ID.String()),
		zap.String("beneficiary_id", batch.BeneficiaryID.String()),
		zap.Int("sales", len(batch.SaleIDs)),
		zap.String("total", batch.Total.String()),
	)
	return batch, nil
}

// GetPayout loads one batch
func (s *Service) GetPayout(ctx context.Context, tenantID, payoutID uuid.UUID) (*commission.PayoutBatch, error) {
	return s.payouts.FindByID(ctx, tenantID, payoutID)
}

// ApprovePayout moves a pending batch to approved
func (s *Service) ApprovePayout(ctx context.Context, tenantID, payoutID uuid.UUID) (*commission.PayoutBatch, error) {
	return s.transition(ctx, tenantID, payoutID, "approve", (*commission.PayoutBatch).Approve)
}

// MarkPayoutPaid moves an approved batch to paid with the transfer reference
func (s *Service) MarkPayoutPaid(ctx context.Context, tenantID, payoutID uuid.UUID, reference string) (*commission.PayoutBatch, error) {
	return s.transition(ctx, tenantID, payoutID, "pay", func(b *commission.PayoutBatch) error {
		return b.MarkPaid(reference)
	})
}

// CancelPayout cancels a pending or approved batch; its sales become
// available for a new batch.
func (s *Service) CancelPayout(ctx context.Context, tenantID, payoutID uuid.UUID, reason string) (*commission.PayoutBatch, error) {
	return s.transition(ctx, tenantID, payoutID, "cancel", func(b *commission.PayoutBatch) error {
		return b.Cancel(reason)
	})
}

func (s *Service) transition(ctx context.Context, tenantID, payoutID uuid.UUID, action string, apply func(*commission.PayoutBatch) error) (*commission.PayoutBatch, error) {
	batch, err := s.payouts.FindByID(ctx, tenantID, payoutID)
	if err != nil {
		return nil, err
	}
	from := batch.Status
	if err := apply(batch); err != nil {
		return nil, err
	}
	if err := s.payouts.UpdateStatus(ctx, batch); err != nil {
		if errors.Is(err, commission.ErrPayoutModified) {
			s.logger.Warn("payout "+action+" lost to a concurrent transition",
				zap.String("payout_id", payoutID.String()),
				zap.String("from", string(from)),
			)
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordPayoutTransition(ctx, string(batch.Status), batch.Total)
	}
	s.logger.Info("payout "+action,
		zap.String("payout_id", payoutID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(batch.Status)),
	)
	return batch, nil
}

// BeneficiaryBalance reports accrued commission against what is batched or paid
func (s *Service) BeneficiaryBalance(ctx context.Context, tenantID, beneficiaryID uuid.UUID) (*commission.Balance, error) {
	accrued, err := s.sales.SumByBeneficiary(ctx, tenantID, beneficiaryID)
	if err != nil {
		return nil, err
	}
	open, paid, err := s.payouts.SumByBeneficiary(ctx, tenantID, beneficiaryID)
	if err != nil {
		return nil, err
	}
	return &commission.Balance{
		BeneficiaryID: beneficiaryID,
		Accrued:       accrued,
		Batched:       open,
		Paid:          paid,
		Available:     accrued.Sub(open).Sub(paid),
	}, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
