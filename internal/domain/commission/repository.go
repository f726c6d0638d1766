package commission

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfigRepository persists commission configs, one per tenant+product+kind.
type ConfigRepository interface {
	FindByProduct(ctx context.Context, tenantID uuid.UUID, productID string, kind SaleKind) (*CommissionConfig, error)
	Save(ctx context.Context, cfg *CommissionConfig) error
}

// SaleRepository persists sales
type SaleRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Sale, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]Sale, int64, error)
	Create(ctx context.Context, sale *Sale) error
	UpdatePaymentLink(ctx context.Context, sale *Sale) error
	SumByBeneficiary(ctx context.Context, tenantID, beneficiaryID uuid.UUID) (decimal.Decimal, error)
}

// PayoutRepository persists payout batches and their sale membership
type PayoutRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PayoutBatch, error)
	// Create stores a batch and claims its sales atomically. It returns
	// ErrSaleAlreadyBatched when any sale sits in a non-cancelled batch.
	Create(ctx context.Context, batch *PayoutBatch) error
	// UpdateStatus stores the batch's status when the stored version still
	// equals batch.Version, then advances it. It returns ErrPayoutModified
	// when another transition was stored first.
	UpdateStatus(ctx context.Context, batch *PayoutBatch) error
	// SumByBeneficiary returns totals of open (pending+approved) and paid batches.
	SumByBeneficiary(ctx context.Context, tenantID, beneficiaryID uuid.UUID) (open, paid decimal.Decimal, err error)
}
