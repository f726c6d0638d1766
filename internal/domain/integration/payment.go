package integration

import (
	"context"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecord is the local copy of a payment polled from Mercado Pago.
type PaymentRecord struct {
	shared.TenantEntity
	Provider          Provider
	ExternalID        string
	ExternalReference string
	ProviderStatus    string
	StatusDetail      string
	State             SyncState
	Amount            decimal.Decimal
	PaidAt            *time.Time
	LastError         string
	SyncedAt          time.Time
}

// RemotePayment is a provider-neutral view of a payment as fetched
type RemotePayment struct {
	ExternalID        string
	ExternalReference string
	ProviderStatus    string
	StatusDetail      string
	State             SyncState
	Amount            decimal.Decimal
	PaidAt            *time.Time
}

// NewPaymentRecord creates a local copy from a fetched payment
func NewPaymentRecord(tenantID uuid.UUID, provider Provider, remote RemotePayment) (*PaymentRecord, error) {
	if remote.ExternalID == "" {
		return nil, ErrMissingExternalID
	}
	p := &PaymentRecord{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Provider:     provider,
		ExternalID:   remote.ExternalID,
	}
	p.Apply(remote)
	return p, nil
}

// Apply merges a fetched payment into the local copy. The raw provider status
// is always kept, so a refund after approval stays visible even though the
// state does not move.
func (p *PaymentRecord) Apply(remote RemotePayment) {
	if remote.ExternalReference != "" {
		p.ExternalReference = remote.ExternalReference
	}
	p.ProviderStatus = remote.ProviderStatus
	p.StatusDetail = remote.StatusDetail
	p.State = p.State.Reconcile(remote.State)
	p.Amount = remote.Amount
	if remote.PaidAt != nil {
		p.PaidAt = remote.PaidAt
	}
	p.LastError = ""
	p.SyncedAt = time.Now().UTC()
	p.Touch()
}

// PaymentRepository persists local payment copies
type PaymentRepository interface {
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, provider Provider, externalID string) (*PaymentRecord, error)
	// ListOpen returns non-terminal payments ordered by creation, plus the total count of open payments.
	ListOpen(ctx context.Context, tenantID uuid.UUID, provider Provider, offset, limit int) ([]PaymentRecord, int64, error)
	Upsert(ctx context.Context, payment *PaymentRecord) error
}
