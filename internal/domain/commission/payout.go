package commission

import (
	"fmt"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutStatus is the state of a payout (resgate) batch
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusApproved  PayoutStatus = "approved"
	PayoutStatusPaid      PayoutStatus = "paid"
	PayoutStatusCancelled PayoutStatus = "cancelled"
)

// CanApprove returns true if a batch in this status can be approved
func (s PayoutStatus) CanApprove() bool { return s == PayoutStatusPending }

// CanPay returns true if a batch in this status can be marked paid
func (s PayoutStatus) CanPay() bool { return s == PayoutStatusApproved }

// CanCancel returns true if a batch in this status can be cancelled
func (s PayoutStatus) CanCancel() bool {
	return s == PayoutStatusPending || s == PayoutStatusApproved
}

// IsTerminal returns true for paid and cancelled
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusPaid || s == PayoutStatusCancelled
}

// IsOpen returns true while the batch still holds its sales
func (s PayoutStatus) IsOpen() bool { return s != PayoutStatusCancelled }

// PayoutBatch groups one beneficiary's sales into a single payout. Version is
// the stored revision the batch was loaded at; saving a transition made on an
// older revision fails.
type PayoutBatch struct {
	shared.TenantEntity
	BeneficiaryID uuid.UUID
	SaleIDs       []uuid.UUID
	Total         decimal.Decimal
	Status        PayoutStatus
	Reference     string
	ApprovedAt    *time.Time
	PaidAt        *time.Time
	CancelledAt   *time.Time
	CancelReason  string
	Version       int
}

// NewPayoutBatch creates a pending batch. Total is the sum of the member
// sales' commission totals.
func NewPayoutBatch(tenantID uuid.UUID, sales []Sale) (*PayoutBatch, error) {
	if len(sales) == 0 {
		return nil, ErrEmptyPayout
	}

	beneficiary := sales[0].BeneficiaryID
	total := decimal.Zero
	ids := make([]uuid.UUID, 0, len(sales))
	seen := make(map[uuid.UUID]struct{}, len(sales))

	for _, s := range sales {
		if s.BeneficiaryID != beneficiary {
			return nil, ErrMixedBeneficiaries
		}
		if s.TenantID != tenantID {
			return nil, ErrSaleNotFound
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		ids = append(ids, s.ID)
		total = total.Add(s.CommissionTotal)
	}

	return &PayoutBatch{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		BeneficiaryID: beneficiary,
		SaleIDs:       ids,
		Total:         total,
		Status:        PayoutStatusPending,
		Version:       1,
	}, nil
}

// Approve moves pending -> approved
func (b *PayoutBatch) Approve() error {
	if !b.Status.CanApprove() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("cannot approve payout in %s status", b.Status))
	}
	now := time.Now().UTC()
	b.Status = PayoutStatusApproved
	b.ApprovedAt = &now
	b.UpdatedAt = now
	return nil
}

// MarkPaid moves approved -> paid and records the transfer reference
func (b *PayoutBatch) MarkPaid(reference string) error {
	if !b.Status.CanPay() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("cannot pay payout in %s status", b.Status))
	}
	now := time.Now().UTC()
	b.Status = PayoutStatusPaid
	b.Reference = reference
	b.PaidAt = &now
	b.UpdatedAt = now
	return nil
}

// Cancel moves pending or approved -> cancelled, releasing its sales
func (b *PayoutBatch) Cancel(reason string) error {
	if !b.Status.CanCancel() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("cannot cancel payout in %s status", b.Status))
	}
	now := time.Now().UTC()
	b.Status = PayoutStatusCancelled
	b.CancelReason = reason
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// Balance summarizes what a beneficiary has accrued and what is already batched.
type Balance struct {
	BeneficiaryID uuid.UUID       `json:"beneficiary_id"`
	Accrued       decimal.Decimal `json:"accrued"`
	Batched       decimal.Decimal `json:"batched"`
	Paid          decimal.Decimal `json:"paid"`
	Available     decimal.Decimal `json:"available"`
}
