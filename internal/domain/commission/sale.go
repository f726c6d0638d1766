package commission

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a recorded transaction. Everything except PaymentLink is fixed at
// creation; the percentage is copied from the product's CommissionConfig so
// later config edits do not rewrite history.
type Sale struct {
	shared.TenantEntity
	ProductID       string
	ProductTitle    string
	Kind            SaleKind
	BeneficiaryID   uuid.UUID
	Quantity        int
	UnitPrice       decimal.Decimal
	CommissionPct   decimal.Decimal
	CommissionUnit  decimal.Decimal
	CommissionTotal decimal.Decimal
	ExternalOrderID string
	PaymentLink     string
}

// NewSaleInput carries the caller-provided fields of a sale
type NewSaleInput struct {
	ProductID       string
	ProductTitle    string
	BeneficiaryID   uuid.UUID
	Quantity        int
	UnitPrice       decimal.Decimal
	ExternalOrderID string
}

// NewSale records a sale against cfg. The beneficiary falls back to the
// config default (the author, for royalties).
func NewSale(cfg *CommissionConfig, in NewSaleInput) (*Sale, error) {
	if cfg == nil {
		return nil, ErrCommissionConfigNotFound
	}
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if in.UnitPrice.IsNegative() {
		return nil, ErrInvalidUnitPrice
	}

	beneficiary := in.BeneficiaryID
	if beneficiary == uuid.Nil && cfg.DefaultBeneficiaryID != nil {
		beneficiary = *cfg.DefaultBeneficiaryID
	}
	if beneficiary == uuid.Nil {
		return nil, ErrMissingBeneficiary
	}

	c := Compute(in.UnitPrice, cfg.Pct, in.Quantity)
	return &Sale{
		TenantEntity:    shared.NewTenantEntity(cfg.TenantID),
		ProductID:       cfg.ProductID,
		ProductTitle:    in.ProductTitle,
		Kind:            cfg.Kind,
		BeneficiaryID:   beneficiary,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		CommissionPct:   cfg.Pct,
		CommissionUnit:  c.PerUnit,
		CommissionTotal: c.Total,
		ExternalOrderID: in.ExternalOrderID,
	}, nil
}

// SetPaymentLink is the only mutation allowed after creation.
func (s *Sale) SetPaymentLink(link string) error {
	if link == "" {
		return shared.NewDomainError("INVALID_INPUT", "payment link cannot be empty")
	}
	s.PaymentLink = link
	s.Touch()
	return nil
}

// SaleFilter narrows ListSales
type SaleFilter struct {
	BeneficiaryID *uuid.UUID
	Kind          SaleKind
	Page          int
	PageSize      int
}
