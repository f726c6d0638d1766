package commission

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleKind distinguishes reseller commissions from author royalties.
type SaleKind string

const (
	SaleKindCommission SaleKind = "commission"
	SaleKindRoyalty    SaleKind = "royalty"
)

// IsValid returns true if the kind is known
func (k SaleKind) IsValid() bool {
	return k == SaleKindCommission || k == SaleKindRoyalty
}

// CommissionConfig is the product-level percentage a Sale copies at creation.
// For royalties DefaultBeneficiaryID is the author.
type CommissionConfig struct {
	shared.TenantEntity
	ProductID            string
	Kind                 SaleKind
	Pct                  decimal.Decimal
	DefaultBeneficiaryID *uuid.UUID
}

// NewCommissionConfig validates and creates a config
func NewCommissionConfig(tenantID uuid.UUID, productID string, kind SaleKind, pct decimal.Decimal, beneficiary *uuid.UUID) (*CommissionConfig, error) {
	if productID == "" {
		return nil, ErrMissingProduct
	}
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if valueobject.ValidatePercent(pct) != nil {
		return nil, ErrInvalidPercent
	}
	return &CommissionConfig{
		TenantEntity:         shared.NewTenantEntity(tenantID),
		ProductID:            productID,
		Kind:                 kind,
		Pct:                  pct,
		DefaultBeneficiaryID: beneficiary,
	}, nil
}

// Update changes the percentage. Existing sales keep the value they copied.
func (c *CommissionConfig) Update(pct decimal.Decimal, beneficiary *uuid.UUID) error {
	if valueobject.ValidatePercent(pct) != nil {
		return ErrInvalidPercent
	}
	c.Pct = pct
	c.DefaultBeneficiaryID = beneficiary
	c.Touch()
	return nil
}
