package models

import (
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/commission"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionConfigModel is the persistence model for commission.CommissionConfig
type CommissionConfigModel struct {
	BaseModel
	TenantID             uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_commission_config_product,priority:1"`
	ProductID            string              `gorm:"type:varchar(100);not null;uniqueIndex:idx_commission_config_product,priority:2"`
	Kind                 commission.SaleKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_commission_config_product,priority:3"`
	Pct                  decimal.Decimal     `gorm:"type:decimal(7,4);not null"`
	DefaultBeneficiaryID *uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CommissionConfigModel) TableName() string {
	return "commission_configs"
}

// ToDomain converts the model to a domain CommissionConfig
func (m *CommissionConfigModel) ToDomain() *commission.CommissionConfig {
	return &commission.CommissionConfig{
		TenantEntity:         shared.TenantEntity{BaseEntity: m.BaseModel.ToDomain(), TenantID: m.TenantID},
		ProductID:            m.ProductID,
		Kind:                 m.Kind,
		Pct:                  m.Pct,
		DefaultBeneficiaryID: m.DefaultBeneficiaryID,
	}
}

// CommissionConfigModelFromDomain creates a model from a domain CommissionConfig
func CommissionConfigModelFromDomain(c *commission.CommissionConfig) *CommissionConfigModel {
	m := &CommissionConfigModel{
		ProductID:            c.ProductID,
		Kind:                 c.Kind,
		Pct:                  c.Pct,
		DefaultBeneficiaryID: c.DefaultBeneficiaryID,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TenantID = c.TenantID
	return m
}

// SaleModel is the persistence model for commission.Sale
type SaleModel struct {
	TenantModel
	ProductID       string              `gorm:"type:varchar(100);not null;index"`
	ProductTitle    string              `gorm:"type:varchar(255)"`
	Kind            commission.SaleKind `gorm:"type:varchar(20);not null"`
	BeneficiaryID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	Quantity        int                 `gorm:"not null"`
	UnitPrice       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	CommissionPct   decimal.Decimal     `gorm:"type:decimal(7,4);not null"`
	CommissionUnit  decimal.Decimal     `gorm:"type:decimal(18,8);not null"`
	CommissionTotal decimal.Decimal     `gorm:"type:decimal(18,8);not null"`
	ExternalOrderID string              `gorm:"type:varchar(100);index"`
	PaymentLink     string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the model to a domain Sale
func (m *SaleModel) ToDomain() *commission.Sale {
	return &commission.Sale{
		TenantEntity:    m.ToTenantEntity(),
		ProductID:       m.ProductID,
		ProductTitle:    m.ProductTitle,
		Kind:            m.Kind,
		BeneficiaryID:   m.BeneficiaryID,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		CommissionPct:   m.CommissionPct,
		CommissionUnit:  m.CommissionUnit,
		CommissionTotal: m.CommissionTotal,
		ExternalOrderID: m.ExternalOrderID,
		PaymentLink:     m.PaymentLink,
	}
}

// SaleModelFromDomain creates a model from a domain Sale
func SaleModelFromDomain(s *commission.Sale) *SaleModel {
	m := &SaleModel{
		ProductID:       s.ProductID,
		ProductTitle:    s.ProductTitle,
		Kind:            s.Kind,
		BeneficiaryID:   s.BeneficiaryID,
		Quantity:        s.Quantity,
		UnitPrice:       s.UnitPrice,
		CommissionPct:   s.CommissionPct,
		CommissionUnit:  s.CommissionUnit,
		CommissionTotal: s.CommissionTotal,
		ExternalOrderID: s.ExternalOrderID,
		PaymentLink:     s.PaymentLink,
	}
	m.FromTenantEntity(s.TenantEntity)
	return m
}

// PayoutBatchModel is the persistence model for commission.PayoutBatch
type PayoutBatchModel struct {
	TenantModel
	BeneficiaryID uuid.UUID               `gorm:"type:uuid;not null;index"`
	Total         decimal.Decimal         `gorm:"type:decimal(18,8);not null"`
	Status        commission.PayoutStatus `gorm:"type:varchar(20);not null;index"`
	Reference     string                  `gorm:"type:varchar(255)"`
	ApprovedAt    *time.Time
	PaidAt        *time.Time
	CancelledAt   *time.Time
	CancelReason  string            `gorm:"type:text"`
	Version       int               `gorm:"not null;default:1"`
	Sales         []PayoutSaleModel `gorm:"foreignKey:PayoutID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PayoutBatchModel) TableName() string {
	return "payout_batches"
}

// PayoutSaleModel links a sale to a payout batch. Released is set when the
// batch is cancelled; a sale has at most one unreleased link.
type PayoutSaleModel struct {
	PayoutID uuid.UUID `gorm:"type:uuid;primaryKey"`
	SaleID   uuid.UUID `gorm:"type:uuid;primaryKey;index;uniqueIndex:idx_payout_sales_open_sale,where:released = false"`
	Released bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (PayoutSaleModel) TableName() string {
	return "payout_sales"
}

// ToDomain converts the model to a domain PayoutBatch
func (m *PayoutBatchModel) ToDomain() *commission.PayoutBatch {
	ids := make([]uuid.UUID, 0, len(m.Sales))
	for _, s := range m.Sales {
		ids = append(ids, s.SaleID)
	}
	return &commission.PayoutBatch{
		TenantEntity:  m.ToTenantEntity(),
		BeneficiaryID: m.BeneficiaryID,
		SaleIDs:       ids,
		Total:         m.Total,
		Status:        m.Status,
		Reference:     m.Reference,
		ApprovedAt:    m.ApprovedAt,
		PaidAt:        m.PaidAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		Version:       m.Version,
	}
}

// PayoutBatchModelFromDomain creates a model from a domain PayoutBatch
func PayoutBatchModelFromDomain(b *commission.PayoutBatch) *PayoutBatchModel {
	m := &PayoutBatchModel{
		BeneficiaryID: b.BeneficiaryID,
		Total:         b.Total,
		Status:        b.Status,
		Reference:     b.Reference,
		ApprovedAt:    b.ApprovedAt,
		PaidAt:        b.PaidAt,
		CancelledAt:   b.CancelledAt,
		CancelReason:  b.CancelReason,
		Version:       b.Version,
		Sales:         make([]PayoutSaleModel, 0, len(b.SaleIDs)),
	}
	m.FromTenantEntity(b.TenantEntity)
	for _, id := range b.SaleIDs {
		m.Sales = append(m.Sales, PayoutSaleModel{PayoutID: b.ID, SaleID: id, Released: !b.Status.IsOpen()})
	}
	return m
}
