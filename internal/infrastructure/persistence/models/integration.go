package models

import (
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProviderTokenModel stores one OAuth pair per tenant and provider
type ProviderTokenModel struct {
	TenantID     uuid.UUID            `gorm:"type:uuid;primaryKey"`
	Provider     integration.Provider `gorm:"type:varchar(20);primaryKey"`
	AccessToken  string               `gorm:"type:text;not null"`
	RefreshToken string               `gorm:"type:text;not null"`
	ExpiresAt    time.Time            `gorm:"not null"`
	UpdatedAt    time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProviderTokenModel) TableName() string {
	return "provider_tokens"
}

// ToDomain converts the model to a domain ProviderToken
func (m *ProviderTokenModel) ToDomain() *integration.ProviderToken {
	return &integration.ProviderToken{
		TenantID:     m.TenantID,
		Provider:     m.Provider,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ProviderTokenModelFromDomain creates a model from a domain ProviderToken
func ProviderTokenModelFromDomain(t *integration.ProviderToken) *ProviderTokenModel {
	return &ProviderTokenModel{
		TenantID:     t.TenantID,
		Provider:     t.Provider,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func syncedTenantEntity(base BaseModel, tenantID uuid.UUID) shared.TenantEntity {
	return shared.TenantEntity{BaseEntity: base.ToDomain(), TenantID: tenantID}
}

// ERPOrderModel is the persistence model for integration.ERPOrder
type ERPOrderModel struct {
	BaseModel
	TenantID         uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_erp_orders_key,priority:1"`
	Provider         integration.Provider  `gorm:"type:varchar(20);not null;uniqueIndex:idx_erp_orders_key,priority:2"`
	ExternalID       string                `gorm:"type:varchar(100);not null;uniqueIndex:idx_erp_orders_key,priority:3"`
	Number           string                `gorm:"type:varchar(50)"`
	ProviderStatus   string                `gorm:"type:varchar(50)"`
	State            integration.SyncState `gorm:"type:varchar(20);not null;index"`
	CustomerName     string                `gorm:"type:varchar(200)"`
	CustomerDocument string                `gorm:"type:varchar(20)"`
	CustomerEmail    string                `gorm:"type:varchar(200)"`
	Total            decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PlacedAt         *time.Time
	ERPOrderID       string    `gorm:"column:erp_order_id;type:varchar(100)"`
	LastError        string    `gorm:"type:text"`
	SyncedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ERPOrderModel) TableName() string {
	return "erp_orders"
}

// ToDomain converts the model to a domain ERPOrder
func (m *ERPOrderModel) ToDomain() *integration.ERPOrder {
	return &integration.ERPOrder{
		TenantEntity:     syncedTenantEntity(m.BaseModel, m.TenantID),
		Provider:         m.Provider,
		ExternalID:       m.ExternalID,
		Number:           m.Number,
		ProviderStatus:   m.ProviderStatus,
		State:            m.State,
		CustomerName:     m.CustomerName,
		CustomerDocument: m.CustomerDocument,
		CustomerEmail:    m.CustomerEmail,
		Total:            m.Total,
		PlacedAt:         m.PlacedAt,
		ERPOrderID:       m.ERPOrderID,
		LastError:        m.LastError,
		SyncedAt:         m.SyncedAt,
	}
}

// ERPOrderModelFromDomain creates a model from a domain ERPOrder
func ERPOrderModelFromDomain(o *integration.ERPOrder) *ERPOrderModel {
	m := &ERPOrderModel{
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
	m.FromDomainBaseEntity(o.BaseEntity)
	m.TenantID = o.TenantID
	m.Provider = o.Provider
	m.ExternalID = o.ExternalID
	return m
}

// InvoiceModel is the persistence model for integration.Invoice
type InvoiceModel struct {
	BaseModel
	TenantID        uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_erp_invoices_key,priority:1"`
	Provider        integration.Provider  `gorm:"type:varchar(20);not null;uniqueIndex:idx_erp_invoices_key,priority:2"`
	ExternalID      string                `gorm:"type:varchar(100);not null;uniqueIndex:idx_erp_invoices_key,priority:3"`
	Number          string                `gorm:"type:varchar(20)"`
	Series          string                `gorm:"type:varchar(5)"`
	AccessKey       string                `gorm:"type:varchar(44)"`
	ProviderStatus  string                `gorm:"type:varchar(50)"`
	State           integration.SyncState `gorm:"type:varchar(20);not null;index"`
	Total           decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	IssuedAt        *time.Time
	XMLURL          string    `gorm:"column:xml_url;type:text"`
	ArchiveKey      string    `gorm:"type:varchar(255)"`
	OrderExternalID string    `gorm:"type:varchar(100)"`
	LastError       string    `gorm:"type:text"`
	SyncedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "erp_invoices"
}

// ToDomain converts the model to a domain Invoice
func (m *InvoiceModel) ToDomain() *integration.Invoice {
	return &integration.Invoice{
		TenantEntity:    syncedTenantEntity(m.BaseModel, m.TenantID),
		Provider:        m.Provider,
		ExternalID:      m.ExternalID,
		Number:          m.Number,
		Series:          m.Series,
		AccessKey:       m.AccessKey,
		ProviderStatus:  m.ProviderStatus,
		State:           m.State,
		Total:           m.Total,
		IssuedAt:        m.IssuedAt,
		XMLURL:          m.XMLURL,
		ArchiveKey:      m.ArchiveKey,
		OrderExternalID: m.OrderExternalID,
		LastError:       m.LastError,
		SyncedAt:        m.SyncedAt,
	}
}

// InvoiceModelFromDomain creates a model from a domain Invoice
func InvoiceModelFromDomain(i *integration.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:          i.Number,
		Series:          i.Series,
		AccessKey:       i.AccessKey,
		ProviderStatus:  i.ProviderStatus,
		State:           i.State,
		Total:           i.Total,
		IssuedAt:        i.IssuedAt,
		XMLURL:          i.XMLURL,
		ArchiveKey:      i.ArchiveKey,
		OrderExternalID: i.OrderExternalID,
		LastError:       i.LastError,
		SyncedAt:        i.SyncedAt,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	m.TenantID = i.TenantID
	m.Provider = i.Provider
	m.ExternalID = i.ExternalID
	return m
}

// PaymentModel is the persistence model for integration.PaymentRecord
type PaymentModel struct {
	BaseModel
	TenantID          uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_payments_key,priority:1"`
	Provider          integration.Provider  `gorm:"type:varchar(20);not null;uniqueIndex:idx_payments_key,priority:2"`
	ExternalID        string                `gorm:"type:varchar(100);not null;uniqueIndex:idx_payments_key,priority:3"`
	ExternalReference string                `gorm:"type:varchar(100);index"`
	ProviderStatus    string                `gorm:"type:varchar(30)"`
	StatusDetail      string                `gorm:"type:varchar(100)"`
	State             integration.SyncState `gorm:"type:varchar(20);not null;index"`
	Amount            decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAt            *time.Time
	LastError         string    `gorm:"type:text"`
	SyncedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain PaymentRecord
func (m *PaymentModel) ToDomain() *integration.PaymentRecord {
	return &integration.PaymentRecord{
		TenantEntity:      syncedTenantEntity(m.BaseModel, m.TenantID),
		Provider:          m.Provider,
		ExternalID:        m.ExternalID,
		ExternalReference: m.ExternalReference,
		ProviderStatus:    m.ProviderStatus,
		StatusDetail:      m.StatusDetail,
		State:             m.State,
		Amount:            m.Amount,
		PaidAt:            m.PaidAt,
		LastError:         m.LastError,
		SyncedAt:          m.SyncedAt,
	}
}

// PaymentModelFromDomain creates a model from a domain PaymentRecord
func PaymentModelFromDomain(p *integration.PaymentRecord) *PaymentModel {
	m := &PaymentModel{
		ExternalReference: p.ExternalReference,
		ProviderStatus:    p.ProviderStatus,
		StatusDetail:      p.StatusDetail,
		State:             p.State,
		Amount:            p.Amount,
		PaidAt:            p.PaidAt,
		LastError:         p.LastError,
		SyncedAt:          p.SyncedAt,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	m.TenantID = p.TenantID
	m.Provider = p.Provider
	m.ExternalID = p.ExternalID
	return m
}
