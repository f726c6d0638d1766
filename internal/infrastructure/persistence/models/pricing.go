package models

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientProfileModel is the persistence model for pricing.ClientProfile
type ClientProfileModel struct {
	TenantModel
	Name               string                  `gorm:"type:varchar(200);not null"`
	Type               pricing.ClientType      `gorm:"type:varchar(30);not null;default:'other'"`
	OnboardingComplete bool                    `gorm:"not null;default:false"`
	SellerDiscountPct  decimal.Decimal         `gorm:"type:decimal(7,4);not null;default:0"`
	Overrides          []CategoryOverrideModel `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ClientProfileModel) TableName() string {
	return "client_profiles"
}

// CategoryOverrideModel is one per-category discount of a client
type CategoryOverrideModel struct {
	ClientID uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Category pricing.Category `gorm:"type:varchar(30);primaryKey"`
	Pct      decimal.Decimal  `gorm:"type:decimal(7,4);not null"`
}

// TableName returns the table name for GORM
func (CategoryOverrideModel) TableName() string {
	return "client_category_discounts"
}

// ToDomain converts the model to a domain ClientProfile
func (m *ClientProfileModel) ToDomain() *pricing.ClientProfile {
	overrides := make(map[pricing.Category]decimal.Decimal, len(m.Overrides))
	for _, o := range m.Overrides {
		overrides[o.Category] = o.Pct
	}
	return &pricing.ClientProfile{
		TenantEntity:       m.ToTenantEntity(),
		Name:               m.Name,
		Type:               m.Type,
		OnboardingComplete: m.OnboardingComplete,
		SellerDiscountPct:  m.SellerDiscountPct,
		CategoryOverrides:  overrides,
	}
}

// FromDomain populates the model from a domain ClientProfile
func (m *ClientProfileModel) FromDomain(p *pricing.ClientProfile) {
	m.FromTenantEntity(p.TenantEntity)
	m.Name = p.Name
	m.Type = p.Type
	m.OnboardingComplete = p.OnboardingComplete
	m.SellerDiscountPct = p.SellerDiscountPct
	m.Overrides = make([]CategoryOverrideModel, 0, len(p.CategoryOverrides))
	for cat, pct := range p.CategoryOverrides {
		m.Overrides = append(m.Overrides, CategoryOverrideModel{ClientID: p.ID, Category: cat, Pct: pct})
	}
}

// ClientProfileModelFromDomain creates a model from a domain ClientProfile
func ClientProfileModelFromDomain(p *pricing.ClientProfile) *ClientProfileModel {
	m := &ClientProfileModel{}
	m.FromDomain(p)
	return m
}
