package pricing

import (
	"context"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientType is the closed set of client kinds that drive discount tiers.
type ClientType string

const (
	ClientTypeADVEC          ClientType = "advec"
	ClientTypeChurch         ClientType = "church"
	ClientTypeReseller       ClientType = "reseller"
	ClientTypeRepresentative ClientType = "representative"
	ClientTypeOther          ClientType = "other"
)

// IsValid returns true if t is one of the known client types
func (t ClientType) IsValid() bool {
	switch t {
	case ClientTypeADVEC, ClientTypeChurch, ClientTypeReseller, ClientTypeRepresentative, ClientTypeOther:
		return true
	default:
		return false
	}
}

// ParseClientType accepts the tags used by the back office ("ADVEC",
// "IGREJA CNPJ", "revendedor", ...) and never fails: anything unknown is
// ClientTypeOther, which resolves to no discount.
func ParseClientType(s string) ClientType {
	switch Fold(s) {
	case "advec":
		return ClientTypeADVEC
	case "church", "igreja", "igreja cpf", "igreja cnpj", "igreja_cpf", "igreja_cnpj", "cpf", "cnpj":
		return ClientTypeChurch
	case "reseller", "revendedor", "revenda", "lojista":
		return ClientTypeReseller
	case "representative", "representante":
		return ClientTypeRepresentative
	default:
		return ClientTypeOther
	}
}

// ClientProfile is the persisted state read at checkout time.
type ClientProfile struct {
	shared.TenantEntity
	Name               string
	Type               ClientType
	OnboardingComplete bool
	SellerDiscountPct  decimal.Decimal
	CategoryOverrides  map[Category]decimal.Decimal
}

// NewClientProfile creates a profile with no discounts configured.
func NewClientProfile(tenantID uuid.UUID, name string, clientType ClientType) (*ClientProfile, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "client name is required")
	}
	if !clientType.IsValid() {
		clientType = ClientTypeOther
	}
	return &ClientProfile{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		Name:              name,
		Type:              clientType,
		SellerDiscountPct: decimal.Zero,
		CategoryOverrides: make(map[Category]decimal.Decimal),
	}, nil
}

// SetSellerDiscount assigns the seller's flat discount; zero disables it.
func (p *ClientProfile) SetSellerDiscount(pct decimal.Decimal) error {
	if err := valueobject.ValidatePercent(pct); err != nil {
		return shared.NewDomainError("INVALID_INPUT", "seller discount: "+err.Error())
	}
	p.SellerDiscountPct = pct
	p.Touch()
	return nil
}

// SetCategoryOverrides replaces the per-category discounts.
func (p *ClientProfile) SetCategoryOverrides(overrides map[Category]decimal.Decimal) error {
	next := make(map[Category]decimal.Decimal, len(overrides))
	for cat, pct := range overrides {
		if !cat.IsValid() {
			return shared.NewDomainError("INVALID_INPUT", "unknown category: "+string(cat))
		}
		if err := valueobject.ValidatePercent(pct); err != nil {
			return shared.NewDomainError("INVALID_INPUT", "category "+string(cat)+": "+err.Error())
		}
		next[cat] = pct
	}
	p.CategoryOverrides = next
	p.Touch()
	return nil
}

// CompleteOnboarding sets the one-time setup flag.
func (p *ClientProfile) CompleteOnboarding() {
	p.OnboardingComplete = true
	p.Touch()
}

// HasCategoryOverrides is true when at least one override is non-zero.
func (p ClientProfile) HasCategoryOverrides() bool {
	for _, pct := range p.CategoryOverrides {
		if pct.IsPositive() {
			return true
		}
	}
	return false
}

// OverrideFor returns the override for cat, zero when none is set.
func (p ClientProfile) OverrideFor(cat Category) decimal.Decimal {
	if pct, ok := p.CategoryOverrides[cat]; ok {
		return pct
	}
	return decimal.Zero
}

// ClientProfileRepository persists client profiles.
type ClientProfileRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ClientProfile, error)
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]ClientProfile, error)
	Save(ctx context.Context, profile *ClientProfile) error
}

// ErrClientNotFound is returned when the profile does not exist for the tenant.
var ErrClientNotFound = shared.NewDomainError("NOT_FOUND", "client profile not found")
