package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider identifies an external system
type Provider string

const (
	ProviderBling       Provider = "bling"
	ProviderShopify     Provider = "shopify"
	ProviderMercadoPago Provider = "mercadopago"

	// Messaging providers authenticate with static keys and never hold
	// tenant tokens.
	ProviderResend   Provider = "resend"
	ProviderWhatsApp Provider = "whatsapp"
)

// IsValid returns true if the provider is a tenant-connectable one
func (p Provider) IsValid() bool {
	switch p {
	case ProviderBling, ProviderShopify, ProviderMercadoPago:
		return true
	default:
		return false
	}
}

// String returns the string representation of Provider
func (p Provider) String() string {
	return string(p)
}

// RefreshBuffer is how long before expiry a token is already treated as expired.
const RefreshBuffer = 5 * time.Minute

// ProviderToken is the stored OAuth pair for one tenant and provider.
type ProviderToken struct {
	TenantID     uuid.UUID
	Provider     Provider
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// NeedsRefresh reports whether the token is expired or within RefreshBuffer of expiring.
func (t ProviderToken) NeedsRefresh(now time.Time) bool {
	return !now.Before(t.ExpiresAt.Add(-RefreshBuffer))
}

// TokenRepository persists provider tokens, one row per tenant+provider.
type TokenRepository interface {
	Find(ctx context.Context, tenantID uuid.UUID, provider Provider) (*ProviderToken, error)
	Save(ctx context.Context, token *ProviderToken) error
	ListTenants(ctx context.Context, provider Provider) ([]uuid.UUID, error)
}

// TokenSource hands out a valid access token for a tenant.
type TokenSource interface {
	AccessToken(ctx context.Context, tenantID uuid.UUID, provider Provider) (string, error)
	// ForceRefresh replaces rejected, the access token that just got a 401.
	// When another caller already rotated it the stored token is returned
	// without a new exchange.
	ForceRefresh(ctx context.Context, tenantID uuid.UUID, provider Provider, rejected string) (string, error)
}
