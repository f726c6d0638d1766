package integration

import (
	"context"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
)

const (
	defaultProductsPerPage = 20
	maxProductsPerPage     = 100
)

// StorefrontService exposes the buyer-facing catalogue and cart
type StorefrontService struct {
	storefront integration.Storefront
}

// NewStorefrontService creates a StorefrontService. A nil storefront makes
// every call return ErrProviderNotConfigured.
func NewStorefrontService(storefront integration.Storefront) *StorefrontService {
	return &StorefrontService{storefront: storefront}
}

// ListProducts returns one cursor page of products
func (s *StorefrontService) ListProducts(ctx context.Context, first int, after string) (*integration.ProductPage, error) {
	if s.storefront == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if first <= 0 {
		first = defaultProductsPerPage
	}
	return s.storefront.ListProducts(ctx, min(first, maxProductsPerPage), after)
}

// CreateCart creates a cart and returns its checkout URL
func (s *StorefrontService) CreateCart(ctx context.Context, lines []integration.CartLine) (*integration.Cart, error) {
	if s.storefront == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "cart needs at least one line")
	}
	for _, l := range lines {
		if l.VariantID == "" || l.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "every cart line needs a variant and a positive quantity")
		}
	}
	return s.storefront.CreateCart(ctx, lines)
}
