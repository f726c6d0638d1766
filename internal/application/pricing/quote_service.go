// Package pricing exposes discount quotes and client profile maintenance.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when a quote has no lines
var ErrEmptyCart = shared.NewDomainError("INVALID_INPUT", "cart has no items")

// QuoteService resolves the single discount policy for a cart
type QuoteService struct {
	profiles pricing.ClientProfileRepository
	resolver pricing.DiscountResolver
	logger   *zap.Logger
}

// NewQuoteService creates a QuoteService
func NewQuoteService(profiles pricing.ClientProfileRepository, resolver pricing.DiscountResolver, logger *zap.Logger) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{
		profiles: profiles,
		resolver: resolver,
		logger:   logger.Named("quote"),
	}
}

// Quote prices items for a stored client
func (s *QuoteService) Quote(ctx context.Context, tenantID, clientID uuid.UUID, items []pricing.LineItem) (*QuoteResult, error) {
	profile, err := s.profiles.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	return s.resolve(items, *profile)
}

// QuoteAnonymous prices items for a profile that is not stored, e.g. a
// prospective client at checkout.
func (s *QuoteService) QuoteAnonymous(_ context.Context, items []pricing.LineItem, profile pricing.ClientProfile) (*QuoteResult, error) {
	if !profile.Type.IsValid() {
		profile.Type = pricing.ClientTypeOther
	}
	return s.resolve(items, profile)
}

func (s *QuoteService) resolve(items []pricing.LineItem, profile pricing.ClientProfile) (*QuoteResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	result := s.resolver.Resolve(items, profile)
	s.logger.Debug("quote resolved",
		zap.String("client_type", string(profile.Type)),
		zap.String("policy", string(result.Policy)),
		zap.String("subtotal", result.Subtotal.StringFixed(2)),
		zap.String("discount_pct", result.DiscountPct.String()),
	)
	return &QuoteResult{
		DiscountResult: result,
		Items:          pricing.Classified(items),
	}, nil
}

// Classify returns the category for a product title
func (s *QuoteService) Classify(title string) pricing.Category {
	return pricing.Classify(title)
}

// ---------------------------------------------------------------------------
// Client profiles
// ---------------------------------------------------------------------------

// GetProfile loads a profile
func (s *QuoteService) GetProfile(ctx context.Context, tenantID, clientID uuid.UUID) (*pricing.ClientProfile, error) {
	return s.profiles.FindByID(ctx, tenantID, clientID)
}

// ListProfiles returns every profile of the tenant
func (s *QuoteService) ListProfiles(ctx context.Context, tenantID uuid.UUID) ([]pricing.ClientProfile, error) {
	return s.profiles.FindAll(ctx, tenantID)
}

// SaveProfile creates or updates the profile stored under clientID. Category
// overrides are left untouched.
func (s *QuoteService) SaveProfile(ctx context.Context, tenantID, clientID uuid.UUID, in ProfileInput) (*pricing.ClientProfile, error) {
	profile, err := s.profiles.FindByID(ctx, tenantID, clientID)
	switch {
	case errors.Is(err, pricing.ErrClientNotFound):
		profile, err = pricing.NewClientProfile(tenantID, in.Name, pricing.ParseClientType(in.Type))
		if err != nil {
			return nil, err
		}
		profile.ID = clientID
	case err != nil:
		return nil, err
	default:
		if in.Name != "" {
			profile.Name = in.Name
		}
		profile.Type = pricing.ParseClientType(in.Type)
	}

	if err := profile.SetSellerDiscount(in.SellerDiscountPct); err != nil {
		return nil, err
	}
	if in.OnboardingComplete {
		profile.CompleteOnboarding()
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info("client profile saved",
		zap.String("client_id", clientID.String()),
		zap.String("type", string(profile.Type)),
	)
	return profile, nil
}

// SetCategoryDiscounts replaces the per-category overrides of a stored client
func (s *QuoteService) SetCategoryDiscounts(ctx context.Context, tenantID, clientID uuid.UUID, overrides map[pricing.Category]decimal.Decimal) (*pricing.ClientProfile, error) {
	profile, err := s.profiles.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	if err := profile.SetCategoryOverrides(overrides); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
