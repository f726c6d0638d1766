package pricing

import (
	domain "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// ChainResolver evaluates rules in order and returns the first match.
// Rules never stack.
type ChainResolver struct {
	rules []domain.DiscountRule
}

var _ domain.DiscountResolver = (*ChainResolver)(nil)

// NewChainResolver creates a resolver over the given ordered rules
func NewChainResolver(rules ...domain.DiscountRule) *ChainResolver {
	return &ChainResolver{rules: rules}
}

// ResolverOptions configures NewDefaultResolver
type ResolverOptions struct {
	// RepresentativePct enables the representative rule when positive.
	RepresentativePct decimal.Decimal
}

// NewDefaultResolver returns the standard priority order:
// category > seller > ADVEC > setup > reseller > representative > none.
func NewDefaultResolver(opts ResolverOptions) *ChainResolver {
	return NewChainResolver(
		NewCategoryOverrideRule(),
		NewSellerDiscountRule(),
		NewADVECRule(),
		NewSetupRule(),
		NewResellerRule(),
		NewRepresentativeRule(opts.RepresentativePct),
	)
}

// Rules returns the rule names in evaluation order
func (r *ChainResolver) Rules() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name()
	}
	return names
}

// Resolve implements domain.DiscountResolver
func (r *ChainResolver) Resolve(items []domain.LineItem, profile domain.ClientProfile) domain.DiscountResult {
	in := domain.NewDiscountInput(items, profile)
	for _, rule := range r.rules {
		if rule.Matches(in) {
			return rule.Apply(in)
		}
	}
	return domain.NoDiscount(in.Items)
}
