package pricing

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// QuoteResult is a resolved discount plus the classified lines it was computed on
type QuoteResult struct {
	pricing.DiscountResult
	Items []pricing.LineItem `json:"items"`
}

// ProfileInput is the writable part of a client profile
type ProfileInput struct {
	Name               string
	Type               string
	OnboardingComplete bool
	SellerDiscountPct  decimal.Decimal
}
