package commission

import (
	"errors"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
)

var (
	ErrCommissionConfigNotFound = shared.NewDomainError("DATA_INTEGRITY", "commission: no commission config for product")
	ErrSaleNotFound             = shared.NewDomainError("NOT_FOUND", "commission: sale not found")
	ErrPayoutNotFound           = shared.NewDomainError("NOT_FOUND", "commission: payout batch not found")
	ErrSaleAlreadyBatched       = shared.NewDomainError("CONFLICT", "commission: sale already belongs to an open payout batch")
	ErrPayoutModified           = shared.NewDomainError("CONFLICT", "commission: payout batch changed since it was loaded")

	ErrInvalidQuantity    = errors.New("commission: quantity must be positive")
	ErrInvalidUnitPrice   = errors.New("commission: unit price cannot be negative")
	ErrInvalidPercent     = errors.New("commission: percentage must be between 0 and 100")
	ErrInvalidKind        = errors.New("commission: invalid sale kind")
	ErrMissingBeneficiary = errors.New("commission: beneficiary is required")
	ErrMissingProduct     = errors.New("commission: product is required")
	ErrEmptyPayout        = errors.New("commission: payout batch needs at least one sale")
	ErrMixedBeneficiaries = errors.New("commission: all sales in a batch must belong to the same beneficiary")
)
