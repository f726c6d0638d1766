package commission

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaveConfigInput sets the percentage for a product and kind
type SaveConfigInput struct {
	ProductID            string
	Kind                 commission.SaleKind
	Pct                  decimal.Decimal
	DefaultBeneficiaryID *uuid.UUID
}

// RecordSaleInput describes a sale to record. BeneficiaryID may be left
// empty when the config names a default beneficiary.
type RecordSaleInput struct {
	ProductID       string
	ProductTitle    string
	Kind            commission.SaleKind
	BeneficiaryID   uuid.UUID
	Quantity        int
	UnitPrice       decimal.Decimal
	ExternalOrderID string
}
