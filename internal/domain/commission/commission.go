package commission

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Commission is the result of Compute. Values are exact; callers round to
// cents only when presenting them.
type Commission struct {
	PerUnit decimal.Decimal `json:"per_unit"`
	Total   decimal.Decimal `json:"total"`
}

// Compute returns unitPrice*pct/100 per unit and that times quantity.
// The same arithmetic serves reseller commissions and author royalties.
func Compute(unitPrice, pct decimal.Decimal, quantity int) Commission {
	perUnit := valueobject.Percentage(unitPrice, pct)
	return Commission{
		PerUnit: perUnit,
		Total:   perUnit.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
