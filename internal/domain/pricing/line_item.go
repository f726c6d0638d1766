package pricing

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one cart line. It is built per calculation and never stored.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Category  Category        `json:"category"`
}

// Subtotal returns unit price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validate rejects negative prices and non-positive quantities.
func (l LineItem) Validate() error {
	if l.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "unit price cannot be negative")
	}
	if l.Quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "quantity must be positive")
	}
	return nil
}

// Classified returns a copy of items with empty or unknown categories filled
// in from the title.
func Classified(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		if !item.Category.IsValid() {
			item.Category = Classify(item.Title)
		}
		out[i] = item
	}
	return out
}

// Subtotal sums the undiscounted value of items.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
