package messaging

import (
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrUnknownTemplate is returned for a template name the renderer does not ship
var ErrUnknownTemplate = shared.NewDomainError("INVALID_INPUT", "messaging: unknown template")

// TemplateName identifies a transactional template
type TemplateName string

const (
	TemplateOrderConfirmation TemplateName = "order_confirmation"
	TemplatePayoutPaid        TemplateName = "payout_paid"
	TemplateInvoiceIssued     TemplateName = "invoice_issued"
)

// IsValid returns true for shipped templates
func (n TemplateName) IsValid() bool {
	switch n {
	case TemplateOrderConfirmation, TemplatePayoutPaid, TemplateInvoiceIssued:
		return true
	default:
		return false
	}
}

// Rendered is a template expanded for one recipient
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer expands named templates
type Renderer interface {
	Render(name TemplateName, data any) (*Rendered, error)
}

// OrderLine is one row of an order confirmation
type OrderLine struct {
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// OrderConfirmation feeds TemplateOrderConfirmation
type OrderConfirmation struct {
	CustomerName string          `json:"customer_name"`
	OrderNumber  string          `json:"order_number"`
	Items        []OrderLine     `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	CheckoutURL  string          `json:"checkout_url"`
}

// PayoutPaid feeds TemplatePayoutPaid
type PayoutPaid struct {
	BeneficiaryName string          `json:"beneficiary_name"`
	Amount          decimal.Decimal `json:"amount"`
	SaleCount       int             `json:"sale_count"`
	PaidAt          time.Time       `json:"paid_at"`
}

// InvoiceIssued feeds TemplateInvoiceIssued
type InvoiceIssued struct {
	CustomerName  string          `json:"customer_name"`
	InvoiceNumber string          `json:"invoice_number"`
	Series        string          `json:"series"`
	AccessKey     string          `json:"access_key"`
	Total         decimal.Decimal `json:"total"`
	IssuedAt      time.Time       `json:"issued_at"`
	DownloadURL   string          `json:"download_url"`
}
