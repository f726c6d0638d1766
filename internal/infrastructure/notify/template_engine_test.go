package notify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
)

func TestTemplateEngine_OrderConfirmation(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	out, err := engine.Render(messaging.TemplateOrderConfirmation, messaging.OrderConfirmation{
		CustomerName: "Igreja <Central>",
		OrderNumber:  "1001",
		Items: []messaging.OrderLine{
			{Title: "Revista EBD Aluno", Quantity: 100, UnitPrice: decimal.RequireFromString("12.3456"), Total: decimal.RequireFromString("1234.56")},
		},
		Subtotal:    decimal.RequireFromString("1234.56"),
		Discount:    decimal.RequireFromString("123.46"),
		Total:       decimal.RequireFromString("1111.10"),
		CheckoutURL: "https://mpago.la/abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "Pedido 1001 confirmado", out.Subject)
	assert.Contains(t, out.HTML, "R$ 1.234,56")
	assert.Contains(t, out.HTML, "Desconto: R$ 123,46")
	assert.Contains(t, out.HTML, `href="https://mpago.la/abc"`)
	assert.Contains(t, out.HTML, "Igreja &lt;Central&gt;")
	assert.Contains(t, out.Text, "- 100 x Revista EBD Aluno: R$ 1.234,56")
	assert.Contains(t, out.Text, "Total: R$ 1.111,10")
}

func TestTemplateEngine_OmitsZeroDiscount(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	out, err := engine.Render(messaging.TemplateOrderConfirmation, messaging.OrderConfirmation{
		OrderNumber: "1002",
		Total:       decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.NotContains(t, out.HTML, "Desconto")
	assert.Contains(t, out.HTML, "Olá, cliente!")
}

func TestTemplateEngine_PayoutPaid(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	out, err := engine.Render(messaging.TemplatePayoutPaid, messaging.PayoutPaid{
		BeneficiaryName: "JOÃO DA SILVA",
		Amount:          decimal.RequireFromString("2500"),
		SaleCount:       4,
		PaidAt:          time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "Seu resgate de R$ 2.500,00 foi pago", out.Subject)
	assert.Contains(t, out.Text, "Olá, João Da Silva!")
	assert.Contains(t, out.Text, "10/03/2026")
}

func TestTemplateEngine_InvoiceIssued(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	out, err := engine.Render(messaging.TemplateInvoiceIssued, messaging.InvoiceIssued{
		InvoiceNumber: "000123",
		Series:        "1",
		AccessKey:     "35260112345678000199550010000001231000001234",
		Total:         decimal.RequireFromString("89.9"),
		IssuedAt:      time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "NF-e 000123 emitida", out.Subject)
	assert.Contains(t, out.HTML, "série 1")
	assert.Contains(t, out.Text, "Valor: R$ 89,90")
	assert.NotContains(t, out.Text, "XML:")
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	engine, err := NewTemplateEngine()
	require.NoError(t, err)

	_, err = engine.Render("boleto", nil)
	assert.ErrorIs(t, err, messaging.ErrUnknownTemplate)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12,5%", formatPercent(decimal.RequireFromString("12.5")))
	assert.Equal(t, "30%", formatPercent(decimal.NewFromInt(30)))
}
