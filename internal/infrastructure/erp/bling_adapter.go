// Package erp adapts the Bling ERP API v3 to the integration ports.
package erp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/provider"
)

// BlingBaseURL is the production API root
const BlingBaseURL = "https://api.bling.com.br/Api/v3"

// ErrBlingInvalidID indicates a non-numeric Bling id
var ErrBlingInvalidID = errors.New("bling: invalid id")

// BlingAdapter implements integration.ERPGateway against Bling API v3.
// Authentication, pacing and retries live in the provider client.
type BlingAdapter struct {
	client *provider.Client
}

// NewBlingAdapter creates a Bling adapter over a configured provider client
func NewBlingAdapter(client *provider.Client) *BlingAdapter {
	return &BlingAdapter{client: client}
}

func validateBlingID(id string) error {
	if id == "" {
		return ErrBlingInvalidID
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return fmt.Errorf("%w: %s", ErrBlingInvalidID, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Sales orders
// ---------------------------------------------------------------------------

// ListSalesOrders fetches one page of sales orders. Bling reports no totals,
// so HasMore is true whenever the page came back full.
func (a *BlingAdapter) ListSalesOrders(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.OrderPage, error) {
	page = page.Normalize()
	q := url.Values{}
	q.Set("pagina", strconv.Itoa(page.PageNumber()))
	q.Set("limite", strconv.Itoa(page.Limit))
	if page.Since != nil {
		q.Set("dataAlteracaoInicial", page.Since.In(saoPaulo).Format("2006-01-02 15:04:05"))
	}

	var resp blingListResponse[blingPedido]
	if err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     "/pedidos/vendas",
		Query:    q,
	}, &resp); err != nil {
		return nil, err
	}

	out := &integration.OrderPage{
		Orders:  make([]integration.RemoteOrder, 0, len(resp.Data)),
		HasMore: len(resp.Data) >= page.Limit,
	}
	for _, p := range resp.Data {
		out.Orders = append(out.Orders, convertBlingPedido(p))
	}
	return out, nil
}

// GetSalesOrder fetches one sales order with its items
func (a *BlingAdapter) GetSalesOrder(ctx context.Context, tenantID uuid.UUID, externalID string) (*integration.RemoteOrder, error) {
	if err := validateBlingID(externalID); err != nil {
		return nil, err
	}
	var resp blingItemResponse[blingPedido]
	err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     "/pedidos/vendas/" + externalID,
	}, &resp)
	if provider.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", integration.ErrOrderNotFound, externalID)
	}
	if err != nil {
		return nil, err
	}
	order := convertBlingPedido(resp.Data)
	return &order, nil
}

// CreateSalesOrder pushes an order into Bling for an existing contact
func (a *BlingAdapter) CreateSalesOrder(ctx context.Context, tenantID uuid.UUID, order integration.RemoteOrder, contactID string) (string, error) {
	if err := validateBlingID(contactID); err != nil {
		return "", err
	}
	if len(order.Items) == 0 {
		return "", fmt.Errorf("%w: order %s has no items", integration.ErrPlatformRequestFailed, order.ExternalID)
	}
	cid, _ := strconv.ParseInt(contactID, 10, 64)

	placed := time.Now()
	if order.PlacedAt != nil {
		placed = *order.PlacedAt
	}
	body := blingPedido{
		NumeroLoja:  order.Number,
		Data:        blingDate{Time: placed},
		Contato:     blingContato{ID: cid},
		Observacoes: "Pedido " + order.ExternalID,
		Itens:       make([]blingPedidoItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		body.Itens = append(body.Itens, blingPedidoItem{
			Codigo:     item.SKU,
			Descricao:  item.Title,
			Quantidade: json.Number(strconv.Itoa(item.Quantity)),
			Valor:      json.Number(item.UnitPrice.StringFixed(2)),
			Unidade:    "UN",
		})
	}

	var resp blingIDResponse
	if err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodPost,
		Path:     "/pedidos/vendas",
		Body:     body,
	}, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == 0 {
		return "", fmt.Errorf("%w: sales order id missing", integration.ErrPlatformInvalidResponse)
	}
	return strconv.FormatInt(resp.Data.ID, 10), nil
}

func convertBlingPedido(p blingPedido) integration.RemoteOrder {
	var situacao int64
	if p.Situacao != nil {
		situacao = p.Situacao.ID
	}
	status, state := mapBlingOrderStatus(situacao)

	order := integration.RemoteOrder{
		ExternalID:       strconv.FormatInt(p.ID, 10),
		Number:           strconv.FormatInt(p.Numero, 10),
		ProviderStatus:   status,
		State:            state,
		CustomerName:     p.Contato.Nome,
		CustomerDocument: onlyDigits(p.Contato.NumeroDocumento),
		CustomerEmail:    p.Contato.Email,
		PlacedAt:         p.Data.ptr(),
	}
	if p.Total != nil {
		order.Total = *p.Total
	}
	for _, it := range p.Itens {
		qty, _ := decimal.NewFromString(it.Quantidade.String())
		price, _ := decimal.NewFromString(it.Valor.String())
		order.Items = append(order.Items, integration.RemoteOrderItem{
			SKU:       it.Codigo,
			Title:     it.Descricao,
			Quantity:  int(qty.IntPart()),
			UnitPrice: price,
		})
	}
	return order
}

// ---------------------------------------------------------------------------
// NF-e
// ---------------------------------------------------------------------------

// ListInvoices fetches one page of NF-e
func (a *BlingAdapter) ListInvoices(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.InvoicePage, error) {
	page = page.Normalize()
	q := url.Values{}
	q.Set("pagina", strconv.Itoa(page.PageNumber()))
	q.Set("limite", strconv.Itoa(page.Limit))
	if page.Since != nil {
		q.Set("dataEmissaoInicial", page.Since.In(saoPaulo).Format("2006-01-02 15:04:05"))
	}

	var resp blingListResponse[blingNFe]
	if err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     "/nfe",
		Query:    q,
	}, &resp); err != nil {
		return nil, err
	}

	out := &integration.InvoicePage{
		Invoices: make([]integration.RemoteInvoice, 0, len(resp.Data)),
		HasMore:  len(resp.Data) >= page.Limit,
	}
	for _, n := range resp.Data {
		out.Invoices = append(out.Invoices, convertBlingNFe(n))
	}
	return out, nil
}

// GetInvoice fetches one NF-e
func (a *BlingAdapter) GetInvoice(ctx context.Context, tenantID uuid.UUID, externalID string) (*integration.RemoteInvoice, error) {
	if err := validateBlingID(externalID); err != nil {
		return nil, err
	}
	var resp blingItemResponse[blingNFe]
	err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     "/nfe/" + externalID,
	}, &resp)
	if provider.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", integration.ErrInvoiceNotFound, externalID)
	}
	if err != nil {
		return nil, err
	}
	inv := convertBlingNFe(resp.Data)
	return &inv, nil
}

// DownloadInvoiceXML fetches the XML behind an NF-e link
func (a *BlingAdapter) DownloadInvoiceXML(ctx context.Context, tenantID uuid.UUID, xmlURL string) ([]byte, error) {
	if !strings.HasPrefix(xmlURL, "https://") && !strings.HasPrefix(xmlURL, "http://") {
		return nil, fmt.Errorf("%w: invalid xml link", integration.ErrPlatformInvalidResponse)
	}
	resp, err := a.client.Do(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     xmlURL,
		Header:   http.Header{"Accept": []string{"application/xml"}},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func convertBlingNFe(n blingNFe) integration.RemoteInvoice {
	status, state := mapBlingNFeStatus(n.Situacao)
	inv := integration.RemoteInvoice{
		ExternalID:     strconv.FormatInt(n.ID, 10),
		Number:         n.Numero,
		Series:         n.Serie,
		AccessKey:      n.ChaveAcesso,
		ProviderStatus: status,
		State:          state,
		Total:          n.ValorNota,
		IssuedAt:       n.DataEmissao.ptr(),
		XMLURL:         n.XML,
	}
	if n.Pedido != nil && n.Pedido.ID != 0 {
		inv.OrderExternalID = strconv.FormatInt(n.Pedido.ID, 10)
	}
	return inv
}

// ---------------------------------------------------------------------------
// Contacts
// ---------------------------------------------------------------------------

// FindContactByDocument looks a contact up by CPF/CNPJ. A missing contact
// returns (nil, nil).
func (a *BlingAdapter) FindContactByDocument(ctx context.Context, tenantID uuid.UUID, document string) (*integration.Contact, error) {
	doc := onlyDigits(document)
	if doc == "" {
		return nil, nil
	}
	var resp blingListResponse[blingContato]
	if err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     "/contatos",
		Query:    url.Values{"numeroDocumento": []string{doc}},
	}, &resp); err != nil {
		return nil, err
	}
	for _, c := range resp.Data {
		if onlyDigits(c.NumeroDocumento) == doc {
			return convertBlingContato(c), nil
		}
	}
	return nil, nil
}

// CreateContact creates a contact and returns its id
func (a *BlingAdapter) CreateContact(ctx context.Context, tenantID uuid.UUID, contact integration.Contact) (string, error) {
	doc := onlyDigits(contact.Document)
	tipo := "F"
	if len(doc) == 14 {
		tipo = "J"
	}
	body := blingContato{
		Nome:            contact.Name,
		NumeroDocumento: doc,
		Email:           contact.Email,
		Celular:         contact.Phone,
		Tipo:            tipo,
		Situacao:        "A",
	}
	var resp blingIDResponse
	if err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodPost,
		Path:     "/contatos",
		Body:     body,
	}, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == 0 {
		return "", fmt.Errorf("%w: contact id missing", integration.ErrPlatformInvalidResponse)
	}
	return strconv.FormatInt(resp.Data.ID, 10), nil
}

func convertBlingContato(c blingContato) *integration.Contact {
	phone := c.Celular
	if phone == "" {
		phone = c.Telefone
	}
	return &integration.Contact{
		ID:       strconv.FormatInt(c.ID, 10),
		Name:     c.Nome,
		Document: onlyDigits(c.NumeroDocumento),
		Email:    c.Email,
		Phone:    phone,
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var _ integration.ERPGateway = (*BlingAdapter)(nil)
