package integration

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Ports implemented by infrastructure adapters
// ---------------------------------------------------------------------------

// OrderPage is one page of remote orders
type OrderPage struct {
	Orders  []RemoteOrder
	HasMore bool
}

// InvoicePage is one page of remote invoices
type InvoicePage struct {
	Invoices []RemoteInvoice
	HasMore  bool
}

// Contact is an ERP customer record
type Contact struct {
	ID       string
	Name     string
	Document string
	Email    string
	Phone    string
}

// ERPGateway is the ERP (Bling) port
type ERPGateway interface {
	ListSalesOrders(ctx context.Context, tenantID uuid.UUID, page PageRequest) (*OrderPage, error)
	GetSalesOrder(ctx context.Context, tenantID uuid.UUID, externalID string) (*RemoteOrder, error)
	// CreateSalesOrder pushes an order into the ERP and returns its ERP id.
	CreateSalesOrder(ctx context.Context, tenantID uuid.UUID, order RemoteOrder, contactID string) (string, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, page PageRequest) (*InvoicePage, error)
	GetInvoice(ctx context.Context, tenantID uuid.UUID, externalID string) (*RemoteInvoice, error)
	FindContactByDocument(ctx context.Context, tenantID uuid.UUID, document string) (*Contact, error)
	CreateContact(ctx context.Context, tenantID uuid.UUID, contact Contact) (string, error)
	// DownloadInvoiceXML fetches the XML document behind an invoice link.
	DownloadInvoiceXML(ctx context.Context, tenantID uuid.UUID, xmlURL string) ([]byte, error)
}

// PreferenceRequest describes a single-item checkout
type PreferenceRequest struct {
	Title             string
	Quantity          int
	UnitPrice         decimal.Decimal
	ExternalReference string
	NotificationURL   string
}

// Preference is a created checkout
type Preference struct {
	ID        string
	InitPoint string
}

// PaymentGateway is the payment provider (Mercado Pago) port
type PaymentGateway interface {
	GetPayment(ctx context.Context, tenantID uuid.UUID, externalID string) (*RemotePayment, error)
	CreatePreference(ctx context.Context, tenantID uuid.UUID, req PreferenceRequest) (*Preference, error)
}

// Fulfillment is a Shopify fulfillment summary
type Fulfillment struct {
	ID              string
	Status          string
	TrackingCompany string
	TrackingNumber  string
	TrackingURL     string
}

// Metafield is a Shopify metafield
type Metafield struct {
	Namespace string
	Key       string
	Value     string
	Type      string
}

// CommerceGateway is the e-commerce (Shopify Admin) port
type CommerceGateway interface {
	GetOrder(ctx context.Context, tenantID uuid.UUID, orderID string) (*RemoteOrder, error)
	ListFulfillments(ctx context.Context, tenantID uuid.UUID, orderID string) ([]Fulfillment, error)
	GetMetafields(ctx context.Context, tenantID uuid.UUID, ownerResource, ownerID string) ([]Metafield, error)
}

// ObjectStorage archives documents such as NF-e XML
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// StorefrontProduct is a product as exposed to buyers
type StorefrontProduct struct {
	ID        string
	Handle    string
	Title     string
	VariantID string
	Price     decimal.Decimal
	Available bool
}

// ProductPage is one cursor page of storefront products
type ProductPage struct {
	Products  []StorefrontProduct
	EndCursor string
	HasMore   bool
}

// CartLine is one variant and quantity to put in a cart
type CartLine struct {
	VariantID string
	Quantity  int
}

// Cart is a created storefront cart
type Cart struct {
	ID          string
	CheckoutURL string
}

// Storefront is the buyer-facing catalogue and cart port (Shopify Storefront)
type Storefront interface {
	ListProducts(ctx context.Context, first int, after string) (*ProductPage, error)
	CreateCart(ctx context.Context, lines []CartLine) (*Cart, error)
}
