package integration

import (
	"context"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ERPOrder is the local copy of an order held by Bling or Shopify, keyed by
// (tenant, provider, external id).
type ERPOrder struct {
	shared.TenantEntity
	Provider         Provider
	ExternalID       string
	Number           string
	ProviderStatus   string
	State            SyncState
	CustomerName     string
	CustomerDocument string
	CustomerEmail    string
	Total            decimal.Decimal
	PlacedAt         *time.Time
	// ERPOrderID is the Bling id once a Shopify order has been pushed.
	ERPOrderID string
	LastError  string
	SyncedAt   time.Time
}

// RemoteOrder is a provider-neutral view of an order as fetched
type RemoteOrder struct {
	ExternalID       string
	Number           string
	ProviderStatus   string
	State            SyncState
	CustomerName     string
	CustomerDocument string
	CustomerEmail    string
	Total            decimal.Decimal
	PlacedAt         *time.Time
	Items            []RemoteOrderItem
}

// RemoteOrderItem is one product line of a RemoteOrder
type RemoteOrderItem struct {
	SKU       string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Apply merges a fetched order into the local copy, honouring the state machine.
func (o *ERPOrder) Apply(remote RemoteOrder) {
	o.Number = remote.Number
	o.ProviderStatus = remote.ProviderStatus
	o.State = o.State.Reconcile(remote.State)
	o.CustomerName = remote.CustomerName
	o.CustomerDocument = remote.CustomerDocument
	o.CustomerEmail = remote.CustomerEmail
	o.Total = remote.Total
	o.PlacedAt = remote.PlacedAt
	o.LastError = ""
	o.SyncedAt = time.Now().UTC()
	o.Touch()
}

// NewERPOrder creates a local copy from a fetched order
func NewERPOrder(tenantID uuid.UUID, provider Provider, remote RemoteOrder) (*ERPOrder, error) {
	if remote.ExternalID == "" {
		return nil, ErrMissingExternalID
	}
	o := &ERPOrder{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Provider:     provider,
		ExternalID:   remote.ExternalID,
	}
	o.Apply(remote)
	return o, nil
}

// OrderFilter narrows order listing
type OrderFilter struct {
	Provider Provider
	State    SyncState
	Offset   int
	Limit    int
}

// ERPOrderRepository persists local order copies
type ERPOrderRepository interface {
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, provider Provider, externalID string) (*ERPOrder, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]ERPOrder, int64, error)
	// Upsert inserts or overwrites the row for (tenant, provider, external id).
	Upsert(ctx context.Context, order *ERPOrder) error
}
