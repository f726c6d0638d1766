package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the local copy of an NF-e issued through the ERP.
type Invoice struct {
	shared.TenantEntity
	Provider        Provider
	ExternalID      string
	Number          string
	Series          string
	AccessKey       string
	ProviderStatus  string
	State           SyncState
	Total           decimal.Decimal
	IssuedAt        *time.Time
	XMLURL          string
	ArchiveKey      string
	OrderExternalID string
	LastError       string
	SyncedAt        time.Time
}

// RemoteInvoice is a provider-neutral view of an NF-e as fetched
type RemoteInvoice struct {
	ExternalID      string
	Number          string
	Series          string
	AccessKey       string
	ProviderStatus  string
	State           SyncState
	Total           decimal.Decimal
	IssuedAt        *time.Time
	XMLURL          string
	OrderExternalID string
}

// NewInvoice creates a local copy from a fetched invoice
func NewInvoice(tenantID uuid.UUID, provider Provider, remote RemoteInvoice) (*Invoice, error) {
	if remote.ExternalID == "" {
		return nil, ErrMissingExternalID
	}
	inv := &Invoice{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Provider:     provider,
		ExternalID:   remote.ExternalID,
	}
	inv.Apply(remote)
	return inv, nil
}

// Apply merges a fetched invoice into the local copy, honouring the state machine.
func (i *Invoice) Apply(remote RemoteInvoice) {
	i.Number = remote.Number
	i.Series = remote.Series
	i.AccessKey = remote.AccessKey
	i.ProviderStatus = remote.ProviderStatus
	i.State = i.State.Reconcile(remote.State)
	i.Total = remote.Total
	i.IssuedAt = remote.IssuedAt
	if remote.XMLURL != "" {
		i.XMLURL = remote.XMLURL
	}
	i.OrderExternalID = remote.OrderExternalID
	i.LastError = ""
	i.SyncedAt = time.Now().UTC()
	i.Touch()
}

// NeedsArchive is true for authorized invoices with an XML not yet archived.
func (i *Invoice) NeedsArchive() bool {
	return i.State == SyncStateAuthorized && i.XMLURL != "" && i.ArchiveKey == ""
}

// ArchivePath is the object key the NF-e XML is stored under.
func (i *Invoice) ArchivePath() string {
	name := i.Number
	if name == "" {
		name = i.ExternalID
	}
	return fmt.Sprintf("nfe/%s/%s.xml", i.TenantID, name)
}

// InvoiceRepository persists local invoice copies
type InvoiceRepository interface {
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, provider Provider, externalID string) (*Invoice, error)
	Upsert(ctx context.Context, invoice *Invoice) error
}
