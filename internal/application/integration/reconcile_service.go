// Package integration reconciles local copies of orders, NF-e invoices and
// payments with Bling, Shopify and Mercado Pago.
package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDownloadTTL is how long a presigned NF-e XML link stays valid
const DefaultDownloadTTL = 15 * time.Minute

// URLSigner issues time-limited download links for archived objects
type URLSigner interface {
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ReconcileService pulls one bounded page per call from a provider and
// upserts each item into the local copy. It never loops over pages itself;
// the scheduler or the caller continues with NextCursor.
type ReconcileService struct {
	erp         integration.ERPGateway
	payments    integration.PaymentGateway
	orders      integration.ERPOrderRepository
	invoices    integration.InvoiceRepository
	paymentRepo integration.PaymentRepository
	archive     integration.ObjectStorage
	signer      URLSigner
	downloadTTL time.Duration
	logger      *zap.Logger
}

// ReconcileConfig wires a ReconcileService. ERP and Payments may be nil when
// the provider is disabled; Archive and Signer are optional.
type ReconcileConfig struct {
	ERP         integration.ERPGateway
	Payments    integration.PaymentGateway
	Orders      integration.ERPOrderRepository
	Invoices    integration.InvoiceRepository
	PaymentRepo integration.PaymentRepository
	Archive     integration.ObjectStorage
	Signer      URLSigner
	DownloadTTL time.Duration
	Logger      *zap.Logger
}

// NewReconcileService creates a ReconcileService
func NewReconcileService(cfg ReconcileConfig) *ReconcileService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.DownloadTTL
	if ttl <= 0 {
		ttl = DefaultDownloadTTL
	}
	return &ReconcileService{
		erp:         cfg.ERP,
		payments:    cfg.Payments,
		orders:      cfg.Orders,
		invoices:    cfg.Invoices,
		paymentRepo: cfg.PaymentRepo,
		archive:     cfg.Archive,
		signer:      cfg.Signer,
		downloadTTL: ttl,
		logger:      logger.Named("reconcile"),
	}
}

// ---------------------------------------------------------------------------
// ERP orders
// ---------------------------------------------------------------------------

// SyncOrders reconciles one page of Bling sales orders
func (s *ReconcileService) SyncOrders(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error) {
	if s.erp == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	page = page.Normalize()
	list, err := s.erp.ListSalesOrders(ctx, tenantID, page)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	result := integration.NewSyncResult()
	for _, summary := range list.Orders {
		if err := s.syncOrder(ctx, tenantID, summary.ExternalID); err != nil {
			s.logger.Warn("order sync failed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", summary.ExternalID),
				zap.Error(err))
			result.AddFailure(summary.ExternalID, err)
			continue
		}
		result.AddSuccess()
	}
	return finishPage(result, list.HasMore, strconv.Itoa(page.PageNumber()+1), -1), nil
}

func (s *ReconcileService) syncOrder(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	if externalID == "" {
		return integration.ErrMissingExternalID
	}
	remote, err := s.erp.GetSalesOrder(ctx, tenantID, externalID)
	if err != nil {
		s.markOrderError(ctx, tenantID, externalID, err)
		return err
	}
	_, err = s.upsertOrder(ctx, tenantID, integration.ProviderBling, *remote)
	return err
}

// upsertOrder loads the existing copy so the state machine sees the stored
// state, then writes the merged row.
func (s *ReconcileService) upsertOrder(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, remote integration.RemoteOrder) (*integration.ERPOrder, error) {
	order, err := s.orders.FindByExternalID(ctx, tenantID, provider, remote.ExternalID)
	switch {
	case errors.Is(err, integration.ErrOrderNotFound):
		order, err = integration.NewERPOrder(tenantID, provider, remote)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		order.Apply(remote)
	}
	if err := s.orders.Upsert(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *ReconcileService) markOrderError(ctx context.Context, tenantID uuid.UUID, externalID string, cause error) {
	order, err := s.orders.FindByExternalID(ctx, tenantID, integration.ProviderBling, externalID)
	if err != nil || order.State.IsTerminal() {
		return
	}
	order.State = order.State.Reconcile(integration.SyncStateError)
	order.LastError = cause.Error()
	if err := s.orders.Upsert(ctx, order); err != nil {
		s.logger.Error("failed to record order error", zap.String("external_id", externalID), zap.Error(err))
	}
}

// ListOrders returns local order copies
func (s *ReconcileService) ListOrders(ctx context.Context, tenantID uuid.UUID, filter integration.OrderFilter) (*OrderList, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = integration.DefaultPageSize
	}
	filter.Limit = min(filter.Limit, integration.MaxPageSize)
	orders, total, err := s.orders.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return &OrderList{Orders: orders, Total: total, Offset: filter.Offset, Limit: filter.Limit}, nil
}

// ---------------------------------------------------------------------------
// NF-e invoices
// ---------------------------------------------------------------------------

// SyncInvoices reconciles one page of Bling NF-e and archives the XML of
// newly authorized ones
func (s *ReconcileService) SyncInvoices(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error) {
	if s.erp == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	page = page.Normalize()
	list, err := s.erp.ListInvoices(ctx, tenantID, page)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	result := integration.NewSyncResult()
	for _, summary := range list.Invoices {
		if err := s.syncInvoice(ctx, tenantID, summary.ExternalID); err != nil {
			s.logger.Warn("invoice sync failed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", summary.ExternalID),
				zap.Error(err))
			result.AddFailure(summary.ExternalID, err)
			continue
		}
		result.AddSuccess()
	}
	return finishPage(result, list.HasMore, strconv.Itoa(page.PageNumber()+1), -1), nil
}

func (s *ReconcileService) syncInvoice(ctx context.Context, tenantID uuid.UUID, externalID string) error {
	if externalID == "" {
		return integration.ErrMissingExternalID
	}
	remote, err := s.erp.GetInvoice(ctx, tenantID, externalID)
	if err != nil {
		return err
	}

	inv, err := s.invoices.FindByExternalID(ctx, tenantID, integration.ProviderBling, externalID)
	switch {
	case errors.Is(err, integration.ErrInvoiceNotFound):
		inv, err = integration.NewInvoice(tenantID, integration.ProviderBling, *remote)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		inv.Apply(*remote)
	}

	var archiveErr error
	if s.archive != nil && inv.NeedsArchive() {
		if archiveErr = s.archiveXML(ctx, inv); archiveErr != nil {
			inv.LastError = archiveErr.Error()
		}
	}
	if err := s.invoices.Upsert(ctx, inv); err != nil {
		return err
	}
	return archiveErr
}

func (s *ReconcileService) archiveXML(ctx context.Context, inv *integration.Invoice) error {
	body, err := s.erp.DownloadInvoiceXML(ctx, inv.TenantID, inv.XMLURL)
	if err != nil {
		return fmt.Errorf("%w: download: %w", integration.ErrArchiveFailed, err)
	}
	key := inv.ArchivePath()
	if err := s.archive.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "application/xml"); err != nil {
		return fmt.Errorf("%w: upload: %w", integration.ErrArchiveFailed, err)
	}
	inv.ArchiveKey = key
	s.logger.Info("nf-e archived",
		zap.String("tenant_id", inv.TenantID.String()),
		zap.String("number", inv.Number),
		zap.String("key", key))
	return nil
}

// InvoiceDownloadURL returns a presigned link to the archived XML. Invoices
// that are not archived yet are reported as not found.
func (s *ReconcileService) InvoiceDownloadURL(ctx context.Context, tenantID uuid.UUID, externalID string) (*InvoiceDownload, error) {
	if s.signer == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	inv, err := s.invoices.FindByExternalID(ctx, tenantID, integration.ProviderBling, externalID)
	if err != nil {
		return nil, err
	}
	if inv.ArchiveKey == "" {
		return nil, fmt.Errorf("%w: xml not archived yet", integration.ErrInvoiceNotFound)
	}
	url, expiresAt, err := s.signer.GenerateDownloadURL(ctx, inv.ArchiveKey, s.downloadTTL)
	if err != nil {
		return nil, err
	}
	return &InvoiceDownload{InvoiceID: externalID, URL: url, ExpiresAt: expiresAt}, nil
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

// SyncPayments polls one page of locally stored non-terminal payments. The
// cursor is an offset into the open set; payments that became terminal leave
// the set, so the next offset only advances past the ones still open.
func (s *ReconcileService) SyncPayments(ctx context.Context, tenantID uuid.UUID, page integration.PageRequest) (*integration.BatchResult, error) {
	if s.payments == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	page = page.Normalize()
	offset := page.Offset()
	open, total, err := s.paymentRepo.ListOpen(ctx, tenantID, integration.ProviderMercadoPago, offset, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("list open payments: %w", err)
	}

	result := integration.NewSyncResult()
	stillOpen := 0
	for i := range open {
		p := &open[i]
		if err := s.refreshPayment(ctx, p); err != nil {
			s.logger.Warn("payment sync failed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("external_id", p.ExternalID),
				zap.Error(err))
			result.AddFailure(p.ExternalID, err)
			stillOpen++
			continue
		}
		if !p.State.IsTerminal() {
			stillOpen++
		}
		result.AddSuccess()
	}

	remaining := max(total-int64(offset)-int64(len(open)), 0)
	return finishPage(result, remaining > 0, strconv.Itoa(offset+stillOpen), remaining), nil
}

func (s *ReconcileService) refreshPayment(ctx context.Context, p *integration.PaymentRecord) error {
	remote, err := s.payments.GetPayment(ctx, p.TenantID, p.ExternalID)
	if err != nil {
		p.LastError = err.Error()
		if uerr := s.paymentRepo.Upsert(ctx, p); uerr != nil {
			s.logger.Error("failed to record payment error", zap.String("external_id", p.ExternalID), zap.Error(uerr))
		}
		return err
	}
	p.Apply(*remote)
	return s.paymentRepo.Upsert(ctx, p)
}

// SyncPayment fetches a single payment, typically after a notification, and
// upserts it by external id.
func (s *ReconcileService) SyncPayment(ctx context.Context, tenantID uuid.UUID, externalID string) (*integration.PaymentRecord, error) {
	if s.payments == nil {
		return nil, integration.ErrProviderNotConfigured
	}
	if externalID == "" {
		return nil, integration.ErrMissingExternalID
	}
	remote, err := s.payments.GetPayment(ctx, tenantID, externalID)
	if err != nil {
		return nil, err
	}

	p, err := s.paymentRepo.FindByExternalID(ctx, tenantID, integration.ProviderMercadoPago, externalID)
	switch {
	case errors.Is(err, integration.ErrPaymentNotFound):
		p, err = integration.NewPaymentRecord(tenantID, integration.ProviderMercadoPago, *remote)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		p.Apply(*remote)
	}
	if err := s.paymentRepo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("payment synced",
		zap.String("tenant_id", tenantID.String()),
		zap.String("external_id", externalID),
		zap.String("state", string(p.State)))
	return p, nil
}

func finishPage(result *integration.SyncResult, hasMore bool, next string, remaining int64) *integration.BatchResult {
	result.Finish()
	batch := &integration.BatchResult{SyncResult: *result, Remaining: remaining, HasMore: hasMore}
	if hasMore {
		batch.NextCursor = next
	}
	return batch
}
