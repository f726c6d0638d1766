package persistence

import (
	"context"
	"errors"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence/models"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// syncKeyColumns is the natural key every synced table is unique on
var syncKeyColumns = []clause.Column{{Name: "tenant_id"}, {Name: "provider"}, {Name: "external_id"}}

// terminalStates are the states ListOpen skips
var terminalStates = []integration.SyncState{
	integration.SyncStateAuthorized,
	integration.SyncStateApproved,
	integration.SyncStateRejected,
	integration.SyncStateDenied,
}

// ---------------------------------------------------------------------------
// ERP orders
// ---------------------------------------------------------------------------

// GormERPOrderRepository implements integration.ERPOrderRepository using GORM
type GormERPOrderRepository struct {
	db *gorm.DB
}

// NewGormERPOrderRepository creates a new GormERPOrderRepository
func NewGormERPOrderRepository(db *gorm.DB) *GormERPOrderRepository {
	return &GormERPOrderRepository{db: db}
}

// FindByExternalID finds the local copy of a remote order
func (r *GormERPOrderRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, externalID string) (*integration.ERPOrder, error) {
	var model models.ERPOrderModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("provider = ? AND external_id = ?", provider, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists orders newest first with the total matching count
func (r *GormERPOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter integration.OrderFilter) ([]integration.ERPOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ERPOrderModel{}).Scopes(tenant.Scope(tenantID))
	if filter.Provider != "" {
		query = query.Where("provider = ?", filter.Provider)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > integration.MaxPageSize {
		limit = integration.DefaultPageSize
	}
	var rows []models.ERPOrderModel
	if err := query.Order("created_at DESC").
		Offset(max(filter.Offset, 0)).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]integration.ERPOrder, 0, len(rows))
	for i := range rows {
		orders = append(orders, *rows[i].ToDomain())
	}
	return orders, total, nil
}

// Upsert inserts or overwrites the row for (tenant, provider, external id)
func (r *GormERPOrderRepository) Upsert(ctx context.Context, order *integration.ERPOrder) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: syncKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"number", "provider_status", "state", "customer_name", "customer_document",
			"customer_email", "total", "placed_at", "erp_order_id", "last_error",
			"synced_at", "updated_at",
		}),
	}).Create(models.ERPOrderModelFromDomain(order)).Error
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

// GormInvoiceRepository implements integration.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByExternalID finds the local copy of a remote invoice
func (r *GormInvoiceRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, externalID string) (*integration.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("provider = ? AND external_id = ?", provider, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrInvoiceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts or overwrites the row for (tenant, provider, external id)
func (r *GormInvoiceRepository) Upsert(ctx context.Context, invoice *integration.Invoice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: syncKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"number", "series", "access_key", "provider_status", "state", "total",
			"issued_at", "xml_url", "archive_key", "order_external_id", "last_error",
			"synced_at", "updated_at",
		}),
	}).Create(models.InvoiceModelFromDomain(invoice)).Error
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

// GormPaymentRepository implements integration.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByExternalID finds the local copy of a remote payment
func (r *GormPaymentRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, externalID string) (*integration.PaymentRecord, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("provider = ? AND external_id = ?", provider, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrPaymentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListOpen returns non-terminal payments oldest first, plus how many are open
func (r *GormPaymentRepository) ListOpen(ctx context.Context, tenantID uuid.UUID, provider integration.Provider, offset, limit int) ([]integration.PaymentRecord, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("provider = ? AND state NOT IN ?", provider, terminalStates)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PaymentModel
	if err := query.Order("created_at ASC").Order("id ASC").
		Offset(max(offset, 0)).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	payments := make([]integration.PaymentRecord, 0, len(rows))
	for i := range rows {
		payments = append(payments, *rows[i].ToDomain())
	}
	return payments, total, nil
}

// Upsert inserts or overwrites the row for (tenant, provider, external id)
func (r *GormPaymentRepository) Upsert(ctx context.Context, payment *integration.PaymentRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: syncKeyColumns,
		DoUpdates: clause.AssignmentColumns([]string{
			"external_reference", "provider_status", "status_detail", "state", "amount",
			"paid_at", "last_error", "synced_at", "updated_at",
		}),
	}).Create(models.PaymentModelFromDomain(payment)).Error
}

var (
	_ integration.ERPOrderRepository = (*GormERPOrderRepository)(nil)
	_ integration.InvoiceRepository  = (*GormInvoiceRepository)(nil)
	_ integration.PaymentRepository  = (*GormPaymentRepository)(nil)
)
