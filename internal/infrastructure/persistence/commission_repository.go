package persistence

import (
	"context"
	"errors"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/commission"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence/models"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ---------------------------------------------------------------------------
// Commission configs
// ---------------------------------------------------------------------------

// GormCommissionConfigRepository implements commission.ConfigRepository using GORM
type GormCommissionConfigRepository struct {
	db *gorm.DB
}

// NewGormCommissionConfigRepository creates a new GormCommissionConfigRepository
func NewGormCommissionConfigRepository(db *gorm.DB) *GormCommissionConfigRepository {
	return &GormCommissionConfigRepository{db: db}
}

// FindByProduct finds the config of a product for one sale kind
func (r *GormCommissionConfigRepository) FindByProduct(ctx context.Context, tenantID uuid.UUID, productID string, kind commission.SaleKind) (*commission.CommissionConfig, error) {
	var model models.CommissionConfigModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("product_id = ? AND kind = ?", productID, kind).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commission.ErrCommissionConfigNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts on (tenant, product, kind)
func (r *GormCommissionConfigRepository) Save(ctx context.Context, cfg *commission.CommissionConfig) error {
	model := models.CommissionConfigModelFromDomain(cfg)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"pct", "default_beneficiary_id", "updated_at"}),
	}).Create(model).Error
}

// ---------------------------------------------------------------------------
// Sales
// ---------------------------------------------------------------------------

const (
	defaultSalePageSize = 20
	maxSalePageSize     = 100
)

// GormSaleRepository implements commission.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale within a tenant
func (r *GormSaleRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*commission.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commission.ErrSaleNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the sales among ids that exist in the tenant
func (r *GormSaleRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]commission.Sale, error) {
	if len(ids) == 0 {
		return []commission.Sale{}, nil
	}
	var rows []models.SaleModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSales(rows), nil
}

// FindAll lists sales newest first with the total matching count
func (r *GormSaleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter commission.SaleFilter) ([]commission.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{}).Scopes(tenant.Scope(tenantID))
	if filter.BeneficiaryID != nil {
		query = query.Where("beneficiary_id = ?", *filter.BeneficiaryID)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultSalePageSize
	}
	if size > maxSalePageSize {
		size = maxSalePageSize
	}

	var rows []models.SaleModel
	if err := query.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toSales(rows), total, nil
}

// Create inserts a sale
func (r *GormSaleRepository) Create(ctx context.Context, sale *commission.Sale) error {
	return r.db.WithContext(ctx).Create(models.SaleModelFromDomain(sale)).Error
}

// UpdatePaymentLink writes the only mutable column of a sale
func (r *GormSaleRepository) UpdatePaymentLink(ctx context.Context, sale *commission.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Scopes(tenant.Scope(sale.TenantID)).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"payment_link": sale.PaymentLink,
			"updated_at":   sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commission.ErrSaleNotFound
	}
	return nil
}

// SumByBeneficiary returns the accrued commission of a beneficiary
func (r *GormSaleRepository) SumByBeneficiary(ctx context.Context, tenantID, beneficiaryID uuid.UUID) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("beneficiary_id = ?", beneficiaryID).
		Pluck("commission_total", &totals).Error; err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}

func toSales(rows []models.SaleModel) []commission.Sale {
	sales := make([]commission.Sale, 0, len(rows))
	for i := range rows {
		sales = append(sales, *rows[i].ToDomain())
	}
	return sales
}

// ---------------------------------------------------------------------------
// Payout batches
// ---------------------------------------------------------------------------

// GormPayoutRepository implements commission.PayoutRepository using GORM
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// FindByID finds a batch with its member sale ids
func (r *GormPayoutRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*commission.PayoutBatch, error) {
	var model models.PayoutBatchModel
	if err := r.db.WithContext(ctx).
		Preload("Sales").
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commission.ErrPayoutNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a batch and its sale links in one transaction. The member
// sale rows are locked first, so concurrent batches over the same sales are
// serialized and the second one sees the first's links.
func (r *GormPayoutRepository) Create(ctx context.Context, batch *commission.PayoutBatch) error {
	model := models.PayoutBatchModelFromDomain(batch)
	links := model.Sales
	model.Sales = nil
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []uuid.UUID
		if err := tx.Model(&models.SaleModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(tenant.Scope(batch.TenantID)).
			Where("id IN ?", batch.SaleIDs).
			Order("id").
			Pluck("id", &locked).Error; err != nil {
			return err
		}
		if len(locked) != len(batch.SaleIDs) {
			return commission.ErrSaleNotFound
		}

		taken, err := openBatchSaleIDs(tx, batch.TenantID, batch.SaleIDs)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return commission.ErrSaleAlreadyBatched
		}

		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return commission.ErrSaleAlreadyBatched
	}
	return err
}

// UpdateStatus persists the status columns of a batch when the stored
// version is the one it was loaded at, and advances batch.Version.
// Cancelling releases the batch's sales in the same transaction.
func (r *GormPayoutRepository) UpdateStatus(ctx context.Context, batch *commission.PayoutBatch) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PayoutBatchModel{}).
			Scopes(tenant.Scope(batch.TenantID)).
			Where("id = ? AND version = ?", batch.ID, batch.Version).
			Updates(map[string]any{
				"status":        batch.Status,
				"reference":     batch.Reference,
				"approved_at":   batch.ApprovedAt,
				"paid_at":       batch.PaidAt,
				"cancelled_at":  batch.CancelledAt,
				"cancel_reason": batch.CancelReason,
				"version":       batch.Version + 1,
				"updated_at":    batch.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.PayoutBatchModel{}).
				Scopes(tenant.Scope(batch.TenantID)).
				Where("id = ?", batch.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return commission.ErrPayoutNotFound
			}
			return commission.ErrPayoutModified
		}

		if batch.Status.IsOpen() {
			return nil
		}
		return tx.Model(&models.PayoutSaleModel{}).
			Where("payout_id = ?", batch.ID).
			Update("released", true).Error
	})
	if err != nil {
		return err
	}
	batch.Version++
	return nil
}

// OpenBatchSaleIDs returns which of ids already belong to a non-cancelled batch
func (r *GormPayoutRepository) OpenBatchSaleIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return openBatchSaleIDs(r.db.WithContext(ctx), tenantID, ids)
}

func openBatchSaleIDs(db *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var taken []uuid.UUID
	err := db.Table("payout_sales").
		Joins("JOIN payout_batches ON payout_batches.id = payout_sales.payout_id").
		Scopes(tenant.QualifiedScope("payout_batches", tenantID)).
		Where("payout_sales.released = ? AND payout_sales.sale_id IN ?", false, ids).
		Distinct().
		Pluck("payout_sales.sale_id", &taken).Error
	return taken, err
}

// SumByBeneficiary returns totals of open (pending+approved) and paid batches
func (r *GormPayoutRepository) SumByBeneficiary(ctx context.Context, tenantID, beneficiaryID uuid.UUID) (open, paid decimal.Decimal, err error) {
	var rows []struct {
		Status commission.PayoutStatus
		Total  decimal.Decimal
	}
	if err = r.db.WithContext(ctx).
		Model(&models.PayoutBatchModel{}).
		Select("status", "total").
		Scopes(tenant.Scope(tenantID)).
		Where("beneficiary_id = ? AND status <> ?", beneficiaryID, commission.PayoutStatusCancelled).
		Find(&rows).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	open, paid = decimal.Zero, decimal.Zero
	for _, row := range rows {
		if row.Status == commission.PayoutStatusPaid {
			paid = paid.Add(row.Total)
		} else {
			open = open.Add(row.Total)
		}
	}
	return open, paid, nil
}

var (
	_ commission.ConfigRepository = (*GormCommissionConfigRepository)(nil)
	_ commission.SaleRepository   = (*GormSaleRepository)(nil)
	_ commission.PayoutRepository = (*GormPayoutRepository)(nil)
)
