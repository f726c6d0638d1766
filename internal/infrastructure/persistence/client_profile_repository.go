package persistence

import (
	"context"
	"errors"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence/models"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormClientProfileRepository implements pricing.ClientProfileRepository using GORM
type GormClientProfileRepository struct {
	db *gorm.DB
}

// NewGormClientProfileRepository creates a new GormClientProfileRepository
func NewGormClientProfileRepository(db *gorm.DB) *GormClientProfileRepository {
	return &GormClientProfileRepository{db: db}
}

// FindByID finds a client profile with its category overrides
func (r *GormClientProfileRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*pricing.ClientProfile, error) {
	var model models.ClientProfileModel
	if err := r.db.WithContext(ctx).
		Preload("Overrides").
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pricing.ErrClientNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists a tenant's client profiles ordered by name
func (r *GormClientProfileRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]pricing.ClientProfile, error) {
	var rows []models.ClientProfileModel
	if err := r.db.WithContext(ctx).
		Preload("Overrides").
		Scopes(tenant.Scope(tenantID)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	profiles := make([]pricing.ClientProfile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, *rows[i].ToDomain())
	}
	return profiles, nil
}

// Save inserts or updates a profile and replaces its category overrides
func (r *GormClientProfileRepository) Save(ctx context.Context, profile *pricing.ClientProfile) error {
	model := models.ClientProfileModelFromDomain(profile)
	overrides := model.Overrides
	model.Overrides = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "type", "onboarding_complete", "seller_discount_pct", "updated_at",
			}),
		}).Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", profile.ID).
			Delete(&models.CategoryOverrideModel{}).Error; err != nil {
			return err
		}
		if len(overrides) == 0 {
			return nil
		}
		return tx.Create(&overrides).Error
	})
}

var _ pricing.ClientProfileRepository = (*GormClientProfileRepository)(nil)
