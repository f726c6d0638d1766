package persistence

import (
	"context"
	"errors"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProviderTokenRepository implements integration.TokenRepository using GORM
type GormProviderTokenRepository struct {
	db *gorm.DB
}

// NewGormProviderTokenRepository creates a new GormProviderTokenRepository
func NewGormProviderTokenRepository(db *gorm.DB) *GormProviderTokenRepository {
	return &GormProviderTokenRepository{db: db}
}

// Find loads the token pair of a tenant for a provider
func (r *GormProviderTokenRepository) Find(ctx context.Context, tenantID uuid.UUID, provider integration.Provider) (*integration.ProviderToken, error) {
	var model models.ProviderTokenModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND provider = ?", tenantID, provider).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrProviderNotConnected
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the pair; there is one row per tenant and provider
func (r *GormProviderTokenRepository) Save(ctx context.Context, token *integration.ProviderToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
	}).Create(models.ProviderTokenModelFromDomain(token)).Error
}

// ListTenants returns the tenants connected to a provider
func (r *GormProviderTokenRepository) ListTenants(ctx context.Context, provider integration.Provider) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProviderTokenModel{}).
		Where("provider = ?", provider).
		Order("tenant_id").
		Pluck("tenant_id", &ids).Error
	return ids, err
}

var _ integration.TokenRepository = (*GormProviderTokenRepository)(nil)
