package persistence

import (
	"context"
	"errors"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMessageLogRepository implements messaging.Repository using GORM
type GormMessageLogRepository struct {
	db *gorm.DB
}

// NewGormMessageLogRepository creates a new GormMessageLogRepository
func NewGormMessageLogRepository(db *gorm.DB) *GormMessageLogRepository {
	return &GormMessageLogRepository{db: db}
}

// FindByID finds a message by id. Tracking links carry no tenant, so the
// lookup is by id alone.
func (r *GormMessageLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*messaging.MessageLog, error) {
	var model models.MessageLogModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messaging.ErrMessageNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a message log
func (r *GormMessageLogRepository) Create(ctx context.Context, msg *messaging.MessageLog) error {
	return r.db.WithContext(ctx).Create(models.MessageLogModelFromDomain(msg)).Error
}

// Update saves every column of a message log
func (r *GormMessageLogRepository) Update(ctx context.Context, msg *messaging.MessageLog) error {
	result := r.db.WithContext(ctx).
		Model(&models.MessageLogModel{}).
		Where("id = ?", msg.ID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(models.MessageLogModelFromDomain(msg))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return messaging.ErrMessageNotFound
	}
	return nil
}

var _ messaging.Repository = (*GormMessageLogRepository)(nil)
