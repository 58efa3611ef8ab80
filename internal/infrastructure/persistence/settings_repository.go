package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/greenshop/backend/internal/domain/settings"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSettingsRepository implements settings.Repository using GORM.
// The table holds at most one row; the oldest row wins if more exist.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the settings row
func (r *GormSettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var model models.SettingsModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts the settings row
func (r *GormSettingsRepository) Create(ctx context.Context, s *settings.Settings) error {
	return r.db.WithContext(ctx).Create(models.SettingsModelFromDomain(s)).Error
}

// Update applies patch to the stored row inside a transaction and writes
// only the patched columns
func (r *GormSettingsRepository) Update(ctx context.Context, id uuid.UUID, patch settings.Patch) (*settings.Settings, error) {
	var updated *settings.Settings
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.SettingsModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		stored := model.ToDomain()
		if err := stored.Apply(patch); err != nil {
			return err
		}
		if err := tx.Model(&models.SettingsModel{}).
			Where("id = ?", id).
			Updates(models.SettingsPatchColumns(stored, patch)).Error; err != nil {
			return err
		}
		updated = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the settings row
func (r *GormSettingsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SettingsModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSettingsRepository implements settings.Repository
var _ settings.Repository = (*GormSettingsRepository)(nil)
