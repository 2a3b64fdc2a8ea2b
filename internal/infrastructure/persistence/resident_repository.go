package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitefund/backend/internal/domain/directory"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/infrastructure/persistence/models"
)

// GormResidentRepository implements ResidentRepository using GORM
type GormResidentRepository struct {
	db *gorm.DB
}

// NewGormResidentRepository creates a new GormResidentRepository
func NewGormResidentRepository(db *gorm.DB) *GormResidentRepository {
	return &GormResidentRepository{db: db}
}

// FindByIDForTenant finds a resident by ID for a specific tenant
func (r *GormResidentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*directory.Resident, error) {
	var model models.ResidentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveForTenant lists all active residents of a tenant ordered by unit
func (r *GormResidentRepository) FindActiveForTenant(ctx context.Context, tenantID uuid.UUID) ([]directory.Resident, error) {
	var residentModels []models.ResidentModel
	err := r.db.WithContext(ctx).Model(&models.ResidentModel{}).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("unit ASC").
		Find(&residentModels).Error
	if err != nil {
		return nil, err
	}
	residents := make([]directory.Resident, len(residentModels))
	for i, model := range residentModels {
		residents[i] = *model.ToDomain()
	}
	return residents, nil
}

// Save creates or updates a resident
func (r *GormResidentRepository) Save(ctx context.Context, resident *directory.Resident) error {
	model := models.ResidentModelFromDomain(resident)
	return r.db.WithContext(ctx).Save(model).Error
}
