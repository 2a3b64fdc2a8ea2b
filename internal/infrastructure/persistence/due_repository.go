package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/infrastructure/persistence/models"
)

// GormDueRepository implements DueRepository using GORM
type GormDueRepository struct {
	db *gorm.DB
}

// NewGormDueRepository creates a new GormDueRepository
func NewGormDueRepository(db *gorm.DB) *GormDueRepository {
	return &GormDueRepository{db: db}
}

// FindByID finds a due by ID regardless of tenant. Callers guard tenant
// ownership themselves so a foreign-tenant access surfaces as forbidden,
// not as not-found.
func (r *GormDueRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Due, error) {
	var model models.DueModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a due by ID for a specific tenant
func (r *GormDueRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Due, error) {
	var model models.DueModel
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

// FindAllForTenant lists dues for a tenant with filtering
func (r *GormDueRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.DueFilter) ([]finance.Due, error) {
	var dueModels []models.DueModel
	query := r.db.WithContext(ctx).Model(&models.DueModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&dueModels).Error; err != nil {
		return nil, err
	}
	return toDomainDues(dueModels), nil
}

// FindByResident lists dues assigned to a resident
func (r *GormDueRepository) FindByResident(ctx context.Context, tenantID, residentID uuid.UUID, filter finance.DueFilter) ([]finance.Due, error) {
	var dueModels []models.DueModel
	query := r.db.WithContext(ctx).Model(&models.DueModel{}).
		Where("tenant_id = ? AND resident_id = ?", tenantID, residentID)
	filter.ResidentID = nil
	query = r.applyFilter(query, filter)

	if err := query.Find(&dueModels).Error; err != nil {
		return nil, err
	}
	return toDomainDues(dueModels), nil
}

// FindReceiptPending lists dues awaiting receipt review, newest upload first
func (r *GormDueRepository) FindReceiptPending(ctx context.Context, tenantID uuid.UUID, filter finance.DueFilter) ([]finance.Due, error) {
	var dueModels []models.DueModel
	query := r.db.WithContext(ctx).Model(&models.DueModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, finance.DueStatusReceiptPending).
		Order("receipt_uploaded_at DESC")

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	if err := query.Find(&dueModels).Error; err != nil {
		return nil, err
	}
	return toDomainDues(dueModels), nil
}

// ExistsForPeriod reports whether a due with the given description already
// exists for the resident in the given period
func (r *GormDueRepository) ExistsForPeriod(ctx context.Context, tenantID, residentID uuid.UUID, description, period string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DueModel{}).
		Where("tenant_id = ? AND resident_id = ? AND description = ? AND period = ?",
			tenantID, residentID, description, period).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a due. A duplicate (resident, description, period)
// hits the unique index and surfaces as ALREADY_EXISTS, which callers treat
// as a benign skip when two generation runs race.
func (r *GormDueRepository) Save(ctx context.Context, due *finance.Due) error {
	model := models.DueModelFromDomain(due)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormDueRepository) SaveWithLock(ctx context.Context, due *finance.Due) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveDueWithVersionCheck(tx, due)
	})
}

// SaveWithLockAndEntry saves the due and appends its ledger entry in one
// transaction, so the due state and the ledger never diverge
func (r *GormDueRepository) SaveWithLockAndEntry(ctx context.Context, due *finance.Due, entry *finance.LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveDueWithVersionCheck(tx, due); err != nil {
			return err
		}
		return tx.Create(models.LedgerEntryModelFromDomain(entry)).Error
	})
}

// CountForTenant counts dues for a tenant with optional filters
func (r *GormDueRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.DueFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.DueModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// saveDueWithVersionCheck enforces optimistic locking inside a transaction.
// The aggregate has already incremented its version, so the row must still
// carry version-1 for the write to win.
func saveDueWithVersionCheck(tx *gorm.DB, due *finance.Due) error {
	var current models.DueModel
	err := tx.Select("version").Where("id = ?", due.ID).First(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			model := models.DueModelFromDomain(due)
			if createErr := tx.Create(model).Error; createErr != nil {
				if errors.Is(createErr, gorm.ErrDuplicatedKey) {
					return shared.ErrAlreadyExists
				}
				return createErr
			}
			return nil
		}
		return err
	}

	expectedVersion := due.GetVersion() - 1
	if current.Version != expectedVersion {
		return shared.NewDomainError("VERSION_CONFLICT",
			fmt.Sprintf("due was modified concurrently: expected version %d, found %d",
				expectedVersion, current.Version))
	}

	model := models.DueModelFromDomain(due)
	result := tx.Model(&models.DueModel{}).
		Where("id = ? AND version = ?", due.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("VERSION_CONFLICT", "due was modified concurrently")
	}
	return nil
}

func (r *GormDueRepository) applyFilter(query *gorm.DB, filter finance.DueFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, DueSortFields, "due_date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}
	return query
}

func (r *GormDueRepository) applyFilterWithoutPagination(query *gorm.DB, filter finance.DueFilter) *gorm.DB {
	if filter.ResidentID != nil {
		query = query.Where("resident_id = ?", *filter.ResidentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("due_date >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("due_date < ?", filter.ToDate)
	}
	return query
}

func toDomainDues(dueModels []models.DueModel) []finance.Due {
	dues := make([]finance.Due, len(dueModels))
	for i, model := range dueModels {
		dues[i] = *model.ToDomain()
	}
	return dues
}
