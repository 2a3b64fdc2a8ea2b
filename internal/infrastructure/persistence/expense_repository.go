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

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by ID regardless of tenant. Callers guard
// tenant ownership themselves so a foreign-tenant access surfaces as
// forbidden, not as not-found.
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
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

// FindByIDForTenant finds an expense by ID for a specific tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
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

// FindAllForTenant lists expenses for a tenant with filtering
func (r *GormExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	expenses := make([]finance.Expense, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = *model.ToDomain()
	}
	return expenses, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEntry saves the expense and appends its ledger entry in one
// transaction; if either write fails nothing is recorded
func (r *GormExpenseRepository) SaveWithEntry(ctx context.Context, expense *finance.Expense, entry *finance.LedgerEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ExpenseModelFromDomain(expense)).Error; err != nil {
			return err
		}
		return tx.Create(models.LedgerEntryModelFromDomain(entry)).Error
	})
}

// CountForTenant counts expenses for a tenant with optional filters
func (r *GormExpenseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ExpenseFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter finance.ExpenseFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, ExpenseSortFields, "expense_date")
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

func (r *GormExpenseRepository) applyFilterWithoutPagination(query *gorm.DB, filter finance.ExpenseFilter) *gorm.DB {
	if filter.FromDate != nil {
		query = query.Where("expense_date >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("expense_date < ?", filter.ToDate)
	}
	return query
}
