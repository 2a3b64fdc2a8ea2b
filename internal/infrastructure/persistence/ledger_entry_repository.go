package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/infrastructure/persistence/models"
)

// LedgerEntrySortFields contains allowed sort fields for ledger entries
var LedgerEntrySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"entry_date": true,
	"amount":     true,
	"source":     true,
}

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// The ledger table is append-only; this repository exposes no update or
// delete operations.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append stores a new ledger entry
func (r *GormLedgerEntryRepository) Append(ctx context.Context, entry *finance.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// AppendAll stores several entries atomically
func (r *GormLedgerEntryRepository) AppendAll(ctx context.Context, entries []*finance.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	entryModels := make([]*models.LedgerEntryModel, len(entries))
	for i, entry := range entries {
		entryModels[i] = models.LedgerEntryModelFromDomain(entry)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entryModels).Error
	})
}

// FindByIDForTenant finds an entry by ID for a specific tenant
func (r *GormLedgerEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.LedgerEntry, error) {
	var model models.LedgerEntryModel
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

// FindAllForTenant lists entries for a tenant
func (r *GormLedgerEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) ([]finance.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]finance.LedgerEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// CountForTenant counts entries for a tenant with optional filters
func (r *GormLedgerEntryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumForTenant returns the exact signed sum of entries for a tenant.
// Summing is done in the database over the decimal column, never in floats.
func (r *GormLedgerEntryRepository) SumForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) (decimal.Decimal, error) {
	return r.sum(ctx, tenantID, filter, "COALESCE(SUM(amount), 0)")
}

// SumIncomeForTenant returns the sum of positive entries matching the filter
func (r *GormLedgerEntryRepository) SumIncomeForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) (decimal.Decimal, error) {
	return r.sum(ctx, tenantID, filter, "COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0)")
}

// SumOutflowForTenant returns the absolute sum of negative entries matching the filter
func (r *GormLedgerEntryRepository) SumOutflowForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter) (decimal.Decimal, error) {
	return r.sum(ctx, tenantID, filter, "COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0)")
}

func (r *GormLedgerEntryRepository) sum(ctx context.Context, tenantID uuid.UUID, filter finance.LedgerEntryFilter, expr string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Select(expr + " AS total").Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter finance.LedgerEntryFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, LedgerEntrySortFields, "entry_date")
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

func (r *GormLedgerEntryRepository) applyFilterWithoutPagination(query *gorm.DB, filter finance.LedgerEntryFilter) *gorm.DB {
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.ResidentID != nil {
		query = query.Where("resident_id = ?", *filter.ResidentID)
	}
	if filter.FromDate != nil {
		query = query.Where("entry_date >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("entry_date < ?", filter.ToDate)
	}
	return query
}
