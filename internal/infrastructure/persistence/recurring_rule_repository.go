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

// GormRecurringRuleRepository implements RecurringRuleRepository using GORM
type GormRecurringRuleRepository struct {
	db *gorm.DB
}

// NewGormRecurringRuleRepository creates a new GormRecurringRuleRepository
func NewGormRecurringRuleRepository(db *gorm.DB) *GormRecurringRuleRepository {
	return &GormRecurringRuleRepository{db: db}
}

// FindByIDForTenant finds a rule by ID for a specific tenant
func (r *GormRecurringRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.RecurringRule, error) {
	var model models.RecurringRuleModel
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

// FindAllForTenant lists rules for a tenant
func (r *GormRecurringRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.RecurringRule, error) {
	var ruleModels []models.RecurringRuleModel
	query := r.db.WithContext(ctx).Model(&models.RecurringRuleModel{}).
		Where("tenant_id = ?", tenantID)

	sortField := ValidateSortField(filter.OrderBy, RecurringRuleSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	if err := query.Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	return toDomainRules(ruleModels), nil
}

// FindActiveByDay lists active rules across all tenants that fire on the
// given day of month. This is the one deliberately cross-tenant query in
// the module; only the generation scheduler calls it.
func (r *GormRecurringRuleRepository) FindActiveByDay(ctx context.Context, dayOfMonth int) ([]finance.RecurringRule, error) {
	var ruleModels []models.RecurringRuleModel
	err := r.db.WithContext(ctx).Model(&models.RecurringRuleModel{}).
		Where("active = ? AND day_of_month = ?", true, dayOfMonth).
		Order("created_at ASC").
		Find(&ruleModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainRules(ruleModels), nil
}

// ExistsByDescription reports whether a rule with the description exists for the tenant
func (r *GormRecurringRuleRepository) ExistsByDescription(ctx context.Context, tenantID uuid.UUID, description string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RecurringRuleModel{}).
		Where("tenant_id = ? AND description = ?", tenantID, description).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a rule
func (r *GormRecurringRuleRepository) Save(ctx context.Context, rule *finance.RecurringRule) error {
	model := models.RecurringRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainRules(ruleModels []models.RecurringRuleModel) []finance.RecurringRule {
	rules := make([]finance.RecurringRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules
}
