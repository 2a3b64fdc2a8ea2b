package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

// RecurringRule defines a monthly due generated automatically for every
// resident of a building. DayOfMonth is capped at 28 so the rule fires in
// every month of the year.
type RecurringRule struct {
	shared.TenantAggregateRoot
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DayOfMonth  int             `json:"day_of_month"`
	Active      bool            `json:"active"`
}

// NewRecurringRule creates a new recurring rule
func NewRecurringRule(
	tenantID uuid.UUID,
	description string,
	amount valueobject.Money,
	dayOfMonth int,
	createdBy uuid.UUID,
) (*RecurringRule, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Rule description cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Rule amount must be positive")
	}
	if dayOfMonth < 1 || dayOfMonth > 28 {
		return nil, shared.NewDomainError("INVALID_DAY", "Day of month must be between 1 and 28")
	}

	r := &RecurringRule{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Description:         description,
		Amount:              amount.Amount(),
		DayOfMonth:          dayOfMonth,
		Active:              true,
	}

	return r, nil
}

// Update changes the rule's description, amount and firing day
func (r *RecurringRule) Update(description string, amount valueobject.Money, dayOfMonth int) error {
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Rule description cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Rule amount must be positive")
	}
	if dayOfMonth < 1 || dayOfMonth > 28 {
		return shared.NewDomainError("INVALID_DAY", "Day of month must be between 1 and 28")
	}

	r.Description = description
	r.Amount = amount.Amount()
	r.DayOfMonth = dayOfMonth
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// Toggle flips the rule's active flag
func (r *RecurringRule) Toggle() {
	r.Active = !r.Active
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// FiresOn reports whether the rule generates dues on the given date
func (r *RecurringRule) FiresOn(date time.Time) bool {
	return r.Active && date.Day() == r.DayOfMonth
}

// PeriodKey returns the generation period identifier for the given date,
// e.g. "2026-09". Together with the resident and description it makes the
// per-month generation unique.
func (r *RecurringRule) PeriodKey(date time.Time) string {
	return PeriodOf(date)
}

// GetAmountMoney returns the rule amount as Money
func (r *RecurringRule) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyTRY(r.Amount)
}
