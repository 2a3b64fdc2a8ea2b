package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

// Expense represents a cost paid out of the building fund. The amount is
// stored positive; the corresponding ledger entry carries the negative sign.
type Expense struct {
	shared.TenantAggregateRoot
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	ExpenseDate      time.Time       `json:"expense_date"`
	InvoiceObjectKey *string         `json:"invoice_object_key,omitempty"`
}

// NewExpense creates a new expense record
func NewExpense(
	tenantID uuid.UUID,
	description string,
	amount valueobject.Money,
	expenseDate time.Time,
	createdBy uuid.UUID,
) (*Expense, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}

	e := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Description:         description,
		Amount:              amount.Amount(),
		ExpenseDate:         expenseDate,
	}

	return e, nil
}

// AttachInvoice records the stored invoice document for this expense
func (e *Expense) AttachInvoice(objectKey string) error {
	if objectKey == "" {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice object key cannot be empty")
	}
	e.InvoiceObjectKey = &objectKey
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// GetAmountMoney returns the expense amount as Money
func (e *Expense) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyTRY(e.Amount)
}
