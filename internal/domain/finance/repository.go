package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitefund/backend/internal/domain/shared"
)

// LedgerEntryFilter defines filtering options for ledger queries
type LedgerEntryFilter struct {
	shared.Filter
	Source     *EntrySource // Filter by entry source
	ResidentID *uuid.UUID   // Filter by resident
	FromDate   *time.Time   // Filter by entry date range start (inclusive)
	ToDate     *time.Time   // Filter by entry date range end (exclusive)
}

// LedgerEntryRepository defines persistence for the append-only ledger.
// There are deliberately no update or delete operations.
type LedgerEntryRepository interface {
	// Append stores a new ledger entry
	Append(ctx context.Context, entry *LedgerEntry) error

	// AppendAll stores several entries atomically
	AppendAll(ctx context.Context, entries []*LedgerEntry) error

	// FindByIDForTenant finds an entry by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*LedgerEntry, error)

	// FindAllForTenant lists entries for a tenant ordered by entry date ascending
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerEntryFilter) ([]LedgerEntry, error)

	// CountForTenant counts entries for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerEntryFilter) (int64, error)

	// SumForTenant returns the exact signed sum of entries for a tenant
	SumForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerEntryFilter) (decimal.Decimal, error)

	// SumIncomeForTenant returns the sum of positive entries matching the filter
	SumIncomeForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerEntryFilter) (decimal.Decimal, error)

	// SumOutflowForTenant returns the absolute sum of negative entries matching the filter
	SumOutflowForTenant(ctx context.Context, tenantID uuid.UUID, filter LedgerEntryFilter) (decimal.Decimal, error)
}

// DueFilter defines filtering options for due queries
type DueFilter struct {
	shared.Filter
	ResidentID *uuid.UUID // Filter by resident
	Status     *DueStatus // Filter by lifecycle status
	FromDate   *time.Time // Filter by due date range start
	ToDate     *time.Time // Filter by due date range end
}

// DueRepository defines persistence for resident dues
type DueRepository interface {
	// FindByID finds a due by ID regardless of tenant. Callers that act on
	// behalf of a tenant must compare the due's tenant against the caller's
	// and reject a mismatch as forbidden, not as missing.
	FindByID(ctx context.Context, id uuid.UUID) (*Due, error)

	// FindByIDForTenant finds a due by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Due, error)

	// FindAllForTenant lists dues for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DueFilter) ([]Due, error)

	// FindByResident lists dues assigned to a resident
	FindByResident(ctx context.Context, tenantID, residentID uuid.UUID, filter DueFilter) ([]Due, error)

	// FindReceiptPending lists dues awaiting receipt review, newest upload first
	FindReceiptPending(ctx context.Context, tenantID uuid.UUID, filter DueFilter) ([]Due, error)

	// ExistsForPeriod reports whether a due with the given description already
	// exists for the resident in the given "YYYY-MM" period. The same triple
	// is backed by a unique index, so concurrent writers cannot slip past
	// this check.
	ExistsForPeriod(ctx context.Context, tenantID, residentID uuid.UUID, description, period string) (bool, error)

	// Save creates or updates a due
	Save(ctx context.Context, due *Due) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, due *Due) error

	// SaveWithLockAndEntry saves the due and appends a ledger entry in one
	// transaction, so the due state and the ledger never diverge
	SaveWithLockAndEntry(ctx context.Context, due *Due, entry *LedgerEntry) error

	// CountForTenant counts dues for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter DueFilter) (int64, error)
}

// ExpenseFilter defines filtering options for expense queries
type ExpenseFilter struct {
	shared.Filter
	FromDate *time.Time
	ToDate   *time.Time
}

// ExpenseRepository defines persistence for expenses
type ExpenseRepository interface {
	// FindByID finds an expense by ID regardless of tenant. Callers must
	// compare the expense's tenant against the caller's and reject a
	// mismatch as forbidden, not as missing.
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindByIDForTenant finds an expense by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)

	// FindAllForTenant lists expenses for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]Expense, error)

	// Save creates or updates an expense
	Save(ctx context.Context, expense *Expense) error

	// SaveWithEntry saves the expense and appends its ledger entry in one
	// transaction; if either write fails nothing is recorded
	SaveWithEntry(ctx context.Context, expense *Expense, entry *LedgerEntry) error

	// CountForTenant counts expenses for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) (int64, error)
}

// RecurringRuleRepository defines persistence for recurring due rules
type RecurringRuleRepository interface {
	// FindByIDForTenant finds a rule by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RecurringRule, error)

	// FindAllForTenant lists rules for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RecurringRule, error)

	// FindActiveByDay lists active rules across all tenants that fire on the given day of month
	FindActiveByDay(ctx context.Context, dayOfMonth int) ([]RecurringRule, error)

	// ExistsByDescription reports whether a rule with the description exists for the tenant
	ExistsByDescription(ctx context.Context, tenantID uuid.UUID, description string) (bool, error)

	// Save creates or updates a rule
	Save(ctx context.Context, rule *RecurringRule) error
}
