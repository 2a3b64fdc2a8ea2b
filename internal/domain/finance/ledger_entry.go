package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

// EntrySource represents the kind of record a ledger entry originates from
type EntrySource string

const (
	EntrySourceDuesPayment EntrySource = "DUES_PAYMENT" // payment applied to a due (positive)
	EntrySourceExpense     EntrySource = "EXPENSE"      // recorded expense (negative)
	EntrySourceManual      EntrySource = "MANUAL"       // manual adjustment, either sign
)

// IsValid checks if the entry source is valid
func (s EntrySource) IsValid() bool {
	switch s {
	case EntrySourceDuesPayment, EntrySourceExpense, EntrySourceManual:
		return true
	}
	return false
}

// String returns the string representation of EntrySource
func (s EntrySource) String() string {
	return string(s)
}

// LedgerEntry is an append-only record of money moving in or out of a
// building's fund. Entries are never updated or deleted; corrections are
// made by appending a reversing entry with the opposite sign.
type LedgerEntry struct {
	shared.TenantAggregateRoot
	Amount      decimal.Decimal `json:"amount"` // signed: positive income, negative outflow
	Description string          `json:"description"`
	EntryDate   time.Time       `json:"entry_date"`
	Source      EntrySource     `json:"source"`
	SourceID    *uuid.UUID      `json:"source_id,omitempty"` // originating due or expense
	ResidentID  *uuid.UUID      `json:"resident_id,omitempty"`
}

// NewLedgerEntry creates a new ledger entry
func NewLedgerEntry(
	tenantID uuid.UUID,
	amount valueobject.Money,
	description string,
	entryDate time.Time,
	source EntrySource,
	sourceID *uuid.UUID,
	residentID *uuid.UUID,
) (*LedgerEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Ledger entry amount cannot be zero")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Ledger entry description cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Entry source is not valid")
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	e := &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Amount:              amount.Amount(),
		Description:         description,
		EntryDate:           entryDate,
		Source:              source,
		SourceID:            sourceID,
		ResidentID:          residentID,
	}

	e.AddDomainEvent(NewLedgerEntryRecordedEvent(e))

	return e, nil
}

// Reversal builds a new entry that cancels this one out: same source
// reference, negated amount. The original entry is left untouched.
func (e *LedgerEntry) Reversal(description string) (*LedgerEntry, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Reversal description cannot be empty")
	}
	amount := valueobject.NewMoneyTRY(e.Amount.Neg())
	return NewLedgerEntry(e.TenantID, amount, description, time.Now(), e.Source, e.SourceID, e.ResidentID)
}

// GetAmountMoney returns the signed amount as Money
func (e *LedgerEntry) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyTRY(e.Amount)
}

// IsIncome returns true if the entry increases the fund balance
func (e *LedgerEntry) IsIncome() bool {
	return e.Amount.IsPositive()
}

// IsOutflow returns true if the entry decreases the fund balance
func (e *LedgerEntry) IsOutflow() bool {
	return e.Amount.IsNegative()
}
