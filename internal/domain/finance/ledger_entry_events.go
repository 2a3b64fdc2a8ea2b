package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitefund/backend/internal/domain/shared"
)

// LedgerEntryRecordedEvent is raised when a new entry is appended to the ledger
type LedgerEntryRecordedEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID       `json:"entry_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	EntryDate   time.Time       `json:"entry_date"`
	Source      EntrySource     `json:"source"`
	SourceID    *uuid.UUID      `json:"source_id,omitempty"`
	ResidentID  *uuid.UUID      `json:"resident_id,omitempty"`
}

// EventType returns the event type name
func (e *LedgerEntryRecordedEvent) EventType() string {
	return "LedgerEntryRecorded"
}

// NewLedgerEntryRecordedEvent creates a new LedgerEntryRecordedEvent
func NewLedgerEntryRecordedEvent(entry *LedgerEntry) *LedgerEntryRecordedEvent {
	return &LedgerEntryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryRecorded", "LedgerEntry", entry.ID, entry.TenantID),
		EntryID:         entry.ID,
		Amount:          entry.Amount,
		Description:     entry.Description,
		EntryDate:       entry.EntryDate,
		Source:          entry.Source,
		SourceID:        entry.SourceID,
		ResidentID:      entry.ResidentID,
	}
}
