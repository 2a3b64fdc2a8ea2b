package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitefund/backend/internal/domain/shared"
)

// DueAssignedEvent is raised when a due is assigned to a resident
type DueAssignedEvent struct {
	shared.BaseDomainEvent
	DueID       uuid.UUID       `json:"due_id"`
	ResidentID  uuid.UUID       `json:"resident_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	DueDate     time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *DueAssignedEvent) EventType() string {
	return "DueAssigned"
}

// NewDueAssignedEvent creates a new DueAssignedEvent
func NewDueAssignedEvent(d *Due) *DueAssignedEvent {
	return &DueAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DueAssigned", "Due", d.ID, d.TenantID),
		DueID:           d.ID,
		ResidentID:      d.ResidentID,
		Amount:          d.Amount,
		Description:     d.Description,
		DueDate:         d.DueDate,
	}
}

// DuesBulkAssignedEvent is raised once per bulk assignment, after the
// per-due events. It carries every affected resident so the notification
// layer can fan out in a single batched send.
type DuesBulkAssignedEvent struct {
	shared.BaseDomainEvent
	ResidentIDs  []uuid.UUID     `json:"resident_ids"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	DueDate      time.Time       `json:"due_date"`
	CreatedCount int             `json:"created_count"`
}

// EventType returns the event type name
func (e *DuesBulkAssignedEvent) EventType() string {
	return "DuesBulkAssigned"
}

// NewDuesBulkAssignedEvent creates a new DuesBulkAssignedEvent
func NewDuesBulkAssignedEvent(tenantID uuid.UUID, residentIDs []uuid.UUID, amount decimal.Decimal, description string, dueDate time.Time) *DuesBulkAssignedEvent {
	return &DuesBulkAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DuesBulkAssigned", "Tenant", tenantID, tenantID),
		ResidentIDs:     residentIDs,
		Amount:          amount,
		Description:     description,
		DueDate:         dueDate,
		CreatedCount:    len(residentIDs),
	}
}

// DueReceiptAttachedEvent is raised when a resident uploads payment proof
type DueReceiptAttachedEvent struct {
	shared.BaseDomainEvent
	DueID            uuid.UUID `json:"due_id"`
	ResidentID       uuid.UUID `json:"resident_id"`
	ReceiptObjectKey string    `json:"receipt_object_key"`
}

// EventType returns the event type name
func (e *DueReceiptAttachedEvent) EventType() string {
	return "DueReceiptAttached"
}

// NewDueReceiptAttachedEvent creates a new DueReceiptAttachedEvent
func NewDueReceiptAttachedEvent(d *Due) *DueReceiptAttachedEvent {
	key := ""
	if d.ReceiptObjectKey != nil {
		key = *d.ReceiptObjectKey
	}
	return &DueReceiptAttachedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("DueReceiptAttached", "Due", d.ID, d.TenantID),
		DueID:            d.ID,
		ResidentID:       d.ResidentID,
		ReceiptObjectKey: key,
	}
}

// DuePaidEvent is raised when a due's payment is accepted
type DuePaidEvent struct {
	shared.BaseDomainEvent
	DueID       uuid.UUID       `json:"due_id"`
	ResidentID  uuid.UUID       `json:"resident_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Kind        ApprovalKind    `json:"kind"`
	PaymentDate time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *DuePaidEvent) EventType() string {
	return "DuePaid"
}

// NewDuePaidEvent creates a new DuePaidEvent
func NewDuePaidEvent(d *Due, kind ApprovalKind) *DuePaidEvent {
	paidAt := time.Now()
	if d.PaymentDate != nil {
		paidAt = *d.PaymentDate
	}
	return &DuePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DuePaid", "Due", d.ID, d.TenantID),
		DueID:           d.ID,
		ResidentID:      d.ResidentID,
		Amount:          d.Amount,
		Description:     d.Description,
		Kind:            kind,
		PaymentDate:     paidAt,
	}
}

// DueRevertedEvent is raised when a paid due is reverted to unpaid
type DueRevertedEvent struct {
	shared.BaseDomainEvent
	DueID      uuid.UUID       `json:"due_id"`
	ResidentID uuid.UUID       `json:"resident_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *DueRevertedEvent) EventType() string {
	return "DueReverted"
}

// NewDueRevertedEvent creates a new DueRevertedEvent
func NewDueRevertedEvent(d *Due) *DueRevertedEvent {
	return &DueRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DueReverted", "Due", d.ID, d.TenantID),
		DueID:           d.ID,
		ResidentID:      d.ResidentID,
		Amount:          d.Amount,
	}
}

// DueReviewPendingEvent is raised when reconciliation routes a receipt to
// manual review instead of approving it
type DueReviewPendingEvent struct {
	shared.BaseDomainEvent
	DueID      uuid.UUID `json:"due_id"`
	ResidentID uuid.UUID `json:"resident_id"`
	Reason     string    `json:"reason"`
}

// EventType returns the event type name
func (e *DueReviewPendingEvent) EventType() string {
	return "DueReviewPending"
}

// NewDueReviewPendingEvent creates a new DueReviewPendingEvent
func NewDueReviewPendingEvent(d *Due, reason string) *DueReviewPendingEvent {
	return &DueReviewPendingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DueReviewPending", "Due", d.ID, d.TenantID),
		DueID:           d.ID,
		ResidentID:      d.ResidentID,
		Reason:          reason,
	}
}
