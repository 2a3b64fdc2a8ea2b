package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

// DueStatus represents the lifecycle state of a due
type DueStatus string

const (
	DueStatusUnpaid         DueStatus = "UNPAID"          // assigned, no accepted payment
	DueStatusReceiptPending DueStatus = "RECEIPT_PENDING" // proof uploaded, awaiting review
	DueStatusPaid           DueStatus = "PAID"            // payment accepted and posted
)

// IsValid checks if the status is a valid DueStatus
func (s DueStatus) IsValid() bool {
	switch s {
	case DueStatusUnpaid, DueStatusReceiptPending, DueStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of DueStatus
func (s DueStatus) String() string {
	return string(s)
}

// ApprovalKind distinguishes how a due payment was accepted
type ApprovalKind string

const (
	ApprovalKindManual ApprovalKind = "MANUAL" // accepted by an administrator
	ApprovalKindAuto   ApprovalKind = "AUTO"   // accepted by receipt reconciliation
)

// IsValid checks if the approval kind is valid
func (k ApprovalKind) IsValid() bool {
	return k == ApprovalKindManual || k == ApprovalKindAuto
}

// Due represents a periodic payment obligation assigned to a resident.
// A due moves UNPAID -> RECEIPT_PENDING -> PAID; administrators may also
// mark a due paid directly, or revert a paid due back to UNPAID.
type Due struct {
	shared.TenantAggregateRoot
	ResidentID        uuid.UUID       `json:"resident_id"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	DueDate           time.Time       `json:"due_date"`
	Period            string          `json:"period"` // "YYYY-MM" of the due date, part of the dedup key
	Status            DueStatus       `json:"status"`
	ReceiptObjectKey  *string         `json:"receipt_object_key,omitempty"` // stored receipt in object storage
	ReceiptUploadedAt *time.Time      `json:"receipt_uploaded_at,omitempty"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty"`
	ApprovalKind      *ApprovalKind   `json:"approval_kind,omitempty"`
	ApprovedBy        *uuid.UUID      `json:"approved_by,omitempty"` // nil for automatic approval
}

// NewDue assigns a new due to a resident
func NewDue(
	tenantID uuid.UUID,
	residentID uuid.UUID,
	amount valueobject.Money,
	description string,
	dueDate time.Time,
) (*Due, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if residentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESIDENT", "Resident ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Due amount must be positive")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Due description cannot be empty")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be empty")
	}

	d := &Due{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ResidentID:          residentID,
		Amount:              amount.Amount(),
		Description:         description,
		DueDate:             dueDate,
		Period:              PeriodOf(dueDate),
		Status:              DueStatusUnpaid,
	}

	d.AddDomainEvent(NewDueAssignedEvent(d))

	return d, nil
}

// AttachReceipt records an uploaded payment proof and moves the due to
// RECEIPT_PENDING. Re-uploads while pending replace the previous receipt.
func (d *Due) AttachReceipt(objectKey string) error {
	if d.Status == DueStatusPaid {
		return shared.NewDomainError("ALREADY_PAID", "Cannot attach a receipt to a paid due")
	}
	if objectKey == "" {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt object key cannot be empty")
	}

	now := time.Now()
	d.ReceiptObjectKey = &objectKey
	d.ReceiptUploadedAt = &now
	d.Status = DueStatusReceiptPending
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDueReceiptAttachedEvent(d))

	return nil
}

// MarkPaid accepts the due's payment. approvedBy is nil for automatic
// acceptance by reconciliation.
func (d *Due) MarkPaid(kind ApprovalKind, approvedBy *uuid.UUID) error {
	if d.Status == DueStatusPaid {
		return shared.NewDomainError("ALREADY_PAID", "Due has already been paid")
	}
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Approval kind is not valid")
	}
	if kind == ApprovalKindManual && approvedBy == nil {
		return shared.NewDomainError("INVALID_INPUT", "Manual approval requires an approver")
	}

	now := time.Now()
	d.Status = DueStatusPaid
	d.PaymentDate = &now
	d.ApprovalKind = &kind
	d.ApprovedBy = approvedBy
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDuePaidEvent(d, kind))

	return nil
}

// RevertToUnpaid undoes a paid due. The caller is responsible for posting
// the reversing ledger entry for the payment that was recorded.
func (d *Due) RevertToUnpaid() error {
	if d.Status != DueStatusPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot revert due in %s status", d.Status))
	}

	d.Status = DueStatusUnpaid
	d.PaymentDate = nil
	d.ApprovalKind = nil
	d.ApprovedBy = nil
	// receipt reference is kept for audit
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDueRevertedEvent(d))

	return nil
}

// PeriodOf returns the "YYYY-MM" period identifier for a date
func PeriodOf(date time.Time) string {
	return fmt.Sprintf("%04d-%02d", date.Year(), date.Month())
}

// GetAmountMoney returns the due amount as Money
func (d *Due) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyTRY(d.Amount)
}

// IsPaid returns true if the due has been paid
func (d *Due) IsPaid() bool {
	return d.Status == DueStatusPaid
}

// IsReceiptPending returns true if a receipt awaits review
func (d *Due) IsReceiptPending() bool {
	return d.Status == DueStatusReceiptPending
}

// IsOverdue returns true if the due is past its date and not paid
func (d *Due) IsOverdue() bool {
	if d.Status == DueStatusPaid {
		return false
	}
	return time.Now().After(d.DueDate)
}
