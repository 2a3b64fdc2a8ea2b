package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/domain/directory"
	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

// DuesService provides application-level due lifecycle operations
type DuesService struct {
	dueRepo        finance.DueRepository
	residentRepo   directory.ResidentRepository
	storage        ObjectStorageService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// DuesServiceConfig holds dependencies for DuesService
type DuesServiceConfig struct {
	DueRepo        finance.DueRepository
	ResidentRepo   directory.ResidentRepository
	Storage        ObjectStorageService
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewDuesService creates a new DuesService
func NewDuesService(cfg DuesServiceConfig) *DuesService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuesService{
		dueRepo:        cfg.DueRepo,
		residentRepo:   cfg.ResidentRepo,
		storage:        cfg.Storage,
		eventPublisher: cfg.EventPublisher,
		logger:         logger,
	}
}

// DueResponse represents a due in API responses
type DueResponse struct {
	ID                uuid.UUID       `json:"id"`
	ResidentID        uuid.UUID       `json:"resident_id"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	DueDate           time.Time       `json:"due_date"`
	Period            string          `json:"period"`
	Status            string          `json:"status"`
	ReceiptUploadedAt *time.Time      `json:"receipt_uploaded_at,omitempty"`
	HasReceipt        bool            `json:"has_receipt"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty"`
	ApprovalKind      *string         `json:"approval_kind,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	Version           int             `json:"version"`
}

// AssignDueRequest represents a request to assign a due to one resident
type AssignDueRequest struct {
	ResidentID  uuid.UUID       `json:"resident_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	DueDate     time.Time       `json:"due_date" binding:"required"`
}

// AssignAllRequest represents a request to assign the same due to every
// active resident of the building
type AssignAllRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
	DueDate     time.Time       `json:"due_date" binding:"required"`
}

// AssignAllResult reports the outcome of a bulk assignment
type AssignAllResult struct {
	CreatedCount int `json:"created_count"`
	SkippedCount int `json:"skipped_count"`
}

// DueListFilter defines filtering options for due list queries
type DueListFilter struct {
	Status     string     `form:"status"`
	ResidentID *uuid.UUID `form:"resident_id"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// MonthlySummaryResponse summarizes a resident's dues for one month
type MonthlySummaryResponse struct {
	Period      string          `json:"period"`
	Dues        []DueResponse   `json:"dues"`
	TotalDue    decimal.Decimal `json:"total_due"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	TotalUnpaid decimal.Decimal `json:"total_unpaid"`
}

// AssignDue assigns a due to a single resident after validating that the
// resident belongs to the tenant and is active
func (s *DuesService) AssignDue(ctx context.Context, tenantID uuid.UUID, req AssignDueRequest) (*DueResponse, error) {
	resident, err := s.residentRepo.FindByIDForTenant(ctx, tenantID, req.ResidentID)
	if err != nil {
		return nil, err
	}
	if !resident.Active {
		return nil, shared.NewDomainError("INVALID_RESIDENT", "Cannot assign dues to an inactive resident")
	}

	due, err := finance.NewDue(tenantID, resident.ID, valueobject.NewMoneyTRY(req.Amount), req.Description, req.DueDate)
	if err != nil {
		return nil, err
	}

	exists, err := s.dueRepo.ExistsForPeriod(ctx, tenantID, resident.ID, due.Description, due.Period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Resident already has this due for the period")
	}

	if err := s.dueRepo.Save(ctx, due); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, due)

	resp := toDueResponse(due)
	return &resp, nil
}

// AssignToAllResidents assigns the same due to every active resident,
// skipping residents that already have it for the period. Each save stands
// alone: one failing resident does not roll back the others.
func (s *DuesService) AssignToAllResidents(ctx context.Context, tenantID uuid.UUID, req AssignAllRequest) (*AssignAllResult, error) {
	residents, err := s.residentRepo.FindActiveForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := &AssignAllResult{}
	period := finance.PeriodOf(req.DueDate)
	assigned := make([]uuid.UUID, 0, len(residents))

	for i := range residents {
		resident := &residents[i]

		exists, err := s.dueRepo.ExistsForPeriod(ctx, tenantID, resident.ID, req.Description, period)
		if err != nil {
			return nil, err
		}
		if exists {
			result.SkippedCount++
			continue
		}

		due, err := finance.NewDue(tenantID, resident.ID, valueobject.NewMoneyTRY(req.Amount), req.Description, req.DueDate)
		if err != nil {
			return nil, err
		}

		if err := s.dueRepo.Save(ctx, due); err != nil {
			// the unique index catches races with a concurrent assignment
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "ALREADY_EXISTS" {
				result.SkippedCount++
				continue
			}
			return nil, err
		}

		s.publishEvents(ctx, due)
		assigned = append(assigned, resident.ID)
		result.CreatedCount++
	}

	// One batched fan-out on top of the per-resident events, so the
	// notification layer can announce the assignment in a single send.
	if s.eventPublisher != nil && len(assigned) > 0 {
		evt := finance.NewDuesBulkAssignedEvent(tenantID, assigned, req.Amount, req.Description, req.DueDate)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Failed to publish bulk assignment event",
				zap.String("tenant_id", tenantID.String()), zap.Error(err))
		}
	}

	return result, nil
}

// Get returns a single due for the tenant
func (s *DuesService) Get(ctx context.Context, tenantID, id uuid.UUID) (*DueResponse, error) {
	due, err := s.dueRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := toDueResponse(due)
	return &resp, nil
}

// List lists dues for a tenant with filtering
func (s *DuesService) List(ctx context.Context, tenantID uuid.UUID, filter DueListFilter) ([]DueResponse, int64, error) {
	domainFilter := toDueDomainFilter(filter)

	dues, err := s.dueRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.dueRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return toDueResponses(dues), total, nil
}

// ListForResident lists the caller's own dues
func (s *DuesService) ListForResident(ctx context.Context, tenantID, residentID uuid.UUID, filter DueListFilter) ([]DueResponse, error) {
	dues, err := s.dueRepo.FindByResident(ctx, tenantID, residentID, toDueDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	return toDueResponses(dues), nil
}

// MonthlySummary summarizes a resident's dues for the month containing now
func (s *DuesService) MonthlySummary(ctx context.Context, tenantID, residentID uuid.UUID, now time.Time) (*MonthlySummaryResponse, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	filter := finance.DueFilter{FromDate: &monthStart, ToDate: &monthEnd}
	dues, err := s.dueRepo.FindByResident(ctx, tenantID, residentID, filter)
	if err != nil {
		return nil, err
	}

	summary := &MonthlySummaryResponse{
		Period:      finance.PeriodOf(now),
		Dues:        toDueResponses(dues),
		TotalDue:    decimal.Zero,
		TotalPaid:   decimal.Zero,
		TotalUnpaid: decimal.Zero,
	}
	for i := range dues {
		summary.TotalDue = summary.TotalDue.Add(dues[i].Amount)
		if dues[i].IsPaid() {
			summary.TotalPaid = summary.TotalPaid.Add(dues[i].Amount)
		} else {
			summary.TotalUnpaid = summary.TotalUnpaid.Add(dues[i].Amount)
		}
	}
	return summary, nil
}

// ReviewQueue lists dues with uploaded receipts awaiting review, newest first
func (s *DuesService) ReviewQueue(ctx context.Context, tenantID uuid.UUID, filter DueListFilter) ([]DueResponse, error) {
	dues, err := s.dueRepo.FindReceiptPending(ctx, tenantID, toDueDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	return toDueResponses(dues), nil
}

// ReceiptDownloadURL returns a short-lived URL for viewing a due's receipt
func (s *DuesService) ReceiptDownloadURL(ctx context.Context, tenantID, id uuid.UUID) (string, error) {
	due, err := s.dueRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return "", err
	}
	if due.ReceiptObjectKey == nil {
		return "", shared.NewDomainError("NOT_FOUND", "Due has no uploaded receipt")
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, *due.ReceiptObjectKey, 15*time.Minute)
	return url, err
}

// Approve marks a due paid on an administrator's decision and posts the
// matching income entry to the ledger in the same transaction
func (s *DuesService) Approve(ctx context.Context, tenantID, id, approvedBy uuid.UUID) (*DueResponse, error) {
	due, err := s.dueRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if due.TenantID != tenantID {
		return nil, shared.ErrForbidden
	}

	if err := due.MarkPaid(finance.ApprovalKindManual, &approvedBy); err != nil {
		return nil, err
	}

	entry, err := s.paymentEntry(due, fmt.Sprintf("Aidat Ödemesi: %s", due.Description))
	if err != nil {
		return nil, err
	}

	if err := s.dueRepo.SaveWithLockAndEntry(ctx, due, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, due)

	resp := toDueResponse(due)
	return &resp, nil
}

// Toggle flips a due's paid state through the regular transition paths.
// Un-marking a paid due posts a reversing ledger entry so the ledger sum
// stays consistent with due states.
func (s *DuesService) Toggle(ctx context.Context, tenantID, id, actorID uuid.UUID) (*DueResponse, error) {
	due, err := s.dueRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if due.TenantID != tenantID {
		return nil, shared.ErrForbidden
	}

	var entry *finance.LedgerEntry
	if due.IsPaid() {
		if err := due.RevertToUnpaid(); err != nil {
			return nil, err
		}
		entry, err = s.reversalEntry(due, fmt.Sprintf("Aidat Ödemesi İptali: %s", due.Description))
		if err != nil {
			return nil, err
		}
	} else {
		if err := due.MarkPaid(finance.ApprovalKindManual, &actorID); err != nil {
			return nil, err
		}
		entry, err = s.paymentEntry(due, fmt.Sprintf("Aidat Ödemesi: %s", due.Description))
		if err != nil {
			return nil, err
		}
	}

	if err := s.dueRepo.SaveWithLockAndEntry(ctx, due, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, due)

	resp := toDueResponse(due)
	return &resp, nil
}

func (s *DuesService) paymentEntry(due *finance.Due, description string) (*finance.LedgerEntry, error) {
	dueID := due.ID
	residentID := due.ResidentID
	return finance.NewLedgerEntry(
		due.TenantID,
		valueobject.NewMoneyTRY(due.Amount),
		description,
		time.Now(),
		finance.EntrySourceDuesPayment,
		&dueID,
		&residentID,
	)
}

func (s *DuesService) reversalEntry(due *finance.Due, description string) (*finance.LedgerEntry, error) {
	dueID := due.ID
	residentID := due.ResidentID
	return finance.NewLedgerEntry(
		due.TenantID,
		valueobject.NewMoneyTRY(due.Amount.Neg()),
		description,
		time.Now(),
		finance.EntrySourceDuesPayment,
		&dueID,
		&residentID,
	)
}

func (s *DuesService) publishEvents(ctx context.Context, due *finance.Due) {
	if s.eventPublisher == nil {
		return
	}
	events := due.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish due events", zap.Error(err), zap.String("due_id", due.ID.String()))
	}
	due.ClearDomainEvents()
}

func toDueDomainFilter(filter DueListFilter) finance.DueFilter {
	domainFilter := finance.DueFilter{
		ResidentID: filter.ResidentID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Status != "" {
		status := finance.DueStatus(filter.Status)
		domainFilter.Status = &status
	}
	return domainFilter
}

func toDueResponse(d *finance.Due) DueResponse {
	var kind *string
	if d.ApprovalKind != nil {
		k := string(*d.ApprovalKind)
		kind = &k
	}
	return DueResponse{
		ID:                d.ID,
		ResidentID:        d.ResidentID,
		Amount:            d.Amount,
		Description:       d.Description,
		DueDate:           d.DueDate,
		Period:            d.Period,
		Status:            d.Status.String(),
		ReceiptUploadedAt: d.ReceiptUploadedAt,
		HasReceipt:        d.ReceiptObjectKey != nil,
		PaymentDate:       d.PaymentDate,
		ApprovalKind:      kind,
		CreatedAt:         d.CreatedAt,
		Version:           d.GetVersion(),
	}
}

func toDueResponses(dues []finance.Due) []DueResponse {
	responses := make([]DueResponse, len(dues))
	for i := range dues {
		responses[i] = toDueResponse(&dues[i])
	}
	return responses
}
