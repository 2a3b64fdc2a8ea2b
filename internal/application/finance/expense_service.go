package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

// ExpenseService provides application-level expense operations. Recording
// an expense and its ledger entry is atomic: either both exist or neither.
type ExpenseService struct {
	expenseRepo    finance.ExpenseRepository
	storage        ObjectStorageService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo finance.ExpenseRepository, storage ObjectStorageService, eventPublisher shared.EventPublisher, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		expenseRepo:    expenseRepo,
		storage:        storage,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	HasInvoice  bool            `json:"has_invoice"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	ExpenseDate time.Time       `json:"expense_date" binding:"required"`
	CreatedBy   uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// ExpenseListFilter defines filtering options for expense list queries
type ExpenseListFilter struct {
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// CreateExpense records an expense and posts the negative ledger entry in
// the same transaction
func (s *ExpenseService) CreateExpense(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	amount := valueobject.NewMoneyTRY(req.Amount)

	expense, err := finance.NewExpense(tenantID, req.Description, amount, req.ExpenseDate, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	expenseID := expense.ID
	entry, err := finance.NewLedgerEntry(
		tenantID,
		amount.Negate(),
		req.Description,
		expense.ExpenseDate,
		finance.EntrySourceExpense,
		&expenseID,
		nil,
	)
	if err != nil {
		return nil, err
	}

	if err := s.expenseRepo.SaveWithEntry(ctx, expense, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, entry.GetDomainEvents())
	entry.ClearDomainEvents()

	resp := toExpenseResponse(expense)
	return &resp, nil
}

// List lists expenses for a tenant with filtering
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := finance.ExpenseFilter{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	expenses, err := s.expenseRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenseRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = toExpenseResponse(&expenses[i])
	}
	return responses, total, nil
}

// AttachInvoice stores the invoice document for an expense and records its key
func (s *ExpenseService) AttachInvoice(ctx context.Context, tenantID, id uuid.UUID, data []byte, contentType string) (*ExpenseResponse, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice file is empty")
	}

	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.TenantID != tenantID {
		return nil, shared.ErrForbidden
	}

	objectKey := "invoices/" + tenantID.String() + "/" + id.String()
	if err := s.storage.Upload(ctx, objectKey, data, contentType); err != nil {
		return nil, err
	}
	if err := expense.AttachInvoice(objectKey); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}

	resp := toExpenseResponse(expense)
	return &resp, nil
}

// InvoiceDownloadURL returns a short-lived URL for viewing an expense invoice
func (s *ExpenseService) InvoiceDownloadURL(ctx context.Context, tenantID, id uuid.UUID) (string, error) {
	expense, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return "", err
	}
	if expense.InvoiceObjectKey == nil {
		return "", shared.NewDomainError("NOT_FOUND", "Expense has no uploaded invoice")
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, *expense.InvoiceObjectKey, 15*time.Minute)
	return url, err
}

func (s *ExpenseService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish expense events", zap.Error(err))
	}
}

func toExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		HasInvoice:  e.InvoiceObjectKey != nil,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}
