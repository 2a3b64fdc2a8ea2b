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

// LedgerService provides read access to the building fund ledger and
// manual posting for administrators
type LedgerService struct {
	ledgerRepo     finance.LedgerEntryRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(ledgerRepo finance.LedgerEntryRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	EntryDate   time.Time       `json:"entry_date"`
	Source      string          `json:"source"`
	SourceID    *uuid.UUID      `json:"source_id,omitempty"`
	ResidentID  *uuid.UUID      `json:"resident_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LedgerListFilter defines filtering options for ledger list queries
type LedgerListFilter struct {
	Source   string     `form:"source"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// CreateManualEntryRequest represents a manual ledger posting. Kind decides
// the sign: EXPENSE postings are stored negative regardless of input sign.
type CreateManualEntryRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Kind        string          `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
	Description string          `json:"description" binding:"required"`
	EntryDate   *time.Time      `json:"entry_date"`
	CreatedBy   *uuid.UUID      `json:"-"` // Set from JWT context, not from request body
}

// FinancialReportResponse summarizes the fund over a period
type FinancialReportResponse struct {
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	DuesIncome      decimal.Decimal `json:"dues_income"`
	EndingBalance   decimal.Decimal `json:"ending_balance"`
}

// List lists ledger entries for a tenant ordered by entry date ascending
func (s *LedgerService) List(ctx context.Context, tenantID uuid.UUID, filter LedgerListFilter) ([]LedgerEntryResponse, int64, error) {
	domainFilter := s.toDomainFilter(filter)

	entries, err := s.ledgerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = toLedgerEntryResponse(&entries[i])
	}
	return responses, total, nil
}

// Balance returns the exact decimal sum of all ledger entries for a tenant
func (s *LedgerService) Balance(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	return s.ledgerRepo.SumForTenant(ctx, tenantID, finance.LedgerEntryFilter{})
}

// Report builds a period summary: balance carried into the period, income
// and outflow within it, and the resulting ending balance
func (s *LedgerService) Report(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*FinancialReportResponse, error) {
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Report period end must be after start")
	}

	starting, err := s.ledgerRepo.SumForTenant(ctx, tenantID, finance.LedgerEntryFilter{ToDate: &from})
	if err != nil {
		return nil, err
	}

	period := finance.LedgerEntryFilter{FromDate: &from, ToDate: &to}
	income, err := s.ledgerRepo.SumIncomeForTenant(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}
	expense, err := s.ledgerRepo.SumOutflowForTenant(ctx, tenantID, period)
	if err != nil {
		return nil, err
	}

	duesSource := finance.EntrySourceDuesPayment
	duesPeriod := period
	duesPeriod.Source = &duesSource
	duesIncome, err := s.ledgerRepo.SumIncomeForTenant(ctx, tenantID, duesPeriod)
	if err != nil {
		return nil, err
	}

	return &FinancialReportResponse{
		From:            from,
		To:              to,
		StartingBalance: starting,
		TotalIncome:     income,
		TotalExpense:    expense,
		DuesIncome:      duesIncome,
		EndingBalance:   starting.Add(income).Sub(expense),
	}, nil
}

// CreateManualEntry appends a manual adjustment to the ledger
func (s *LedgerService) CreateManualEntry(ctx context.Context, tenantID uuid.UUID, req CreateManualEntryRequest) (*LedgerEntryResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Manual entry amount must be positive")
	}

	amount := req.Amount
	if req.Kind == "EXPENSE" {
		amount = amount.Neg()
	}

	entryDate := time.Now()
	if req.EntryDate != nil {
		entryDate = *req.EntryDate
	}

	entry, err := finance.NewLedgerEntry(
		tenantID,
		valueobject.NewMoneyTRY(amount),
		req.Description,
		entryDate,
		finance.EntrySourceManual,
		nil,
		nil,
	)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		entry.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.ledgerRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, entry.GetDomainEvents())
	entry.ClearDomainEvents()

	resp := toLedgerEntryResponse(entry)
	return &resp, nil
}

func (s *LedgerService) toDomainFilter(filter LedgerListFilter) finance.LedgerEntryFilter {
	domainFilter := finance.LedgerEntryFilter{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.OrderBy = "entry_date"
	domainFilter.OrderDir = "asc"

	if filter.Source != "" {
		source := finance.EntrySource(filter.Source)
		domainFilter.Source = &source
	}
	return domainFilter
}

// publishEvents forwards domain events after a successful save. Publishing
// failures are logged and never fail the caller.
func (s *LedgerService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Error(err))
	}
}

func toLedgerEntryResponse(e *finance.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Description: e.Description,
		EntryDate:   e.EntryDate,
		Source:      e.Source.String(),
		SourceID:    e.SourceID,
		ResidentID:  e.ResidentID,
		CreatedAt:   e.CreatedAt,
	}
}
