package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/domain/directory"
	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
)

// ReconciliationService processes uploaded payment receipts: it stores the
// document, runs extraction, and either accepts the payment automatically
// or leaves the due pending manual review. Extraction output is untrusted;
// every failure path degrades to manual review, never to auto-approval or
// rejection.
type ReconciliationService struct {
	dueRepo        finance.DueRepository
	tenantRepo     directory.TenantRepository
	storage        ObjectStorageService
	extraction     ReceiptExtractionService
	matchPolicy    *finance.ReceiptMatchPolicy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	extractTimeout time.Duration
}

// ReconciliationServiceConfig holds dependencies for ReconciliationService
type ReconciliationServiceConfig struct {
	DueRepo        finance.DueRepository
	TenantRepo     directory.TenantRepository
	Storage        ObjectStorageService
	Extraction     ReceiptExtractionService
	MatchPolicy    *finance.ReceiptMatchPolicy
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
	ExtractTimeout time.Duration
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(cfg ReconciliationServiceConfig) *ReconciliationService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := cfg.MatchPolicy
	if policy == nil {
		policy = finance.NewReceiptMatchPolicy()
	}
	timeout := cfg.ExtractTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ReconciliationService{
		dueRepo:        cfg.DueRepo,
		tenantRepo:     cfg.TenantRepo,
		storage:        cfg.Storage,
		extraction:     cfg.Extraction,
		matchPolicy:    policy,
		eventPublisher: cfg.EventPublisher,
		logger:         logger,
		extractTimeout: timeout,
	}
}

// ReceiptUploadResult reports how an uploaded receipt was handled
type ReceiptUploadResult struct {
	Due          DueResponse `json:"due"`
	AutoApproved bool        `json:"auto_approved"`
	Detail       string      `json:"detail"`
}

// ProcessReceipt stores the uploaded receipt for the resident's due and runs
// reconciliation. residentID is the authenticated caller; uploading to a due
// owned by someone else is forbidden.
func (s *ReconciliationService) ProcessReceipt(
	ctx context.Context,
	tenantID, dueID, residentID uuid.UUID,
	data []byte,
	contentType string,
) (*ReceiptUploadResult, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt file is empty")
	}

	due, err := s.dueRepo.FindByID(ctx, dueID)
	if err != nil {
		return nil, err
	}
	if due.TenantID != tenantID {
		return nil, shared.ErrForbidden
	}
	if due.ResidentID != residentID {
		return nil, shared.ErrForbidden
	}
	if due.IsPaid() {
		return nil, shared.ErrAlreadyPaid
	}

	objectKey := fmt.Sprintf("receipts/%s/%s/%s", tenantID, dueID, uuid.New())
	if err := s.storage.Upload(ctx, objectKey, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	if err := due.AttachReceipt(objectKey); err != nil {
		return nil, err
	}
	if err := s.dueRepo.SaveWithLock(ctx, due); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, due)

	decision := s.reconcile(ctx, due, data, contentType)
	if !decision.Approved() {
		s.logger.Info("Receipt left for manual review",
			zap.String("due_id", due.ID.String()),
			zap.String("reason", decision.Reason))
		due.AddDomainEvent(finance.NewDueReviewPendingEvent(due, decision.Reason))
		s.publishEvents(ctx, due)

		return &ReceiptUploadResult{Due: toDueResponse(due), AutoApproved: false, Detail: decision.Reason}, nil
	}

	if err := due.MarkPaid(finance.ApprovalKindAuto, nil); err != nil {
		return nil, err
	}
	dueRef := due.ID
	residentRef := due.ResidentID
	entry, err := finance.NewLedgerEntry(
		due.TenantID,
		due.GetAmountMoney(),
		fmt.Sprintf("Aidat Ödemesi (Otomatik Onay): %s", due.Description),
		time.Now(),
		finance.EntrySourceDuesPayment,
		&dueRef,
		&residentRef,
	)
	if err != nil {
		return nil, err
	}
	if err := s.dueRepo.SaveWithLockAndEntry(ctx, due, entry); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, due)

	s.logger.Info("Receipt auto-approved",
		zap.String("due_id", due.ID.String()),
		zap.String("amount", due.Amount.String()))

	return &ReceiptUploadResult{Due: toDueResponse(due), AutoApproved: true, Detail: decision.Reason}, nil
}

// reconcile runs extraction and the match policy. Any infrastructure error
// yields a manual-review decision.
func (s *ReconciliationService) reconcile(ctx context.Context, due *finance.Due, data []byte, contentType string) finance.MatchDecision {
	tenant, err := s.tenantRepo.FindByID(ctx, due.TenantID)
	if err != nil {
		s.logger.Warn("Could not load tenant for reconciliation", zap.Error(err))
		return finance.MatchDecision{Outcome: finance.MatchOutcomeManualReview, Reason: "building details unavailable"}
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()

	extracted, err := s.extraction.Extract(extractCtx, data, contentType)
	if err != nil {
		s.logger.Warn("Receipt extraction failed",
			zap.String("due_id", due.ID.String()),
			zap.Error(err))
		return finance.MatchDecision{Outcome: finance.MatchOutcomeManualReview, Reason: "receipt extraction unavailable"}
	}

	return s.matchPolicy.Evaluate(due, tenant.ExpectedRecipientName(), extracted)
}

func (s *ReconciliationService) publishEvents(ctx context.Context, due *finance.Due) {
	if s.eventPublisher == nil {
		due.ClearDomainEvents()
		return
	}
	events := due.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish due events", zap.Error(err))
	}
	due.ClearDomainEvents()
}
