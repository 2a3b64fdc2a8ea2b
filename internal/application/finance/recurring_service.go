package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/domain/directory"
	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
	"github.com/sitefund/backend/internal/domain/shared/valueobject"
)

// generationRunTTL keeps daily run markers long enough to survive any
// cron retry window while letting stale keys expire eventually.
const generationRunTTL = 48 * time.Hour

// RecurringServiceConfig holds dependencies for RecurringService
type RecurringServiceConfig struct {
	RuleRepo         finance.RecurringRuleRepository
	DueRepo          finance.DueRepository
	ResidentRepo     directory.ResidentRepository
	IdempotencyStore shared.IdempotencyStore
	EventPublisher   shared.EventPublisher
	Logger           *zap.Logger
}

// RecurringService manages recurring due rules and runs the daily
// generation pass that assigns dues from rules firing today.
type RecurringService struct {
	ruleRepo         finance.RecurringRuleRepository
	dueRepo          finance.DueRepository
	residentRepo     directory.ResidentRepository
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(cfg RecurringServiceConfig) *RecurringService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecurringService{
		ruleRepo:         cfg.RuleRepo,
		dueRepo:          cfg.DueRepo,
		residentRepo:     cfg.ResidentRepo,
		idempotencyStore: cfg.IdempotencyStore,
		eventPublisher:   cfg.EventPublisher,
		logger:           logger,
	}
}

// RecurringRuleResponse represents a recurring rule in API responses
type RecurringRuleResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DayOfMonth  int             `json:"day_of_month"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateRecurringRuleRequest represents a request to create a recurring rule
type CreateRecurringRuleRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DayOfMonth  int             `json:"day_of_month" binding:"required,min=1,max=28"`
	CreatedBy   uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// UpdateRecurringRuleRequest represents a request to update a recurring rule
type UpdateRecurringRuleRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DayOfMonth  int             `json:"day_of_month" binding:"required,min=1,max=28"`
}

// GenerationResult summarises one daily generation pass
type GenerationResult struct {
	RunDate      string `json:"run_date"`
	AlreadyRan   bool   `json:"already_ran"`
	RulesFired   int    `json:"rules_fired"`
	CreatedCount int    `json:"created_count"`
	SkippedCount int    `json:"skipped_count"`
}

// List lists recurring rules for a tenant
func (s *RecurringService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RecurringRuleResponse, error) {
	rules, err := s.ruleRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]RecurringRuleResponse, len(rules))
	for i := range rules {
		responses[i] = toRecurringRuleResponse(&rules[i])
	}
	return responses, nil
}

// Create creates a recurring rule. Rule descriptions are unique per tenant
// because the description is part of the generated due's dedup key.
func (s *RecurringService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRecurringRuleRequest) (*RecurringRuleResponse, error) {
	exists, err := s.ruleRepo.ExistsByDescription(ctx, tenantID, req.Description)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A rule with this description already exists")
	}

	rule, err := finance.NewRecurringRule(tenantID, req.Description, valueobject.NewMoneyTRY(req.Amount), req.DayOfMonth, req.CreatedBy)
	if err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	resp := toRecurringRuleResponse(rule)
	return &resp, nil
}

// Update updates a recurring rule
func (s *RecurringService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateRecurringRuleRequest) (*RecurringRuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := rule.Update(req.Description, valueobject.NewMoneyTRY(req.Amount), req.DayOfMonth); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	resp := toRecurringRuleResponse(rule)
	return &resp, nil
}

// Toggle flips a rule's active flag
func (s *RecurringService) Toggle(ctx context.Context, tenantID, id uuid.UUID) (*RecurringRuleResponse, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rule.Toggle()
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	resp := toRecurringRuleResponse(rule)
	return &resp, nil
}

// GenerateDaily runs the generation pass for the given date. The pass is
// idempotent on two levels: a run marker short-circuits repeated calls for
// the same calendar day, and each generated due is deduplicated per
// (resident, description, period) so a partially failed run can be retried
// without double-billing anyone.
func (s *RecurringService) GenerateDaily(ctx context.Context, now time.Time) (*GenerationResult, error) {
	// The calendar day, run marker and period key are all UTC-anchored so
	// every trigger path agrees on which day it is.
	now = now.UTC()
	runDate := now.Format("2006-01-02")
	result := &GenerationResult{RunDate: runDate}

	runKey := "recurring:" + runDate
	if s.idempotencyStore != nil {
		processed, err := s.idempotencyStore.IsProcessed(ctx, runKey)
		if err != nil {
			s.logger.Warn("Idempotency check failed, continuing with per-due dedup",
				zap.String("run_key", runKey), zap.Error(err))
		} else if processed {
			result.AlreadyRan = true
			s.logger.Info("Daily due generation already ran", zap.String("run_date", runDate))
			return result, nil
		}
	}

	rules, err := s.ruleRepo.FindActiveByDay(ctx, now.Day())
	if err != nil {
		return nil, err
	}
	result.RulesFired = len(rules)

	for i := range rules {
		created, skipped, err := s.generateForRule(ctx, &rules[i], now)
		if err != nil {
			// Per-due dedup makes a retry of the whole run safe, so a
			// failing rule must not mark the day as processed.
			return nil, err
		}
		result.CreatedCount += created
		result.SkippedCount += skipped
	}

	if s.idempotencyStore != nil {
		if _, err := s.idempotencyStore.MarkProcessed(ctx, runKey, generationRunTTL); err != nil {
			s.logger.Warn("Failed to mark generation run as processed",
				zap.String("run_key", runKey), zap.Error(err))
		}
	}

	s.logger.Info("Daily due generation completed",
		zap.String("run_date", runDate),
		zap.Int("rules_fired", result.RulesFired),
		zap.Int("created", result.CreatedCount),
		zap.Int("skipped", result.SkippedCount))

	return result, nil
}

func (s *RecurringService) generateForRule(ctx context.Context, rule *finance.RecurringRule, now time.Time) (created, skipped int, err error) {
	residents, err := s.residentRepo.FindActiveForTenant(ctx, rule.TenantID)
	if err != nil {
		return 0, 0, err
	}

	period := rule.PeriodKey(now)
	for i := range residents {
		resident := &residents[i]

		exists, err := s.dueRepo.ExistsForPeriod(ctx, rule.TenantID, resident.ID, rule.Description, period)
		if err != nil {
			return created, skipped, err
		}
		if exists {
			skipped++
			continue
		}

		due, err := finance.NewDue(rule.TenantID, resident.ID, rule.GetAmountMoney(), rule.Description, now)
		if err != nil {
			return created, skipped, err
		}
		if err := s.dueRepo.Save(ctx, due); err != nil {
			// A concurrent run may have inserted the same due between the
			// existence check and the save. The unique index reports it as
			// ALREADY_EXISTS, which is a skip, not a failure.
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "ALREADY_EXISTS" {
				skipped++
				continue
			}
			return created, skipped, err
		}

		s.publishEvents(ctx, due.GetDomainEvents())
		due.ClearDomainEvents()
		created++
	}

	return created, skipped, nil
}

func (s *RecurringService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish due generation events", zap.Error(err))
	}
}

func toRecurringRuleResponse(r *finance.RecurringRule) RecurringRuleResponse {
	return RecurringRuleResponse{
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.Amount,
		DayOfMonth:  r.DayOfMonth,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
