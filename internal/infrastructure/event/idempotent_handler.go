package event

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/domain/shared"
)

// defaultDedupTTL bounds how long a delivered event ID is remembered
const defaultDedupTTL = 24 * time.Hour

// IdempotentHandler wraps an EventHandler so a redelivered event is handled
// at most once within the dedup window. The marker is written only after the
// wrapped handler succeeds; a failed event stays eligible for retry.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger) *IdempotentHandler {
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		ttl:     defaultDedupTTL,
		logger:  logger,
	}
}

// EventTypes returns the event types of the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless it was already handled
func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	key := "event:" + evt.EventID().String()

	processed, err := h.store.IsProcessed(ctx, key)
	if err != nil {
		// A broken dedup store must not swallow events; process anyway
		h.logger.Warn("idempotency check failed, processing event",
			zap.String("event_id", evt.EventID().String()),
			zap.Error(err),
		)
	} else if processed {
		h.logger.Debug("skipping duplicate event",
			zap.String("event_type", evt.EventType()),
			zap.String("event_id", evt.EventID().String()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, evt); err != nil {
		return err
	}

	if _, err := h.store.MarkProcessed(ctx, key, h.ttl); err != nil {
		h.logger.Warn("failed to record processed event",
			zap.String("event_id", evt.EventID().String()),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
