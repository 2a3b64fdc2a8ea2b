package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitefund/backend/internal/domain/directory"
	"github.com/sitefund/backend/internal/domain/finance"
	"github.com/sitefund/backend/internal/domain/shared"
)

// defaultQueueSize bounds how many pending pushes may pile up before
// publishers start dropping
const defaultQueueSize = 256

// Dispatcher turns due lifecycle events into push notifications for the
// affected resident. Delivery runs on a small worker pool so a slow gateway
// never blocks the publisher.
type Dispatcher struct {
	residents directory.ResidentRepository
	sender    PushSender
	logger    *zap.Logger

	queue   chan pushJob
	workers int
	wg      sync.WaitGroup
	once    sync.Once
}

type pushJob struct {
	tenantID   uuid.UUID
	residentID uuid.UUID
	title      string
	body       string

	// residentIDs set means a batched fan-out instead of a single push
	residentIDs []uuid.UUID
}

// NewDispatcher creates a dispatcher with the given worker count
func NewDispatcher(residents directory.ResidentRepository, sender PushSender, workers int, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	return &Dispatcher{
		residents: residents,
		sender:    sender,
		logger:    logger,
		queue:     make(chan pushJob, defaultQueueSize),
		workers:   workers,
	}
}

// EventTypes returns the due lifecycle events the dispatcher reacts to
func (d *Dispatcher) EventTypes() []string {
	return []string{"DueAssigned", "DuesBulkAssigned", "DuePaid", "DueReviewPending"}
}

// Handle enqueues a notification for the event's resident. A full queue
// drops the notification; dues state is authoritative and pushes are only
// a convenience.
func (d *Dispatcher) Handle(ctx context.Context, evt shared.DomainEvent) error {
	job, ok := d.jobFor(evt)
	if !ok {
		return nil
	}

	select {
	case d.queue <- job:
	default:
		d.logger.Warn("notification queue full, dropping push",
			zap.String("event_type", evt.EventType()),
			zap.String("resident_id", job.residentID.String()),
		)
	}
	return nil
}

// Start launches the worker pool
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

// Stop closes the queue and waits for in-flight deliveries
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for job := range d.queue {
		if len(job.residentIDs) > 0 {
			d.deliverBatch(ctx, job)
			continue
		}
		d.deliver(ctx, job)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, job pushJob) {
	resident, err := d.residents.FindByIDForTenant(ctx, job.tenantID, job.residentID)
	if err != nil {
		d.logger.Warn("cannot resolve resident for push",
			zap.String("resident_id", job.residentID.String()),
			zap.Error(err),
		)
		return
	}
	if resident.PushToken == nil {
		return
	}

	err = d.sender.Send(ctx, PushMessage{
		DeviceToken: *resident.PushToken,
		Title:       job.title,
		Body:        job.body,
	})
	if err != nil {
		d.logger.Warn("push delivery failed",
			zap.String("resident_id", job.residentID.String()),
			zap.Error(err),
		)
	}
}

// deliverBatch resolves every resident's device token and hands the whole
// fan-out to the gateway in one call
func (d *Dispatcher) deliverBatch(ctx context.Context, job pushJob) {
	tokens := make([]string, 0, len(job.residentIDs))
	for _, residentID := range job.residentIDs {
		resident, err := d.residents.FindByIDForTenant(ctx, job.tenantID, residentID)
		if err != nil {
			d.logger.Warn("cannot resolve resident for batch push",
				zap.String("resident_id", residentID.String()),
				zap.Error(err),
			)
			continue
		}
		if resident.PushToken == nil {
			continue
		}
		tokens = append(tokens, *resident.PushToken)
	}
	if len(tokens) == 0 {
		return
	}

	err := d.sender.SendBatch(ctx, BatchPushMessage{
		DeviceTokens: tokens,
		Title:        job.title,
		Body:         job.body,
	})
	if err != nil {
		d.logger.Warn("batch push delivery failed",
			zap.Int("recipients", len(tokens)),
			zap.Error(err),
		)
	}
}

// jobFor builds the resident-facing message for an event
func (d *Dispatcher) jobFor(evt shared.DomainEvent) (pushJob, bool) {
	switch e := evt.(type) {
	case *finance.DueAssignedEvent:
		return pushJob{
			tenantID:   e.TenantID(),
			residentID: e.ResidentID,
			title:      "Yeni Aidat",
			body:       fmt.Sprintf("%s: %s TL", e.Description, e.Amount.StringFixed(2)),
		}, true
	case *finance.DuesBulkAssignedEvent:
		return pushJob{
			tenantID:    e.TenantID(),
			residentIDs: e.ResidentIDs,
			title:       "Yeni Aidat",
			body:        fmt.Sprintf("%s: %s TL", e.Description, e.Amount.StringFixed(2)),
		}, true
	case *finance.DuePaidEvent:
		return pushJob{
			tenantID:   e.TenantID(),
			residentID: e.ResidentID,
			title:      "Ödeme Onaylandı",
			body:       fmt.Sprintf("%s ödemeniz onaylandı.", e.Description),
		}, true
	case *finance.DueReviewPendingEvent:
		return pushJob{
			tenantID:   e.TenantID(),
			residentID: e.ResidentID,
			title:      "Dekont İncelemede",
			body:       "Dekontunuz yönetici onayı bekliyor.",
		}, true
	default:
		return pushJob{}, false
	}
}

var _ shared.EventHandler = (*Dispatcher)(nil)
