package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
	"github.com/angelmondragon/courierdesk-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Notice is a notification that has not been stored yet.
type Notice struct {
	RecipientUserID uuid.UUID
	Type            enums.NotificationType
	Title           string
	Message         string
	OrderID         *uuid.UUID
}

// EmitterOptions configures the dispatcher.
type EmitterOptions struct {
	Buffer  int
	Workers int
	Logger  *logger.Logger
	Metrics *metrics.FulfillmentMetrics
}

// Emitter stores notices asynchronously after the order transaction commits.
// Notify never blocks and a failed insert never reaches the caller.
type Emitter struct {
	repo    Repository
	queue   chan []Notice
	workers int
	logg    *logger.Logger
	metrics *metrics.FulfillmentMetrics
	now     func() time.Time
}

func NewEmitter(repo Repository, opts EmitterOptions) (*Emitter, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if opts.Buffer <= 0 {
		return nil, fmt.Errorf("notification buffer must be positive")
	}
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("notification workers must be positive")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Emitter{
		repo:    repo,
		queue:   make(chan []Notice, opts.Buffer),
		workers: opts.Workers,
		logg:    logg,
		metrics: opts.Metrics,
		now:     time.Now,
	}, nil
}

// Notify queues the notices as one batch. When the queue is full the batch is
// dropped and logged.
func (e *Emitter) Notify(ctx context.Context, notices ...Notice) {
	if len(notices) == 0 {
		return
	}
	select {
	case e.queue <- notices:
	default:
		e.metrics.AddNotifications(metrics.NotificationDropped, len(notices))
		logCtx := e.logg.WithField(ctx, "dropped", len(notices))
		e.logg.Warn(logCtx, "notification queue full, dropping notices")
	}
}

// Run starts the workers and blocks until ctx is cancelled. Batches still
// queued at shutdown are stored before Run returns; stores run on a context
// detached from ctx.
func (e *Emitter) Run(ctx context.Context) {
	storeCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batch := <-e.queue:
					_ = e.Deliver(storeCtx, batch...)
				}
			}
		}()
	}
	wg.Wait()

	for {
		select {
		case batch := <-e.queue:
			_ = e.Deliver(storeCtx, batch...)
		default:
			return
		}
	}
}

// Deliver stores the notices synchronously. Every notice is attempted; the
// combined error is logged and returned for callers that want it.
func (e *Emitter) Deliver(ctx context.Context, notices ...Notice) error {
	var errs error
	delivered := 0
	for _, n := range notices {
		if n.RecipientUserID == uuid.Nil {
			errs = multierr.Append(errs, fmt.Errorf("notice %q has no recipient", n.Title))
			continue
		}
		row := &models.Notification{
			ID:              uuid.New(),
			RecipientUserID: n.RecipientUserID,
			Type:            n.Type,
			Title:           n.Title,
			Message:         n.Message,
			OrderID:         n.OrderID,
			CreatedAt:       e.now().UTC(),
		}
		if err := e.repo.Create(ctx, row); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store notification for %s: %w", n.RecipientUserID, err))
			continue
		}
		delivered++
	}

	e.metrics.AddNotifications(metrics.NotificationEmitted, delivered)
	if failed := len(multierr.Errors(errs)); failed > 0 {
		e.metrics.AddNotifications(metrics.NotificationFailed, failed)
		logCtx := e.logg.WithFields(ctx, map[string]any{"failed": failed, "delivered": delivered})
		e.logg.Error(logCtx, "notification delivery failed", errs)
	}
	return errs
}
