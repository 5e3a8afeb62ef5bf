package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
	"github.com/angelmondragon/courierdesk-backend/pkg/metrics"
)

const (
	notificationRetentionJob     = "notification-retention"
	defaultNotificationBatch     = 500
	defaultNotificationMaxAge    = 30 * 24 * time.Hour
	maxNotificationBatchesPerRun = 100
)

type notificationPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// NotificationRetentionParams configure the notification sweep. MaxAge and
// BatchSize fall back to 30 days and 500 rows.
type NotificationRetentionParams struct {
	Logger     *logger.Logger
	Repository notificationPruner
	Metrics    *metrics.JobMetrics
	MaxAge     time.Duration
	BatchSize  int
}

type notificationRetention struct {
	logg    *logger.Logger
	repo    notificationPruner
	metrics *metrics.JobMetrics
	maxAge  time.Duration
	batch   int
	now     func() time.Time
}

func NewNotificationRetentionJob(params NotificationRetentionParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultNotificationMaxAge
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultNotificationBatch
	}
	return &notificationRetention{
		logg:    params.Logger,
		repo:    params.Repository,
		metrics: params.Metrics,
		maxAge:  maxAge,
		batch:   batch,
		now:     time.Now,
	}, nil
}

func (j *notificationRetention) Name() string { return notificationRetentionJob }

// Run deletes in batches until a short batch shows nothing older is left.
func (j *notificationRetention) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	var total int64
	for i := 0; i < maxNotificationBatchesPerRun; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		deleted, err := j.repo.DeleteOlderThan(ctx, cutoff, j.batch)
		if err != nil {
			j.metrics.AddRows(notificationRetentionJob, total)
			return fmt.Errorf("delete notifications before %s: %w", cutoff.Format(time.RFC3339), err)
		}
		total += deleted
		if deleted < int64(j.batch) {
			break
		}
	}
	j.metrics.AddRows(notificationRetentionJob, total)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": total,
	})
	j.logg.Info(logCtx, "notification retention complete")
	return nil
}
