package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
)

type fakePruner struct {
	remaining int64
	cutoffs   []time.Time
	limits    []int
	err       error
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return 0, f.err
	}
	n := int64(limit)
	if f.remaining < n {
		n = f.remaining
	}
	f.remaining -= n
	return n, nil
}

func newRetentionJob(t *testing.T, repo *fakePruner, batch int) *notificationRetention {
	t.Helper()
	job, err := NewNotificationRetentionJob(NotificationRetentionParams{
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repository: repo,
		BatchSize:  batch,
	})
	require.NoError(t, err)
	typed, ok := job.(*notificationRetention)
	require.True(t, ok)
	return typed
}

func TestNotificationRetentionDeletesInBatches(t *testing.T) {
	now := time.Date(2026, 3, 31, 8, 0, 0, 0, time.UTC)
	repo := &fakePruner{remaining: 25}
	job := newRetentionJob(t, repo, 10)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, repo.cutoffs, 3)
	require.Equal(t, []int{10, 10, 10}, repo.limits)
	require.True(t, repo.cutoffs[0].Equal(now.Add(-defaultNotificationMaxAge)))
	require.Zero(t, repo.remaining)
}

func TestNotificationRetentionStopsOnExactMultiple(t *testing.T) {
	repo := &fakePruner{remaining: 20}
	job := newRetentionJob(t, repo, 10)

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, repo.cutoffs, 3, "third call confirms nothing is left")
}

func TestNotificationRetentionPropagatesErrors(t *testing.T) {
	repo := &fakePruner{err: errors.New("boom")}
	job := newRetentionJob(t, repo, 10)

	require.Error(t, job.Run(context.Background()))
}

func TestNotificationRetentionValidatesParams(t *testing.T) {
	_, err := NewNotificationRetentionJob(NotificationRetentionParams{Repository: &fakePruner{}})
	require.Error(t, err)
	_, err = NewNotificationRetentionJob(NotificationRetentionParams{Logger: logger.Nop()})
	require.Error(t, err)
}
