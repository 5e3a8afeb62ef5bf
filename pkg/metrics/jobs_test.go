package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestJobMetricsRecordsRunsAndRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)

	m.ObserveRun("notification-retention", 5*time.Millisecond, nil)
	m.ObserveRun("notification-retention", 5*time.Millisecond, errors.New("boom"))
	m.AddRows("notification-retention", 12)
	m.AddRows("notification-retention", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	assertCounter(t, mfs, "job_runs_total", "outcome", "ok", 1)
	assertCounter(t, mfs, "job_runs_total", "outcome", "error", 1)
	assertCounter(t, mfs, "job_rows_affected_total", "job", "notification-retention", 12)
}

func TestJobMetricsNilSafe(t *testing.T) {
	var m *JobMetrics
	m.ObserveRun("x", time.Second, nil)
	m.AddRows("x", 1)
	NewJobMetrics(nil).ObserveRun("x", time.Second, nil)
}
