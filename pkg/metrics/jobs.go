package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records scheduled maintenance runs.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// NewJobMetrics registers job metrics. A nil registerer yields a no-op recorder.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_runs_total",
		Help: "Scheduled job executions by outcome.",
	}, []string{"job", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of scheduled jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_rows_affected_total",
		Help: "Rows removed or updated by scheduled jobs.",
	}, []string{"job"})
	reg.MustRegister(runs, duration, rows)
	return &JobMetrics{runs: runs, duration: duration, rows: rows}
}

// ObserveRun records one execution of job.
func (m *JobMetrics) ObserveRun(job string, took time.Duration, err error) {
	if m == nil || m.runs == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runs.WithLabelValues(normalizeLabel(job), outcome).Inc()
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(took.Seconds())
}

// AddRows adds n affected rows for job.
func (m *JobMetrics) AddRows(job string, n int64) {
	if m == nil || m.rows == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(job)).Add(float64(n))
}
