package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records order transition and notification outcomes.
type FulfillmentMetrics struct {
	transitions   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	conflicts     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	lowStock      prometheus.Counter
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Committed order status transitions by delivery boundary crossing.",
	}, []string{"crossing"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_operation_duration_seconds",
		Help:    "Duration of fulfillment operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_conflicts_total",
		Help: "Fulfillment operations rejected because the order changed concurrently.",
	}, []string{"operation"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notification dispatch results.",
	}, []string{"result"})
	lowStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_total",
		Help: "Products that crossed their low stock threshold on delivery.",
	})
	reg.MustRegister(transitions, duration, conflicts, notifications, lowStock)
	return &FulfillmentMetrics{
		transitions:   transitions,
		duration:      duration,
		conflicts:     conflicts,
		notifications: notifications,
		lowStock:      lowStock,
	}
}

// Notification results.
const (
	NotificationEmitted = "emitted"
	NotificationFailed  = "failed"
	NotificationDropped = "dropped"
)

// IncTransition counts a committed transition; crossing is none, forward or reverse.
func (m *FulfillmentMetrics) IncTransition(crossing string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(crossing)).Inc()
}

// ObserveOperation records how long an operation took and whether it succeeded.
func (m *FulfillmentMetrics) ObserveOperation(operation string, took time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.duration.WithLabelValues(normalizeLabel(operation), outcome).Observe(took.Seconds())
}

// IncConflict counts an optimistic concurrency rejection.
func (m *FulfillmentMetrics) IncConflict(operation string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

// AddNotifications adds n to the counter for the given result.
func (m *FulfillmentMetrics) AddNotifications(result string, n int) {
	if m == nil || m.notifications == nil || n <= 0 {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(result)).Add(float64(n))
}

// IncLowStock counts a low stock alert.
func (m *FulfillmentMetrics) IncLowStock(n int) {
	if m == nil || m.lowStock == nil || n <= 0 {
		return
	}
	m.lowStock.Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
