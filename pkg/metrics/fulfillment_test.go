package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestFulfillmentMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFulfillmentMetrics(reg)

	m.IncTransition("forward")
	m.IncTransition("forward")
	m.IncTransition("")
	m.IncConflict("transition")
	m.AddNotifications(NotificationEmitted, 2)
	m.AddNotifications(NotificationDropped, 1)
	m.AddNotifications(NotificationFailed, 0)
	m.IncLowStock(3)
	m.ObserveOperation("transition", 20*time.Millisecond, nil)
	m.ObserveOperation("transition", 10*time.Millisecond, errors.New("boom"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	assertCounter(t, mfs, "order_transitions_total", "crossing", "forward", 2)
	assertCounter(t, mfs, "order_transitions_total", "crossing", "unknown", 1)
	assertCounter(t, mfs, "order_conflicts_total", "operation", "transition", 1)
	assertCounter(t, mfs, "notifications_total", "result", NotificationEmitted, 2)
	assertCounter(t, mfs, "notifications_total", "result", NotificationDropped, 1)
	if _, err := fetchCounterValue(mfs, "notifications_total", "result", NotificationFailed); err == nil {
		t.Fatal("zero additions should not create a failed series")
	}

	lowStock := findMetricFamily(mfs, "low_stock_alerts_total")
	if lowStock == nil || lowStock.GetMetric()[0].GetCounter().GetValue() != 3 {
		t.Fatalf("expected low stock counter 3, got %v", lowStock)
	}

	if got, err := fetchHistogramCount(mfs, "order_operation_duration_seconds", "outcome", "error"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got != 1 {
		t.Fatalf("expected one error observation, got %d", got)
	}
}

func TestNilFulfillmentMetricsIsNoop(t *testing.T) {
	var m *FulfillmentMetrics
	m.IncTransition("forward")
	m.IncConflict("transition")
	m.AddNotifications(NotificationEmitted, 1)
	m.IncLowStock(1)
	m.ObserveOperation("transition", time.Second, nil)

	unregistered := NewFulfillmentMetrics(nil)
	unregistered.IncTransition("reverse")
}

func assertCounter(t *testing.T, mfs []*dto.MetricFamily, name, label, value string, want float64) {
	t.Helper()
	got, err := fetchCounterValue(mfs, name, label, value)
	if err != nil {
		t.Fatalf("fetch %s: %v", name, err)
	}
	if got != want {
		t.Fatalf("expected %s{%s=%q}=%v, got %v", name, label, value, want, got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramCount(mfs []*dto.MetricFamily, name, label, value string) (uint64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleCount(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
