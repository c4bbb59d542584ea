package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingRunMetrics records metadata for billing generation runs.
type BillingRunMetrics struct {
	duration *prometheus.HistogramVec
	bills    *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewBillingRunMetrics registers the billing run metrics on the provided registerer.
func NewBillingRunMetrics(reg prometheus.Registerer) *BillingRunMetrics {
	if reg == nil {
		return &BillingRunMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "billing_run_duration_seconds",
		Help:    "Duration of billing generation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})
	bills := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_bills_total",
		Help: "Bills produced by generation runs, by outcome.",
	}, []string{"scope", "outcome"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_run_failures_total",
		Help: "Billing generation runs that returned an error.",
	}, []string{"scope"})
	reg.MustRegister(duration, bills, failure)
	return &BillingRunMetrics{
		duration: duration,
		bills:    bills,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named run scope.
func (b *BillingRunMetrics) ObserveDuration(scope string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(scope)).Observe(duration.Seconds())
}

// IncCreated counts a freshly created bill.
func (b *BillingRunMetrics) IncCreated(scope string) {
	b.incBill(scope, "created")
}

// IncUpdated counts a bill regenerated in place for the same window.
func (b *BillingRunMetrics) IncUpdated(scope string) {
	b.incBill(scope, "updated")
}

// IncSkipped counts a customer with no activity in the window.
func (b *BillingRunMetrics) IncSkipped(scope string) {
	b.incBill(scope, "skipped")
}

// IncFailure increments the failure counter for the named run scope.
func (b *BillingRunMetrics) IncFailure(scope string) {
	if b == nil || b.failure == nil {
		return
	}
	b.failure.WithLabelValues(normalizeLabel(scope)).Inc()
}

func (b *BillingRunMetrics) incBill(scope, outcome string) {
	if b == nil || b.bills == nil {
		return
	}
	b.bills.WithLabelValues(normalizeLabel(scope), outcome).Inc()
}

func normalizeLabel(scope string) string {
	if scope == "" {
		return "unknown"
	}
	return scope
}
