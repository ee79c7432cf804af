package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CommissionCalculations counts allocator runs by outcome (ok, clamped).
	CommissionCalculations *prometheus.CounterVec
	// CommissionAmount accumulates total commission persisted on invoices.
	CommissionAmount prometheus.Counter
	// InvoiceTransitions counts invoice status changes.
	InvoiceTransitions *prometheus.CounterVec
	// GateAttempts counts unlock attempts by result (success, failure, locked).
	GateAttempts *prometheus.CounterVec
	// DashboardCache counts dashboard cache lookups by result (hit, miss).
	DashboardCache *prometheus.CounterVec
	// DBQueryDuration tracks query latency per named query.
	DBQueryDuration *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
// Only the first call has an effect.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CommissionCalculations = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_calculations_total",
			Help:      "Count of commission allocations by outcome.",
		}, []string{"result"}))
		CommissionAmount = registerOrReuse(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_amount_total",
			Help:      "Sum of total commission recorded on saved invoices.",
		}))
		InvoiceTransitions = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_status_transitions_total",
			Help:      "Count of invoice status transitions.",
		}, []string{"from", "to"}))
		GateAttempts = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_unlock_attempts_total",
			Help:      "Count of passphrase gate unlock attempts by result.",
		}, []string{"result"}))
		DashboardCache = registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_lookups_total",
			Help:      "Dashboard summary cache lookups by result.",
		}, []string{"result"}))
		DBQueryDuration = registerOrReuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_ms",
			Help:      "Postgres query latency in milliseconds by query name.",
			Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"query", "outcome"}))
	})
}

// ObserveCommission records one allocator run. Safe to call before registration.
func ObserveCommission(clamped bool) {
	if CommissionCalculations == nil {
		return
	}
	result := "ok"
	if clamped {
		result = "clamped"
	}
	CommissionCalculations.WithLabelValues(result).Inc()
}

// ObserveCommissionAmount adds a persisted invoice commission. Negative values are ignored.
func ObserveCommissionAmount(v float64) {
	if CommissionAmount == nil || v <= 0 {
		return
	}
	CommissionAmount.Add(v)
}

// ObserveInvoiceTransition records an invoice status change.
func ObserveInvoiceTransition(from, to string) {
	if InvoiceTransitions == nil {
		return
	}
	InvoiceTransitions.WithLabelValues(from, to).Inc()
}

// ObserveGateAttempt records an unlock attempt outcome.
func ObserveGateAttempt(result string) {
	if GateAttempts == nil {
		return
	}
	GateAttempts.WithLabelValues(result).Inc()
}

// ObserveDashboardCache records a dashboard cache lookup.
func ObserveDashboardCache(hit bool) {
	if DashboardCache == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	DashboardCache.WithLabelValues(result).Inc()
}

// ObserveQuery records the latency of a named query.
func ObserveQuery(name string, d time.Duration, failed bool) {
	if DBQueryDuration == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	DBQueryDuration.WithLabelValues(name, outcome).Observe(DurationMillis(d))
}
