package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for case transitions and notification
// dispatch. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Committed transitions by operation and resulting case status
	Transitions *prometheus.CounterVec

	// Dispatch outcomes by notification type and outcome status
	DispatchOutcomes *prometheus.CounterVec

	// Realtime push latency by backend
	PushLatency *prometheus.HistogramVec

	// Cases created by kind
	CasesCreated *prometheus.CounterVec

	// Consistency issues found by the last background check, per tenant
	ConsistencyIssues *prometheus.GaugeVec
}

// New creates a Metrics instance registered to reg. Passing a fresh
// registry keeps tests independent of the global default registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auditflow_capa_transitions_total",
			Help: "Total committed CAPA stage transitions by operation and resulting status",
		}, []string{"operation", "status"}),

		DispatchOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auditflow_dispatch_outcomes_total",
			Help: "Total per-recipient notification dispatch outcomes",
		}, []string{"type", "status"}),

		PushLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auditflow_realtime_push_duration_seconds",
			Help:    "Duration of realtime push attempts by backend",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"backend"}),

		CasesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auditflow_capa_created_total",
			Help: "Total CAPA cases created by categorization",
		}, []string{"kind"}),

		ConsistencyIssues: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "auditflow_consistency_issues",
			Help: "Categorized findings without a matching case, as of the last check",
		}, []string{"tenant"}),
	}
}

// IncrementTransition records a committed transition.
func (m *Metrics) IncrementTransition(operation, status string) {
	if m != nil {
		m.Transitions.WithLabelValues(operation, status).Inc()
	}
}

// IncrementDispatchOutcome records one recipient outcome.
func (m *Metrics) IncrementDispatchOutcome(notificationType, status string) {
	if m != nil {
		m.DispatchOutcomes.WithLabelValues(notificationType, status).Inc()
	}
}

// ObservePushLatency records the duration of one realtime push.
func (m *Metrics) ObservePushLatency(backend string, d time.Duration) {
	if m != nil {
		m.PushLatency.WithLabelValues(backend).Observe(d.Seconds())
	}
}

// IncrementCaseCreated records a case created by categorization.
func (m *Metrics) IncrementCaseCreated(kind string) {
	if m != nil {
		m.CasesCreated.WithLabelValues(kind).Inc()
	}
}

// SetConsistencyIssues records the result of one consistency check.
func (m *Metrics) SetConsistencyIssues(tenantID string, n int) {
	if m != nil {
		m.ConsistencyIssues.WithLabelValues(tenantID).Set(float64(n))
	}
}
