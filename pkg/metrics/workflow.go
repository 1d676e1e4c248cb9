package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	WorkflowDonation     = "donation"
	WorkflowBloodRequest = "blood_request"

	OutcomeApproved          = "approved"
	OutcomeRejected          = "rejected"
	OutcomeAlreadyProcessed  = "already_processed"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeNotFound          = "not_found"
	OutcomeError             = "error"

	DirectionIn  = "in"
	DirectionOut = "out"
)

// WorkflowMetrics records approval decisions and ledger movement.
type WorkflowMetrics struct {
	decisions   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	adjustments *prometheus.CounterVec
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "approval_decisions_total",
		Help: "Admin approval and rejection attempts by workflow and outcome.",
	}, []string{"workflow", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "approval_decision_duration_seconds",
		Help:    "Latency of approval workflow decisions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"workflow"})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_adjustment_units_total",
		Help: "Blood units moved in or out of the ledger by workflow approvals.",
	}, []string{"blood_group", "direction"})
	reg.MustRegister(decisions, duration, adjustments)
	return &WorkflowMetrics{
		decisions:   decisions,
		duration:    duration,
		adjustments: adjustments,
	}
}

// ObserveDecision counts one decision attempt and its latency.
func (m *WorkflowMetrics) ObserveDecision(workflow, outcome string, elapsed time.Duration) {
	if m == nil || m.decisions == nil {
		return
	}
	workflow = normalizeLabel(workflow)
	m.decisions.WithLabelValues(workflow, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(workflow).Observe(elapsed.Seconds())
}

// ObserveAdjustment records a signed unit movement for a blood group.
func (m *WorkflowMetrics) ObserveAdjustment(bloodGroup string, delta int) {
	if m == nil || m.adjustments == nil || delta == 0 {
		return
	}
	direction := DirectionIn
	if delta < 0 {
		direction = DirectionOut
		delta = -delta
	}
	m.adjustments.WithLabelValues(normalizeLabel(bloodGroup), direction).Add(float64(delta))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
