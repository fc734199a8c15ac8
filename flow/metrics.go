package flow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for training-session execution.
//
// Exposed series (namespace "reviewkata"):
//
//   - step_latency_ms (histogram; labels node_id, status): node
//     execution duration, success vs error.
//   - model_invocations_total (counter; labels role, outcome): LLM
//     calls by role (generative/review/summary) and outcome (ok/error).
//   - suspensions_total (counter): runs suspended awaiting a learner
//     review.
//   - node_errors_total (counter; labels node_id): engine-level node
//     failures.
//
// Register with a dedicated registry and expose via promhttp:
//
//	registry := prometheus.NewRegistry()
//	metrics := flow.NewMetrics(registry)
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
type Metrics struct {
	stepLatency      *prometheus.HistogramVec
	modelInvocations *prometheus.CounterVec
	suspensions      prometheus.Counter
	nodeErrors       *prometheus.CounterVec
}

// NewMetrics creates and registers all session metrics. A nil registry
// falls back to prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reviewkata",
			Name:      "step_latency_ms",
			Help:      "Node execution duration in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000},
		}, []string{"node_id", "status"}),

		modelInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviewkata",
			Name:      "model_invocations_total",
			Help:      "LLM invocations by role and outcome.",
		}, []string{"role", "outcome"}),

		suspensions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reviewkata",
			Name:      "suspensions_total",
			Help:      "Workflow runs suspended awaiting learner input.",
		}),

		nodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviewkata",
			Name:      "node_errors_total",
			Help:      "Engine-level node failures.",
		}, []string{"node_id"}),
	}
}

// ObserveStep records one node execution.
func (m *Metrics) ObserveStep(nodeID, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stepLatency.WithLabelValues(nodeID, status).Observe(float64(elapsed.Milliseconds()))
	if status == "error" {
		m.nodeErrors.WithLabelValues(nodeID).Inc()
	}
}

// ObserveModelCall records one LLM invocation for the given role.
func (m *Metrics) ObserveModelCall(role string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.modelInvocations.WithLabelValues(role, outcome).Inc()
}

// IncSuspension records a run suspension.
func (m *Metrics) IncSuspension() {
	if m == nil {
		return
	}
	m.suspensions.Inc()
}
