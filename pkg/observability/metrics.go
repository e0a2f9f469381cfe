package observability

import (
	"context"
	"errors"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for evaluations.
const (
	OutcomeOK           = "ok"
	OutcomeMissingFact  = "missing_fact"
	OutcomeTypeMismatch = "type_mismatch"
	OutcomeNoMapping    = "no_mapping"
	OutcomeResultError  = "result_error"
	OutcomeError        = "error"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	nodeVisits  *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	depth       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_node_visits_total",
				Help: "Total number of node visits",
			},
			[]string{"tree", "input"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_evaluations_total",
				Help: "Total number of evaluations by outcome",
			},
			[]string{"tree", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_evaluation_duration_seconds",
				Help:    "Duration of evaluations",
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
			},
			[]string{"tree"},
		),
		depth: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_evaluation_depth",
				Help:    "Number of nodes visited per evaluation",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"tree"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.nodeVisits, m.evaluations, m.duration, m.depth)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeVisit: func(_ context.Context, e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(e.Tree, e.Input).Inc()
		},
		OnEvaluated: func(_ context.Context, e *domain.EvaluationEvent) {
			m.evaluations.WithLabelValues(e.Tree, Outcome(e.Err)).Inc()
			m.duration.WithLabelValues(e.Tree).Observe(e.Duration.Seconds())
			m.depth.WithLabelValues(e.Tree).Observe(float64(e.Depth))
		},
	}
}

// Outcome classifies an evaluation error into a metric label.
func Outcome(err error) string {
	var (
		missing   *domain.MissingFactError
		mismatch  *domain.TypeMismatchError
		noMapping *domain.NoMappingError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &missing):
		return OutcomeMissingFact
	case errors.As(err, &mismatch):
		return OutcomeTypeMismatch
	case errors.As(err, &noMapping):
		return OutcomeNoMapping
	case errors.Is(err, domain.ErrResultConstruction):
		return OutcomeResultError
	default:
		return OutcomeError
	}
}
