package observability

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{&domain.MissingFactError{Fact: "x"}, OutcomeMissingFact},
		{fmt.Errorf("wrapped: %w", &domain.TypeMismatchError{Field: "x"}), OutcomeTypeMismatch},
		{&domain.NoMappingError{Input: "x", Value: "q"}, OutcomeNoMapping},
		{&domain.ResultConstructionError{Type: "T", Err: fmt.Errorf("boom")}, OutcomeResultError},
		{context.Canceled, OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err), "%v", tt.err)
	}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	base := domain.EventBase{Tree: "numbers"}
	hooks.OnNodeVisit(ctx, &domain.NodeEvent{EventBase: base, Input: "range"})
	hooks.OnNodeVisit(ctx, &domain.NodeEvent{EventBase: base, Input: "range"})
	hooks.OnEvaluated(ctx, &domain.EvaluationEvent{EventBase: base, Duration: time.Millisecond, Depth: 2})
	hooks.OnEvaluated(ctx, &domain.EvaluationEvent{EventBase: base, Err: &domain.MissingFactError{Fact: "flag"}})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.nodeVisits.WithLabelValues("numbers", "range")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues("numbers", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues("numbers", OutcomeMissingFact)))

	expected := `
# HELP arbor_evaluations_total Total number of evaluations by outcome
# TYPE arbor_evaluations_total counter
arbor_evaluations_total{outcome="missing_fact",tree="numbers"} 1
arbor_evaluations_total{outcome="ok",tree="numbers"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "arbor_evaluations_total"))
}

func TestCombine(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{
		OnEvaluated: func(context.Context, *domain.EvaluationEvent) { order = append(order, "a") },
	}
	b := domain.LifecycleHooks{
		OnNodeVisit: func(context.Context, *domain.NodeEvent) { order = append(order, "b-visit") },
		OnEvaluated: func(context.Context, *domain.EvaluationEvent) { order = append(order, "b") },
	}

	hooks := Combine(a, domain.LifecycleHooks{}, b)
	hooks.OnNodeVisit(context.Background(), &domain.NodeEvent{})
	hooks.OnEvaluated(context.Background(), &domain.EvaluationEvent{})

	assert.Equal(t, []string{"b-visit", "a", "b"}, order)
	assert.Nil(t, Combine().OnNodeVisit)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := LoggingHooks(logger)

	hooks.OnNodeVisit(context.Background(), &domain.NodeEvent{EventBase: domain.EventBase{Tree: "t"}, Input: "flag", Key: "true"})
	hooks.OnEvaluated(context.Background(), &domain.EvaluationEvent{EventBase: domain.EventBase{Tree: "t"}, Err: &domain.NoMappingError{Input: "letters", Value: "z"}})

	out := buf.String()
	assert.Contains(t, out, "msg=node_visit")
	assert.Contains(t, out, "input=flag")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "outcome=no_mapping")
}
