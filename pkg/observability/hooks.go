package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LoggingHooks logs node visits at debug level and evaluations at info,
// or at warn when they fail.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeVisit: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_visit",
				"tree", e.Tree,
				"input", e.Input,
				"key", e.Key,
				"depth", e.Depth,
			)
		},
		OnEvaluated: func(ctx context.Context, e *domain.EvaluationEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "evaluated", "tree", e.Tree, "outcome", Outcome(e.Err), "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "evaluated", "tree", e.Tree, "depth", e.Depth, "duration", e.Duration)
		},
	}
}

// Combine returns hooks that call each of the given hooks in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		if h.OnNodeVisit != nil {
			prev := out.OnNodeVisit
			out.OnNodeVisit = func(ctx context.Context, e *domain.NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNodeVisit(ctx, e)
			}
		}
		if h.OnEvaluated != nil {
			prev := out.OnEvaluated
			out.OnEvaluated = func(ctx context.Context, e *domain.EvaluationEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnEvaluated(ctx, e)
			}
		}
	}
	return out
}
