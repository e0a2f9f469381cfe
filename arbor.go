package arbor

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/aretw0/arbor/pkg/tree"
)

// Engine is the high-level entry point for the Arbor library.
// It wraps a compiled, immutable decision tree and adds logging and
// lifecycle hooks around evaluation. Safe for concurrent use.
type Engine struct {
	tree        *tree.DecisionTree
	doc         *document.Document
	schema      schema.Schema
	branches    schema.Schema
	registry    *result.Registry
	openResults bool
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRegistry sets the registry used to resolve the document's result class.
func WithRegistry(r *result.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithOpenResults makes unknown result classes evaluate to result.Record values
// instead of failing compilation.
func WithOpenResults(open bool) Option {
	return func(e *Engine) {
		e.openResults = open
	}
}

// New compiles doc into an Engine.
// Compilation failures are *domain.ConfigurationError values.
func New(doc *document.Document, opts ...Option) (*Engine, error) {
	if doc == nil {
		return nil, &domain.ConfigurationError{Msg: "Invalid document: document is nil"}
	}
	eng := &Engine{doc: doc, name: doc.Name}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.name != "" {
		eng.logger = eng.logger.With("tree", eng.name)
	}

	c := compiler.New(
		compiler.WithRegistry(eng.registry),
		compiler.WithOpenResults(eng.openResults),
		compiler.WithLogger(eng.logger),
	)
	dt, err := c.Compile(doc)
	if err != nil {
		return nil, err
	}

	eng.tree = dt
	eng.schema = schema.FromCatalog(dt.InputTypes())
	eng.branches = make(schema.Schema, len(eng.schema))
	for name, typ := range eng.schema {
		if name != dt.Root().Name() {
			eng.branches[name] = typ
		}
	}
	return eng, nil
}

// Name returns the document name.
func (e *Engine) Name() string { return e.name }

// Tree returns the compiled decision tree.
func (e *Engine) Tree() *tree.DecisionTree { return e.tree }

// Document returns the source document.
func (e *Engine) Document() *document.Document { return e.doc }

// Evaluate walks the tree with facts and returns a freshly created result.
func (e *Engine) Evaluate(ctx context.Context, facts domain.Facts) (any, error) {
	tr, err := e.run(ctx, facts, false)
	if err != nil {
		return nil, err
	}
	return tr.Result, nil
}

// Trace evaluates like Evaluate and also returns every node visited.
// On failure the returned Trace holds the steps taken before the error.
func (e *Engine) Trace(ctx context.Context, facts domain.Facts) (*tree.Trace, error) {
	return e.run(ctx, facts, true)
}

func (e *Engine) run(ctx context.Context, facts domain.Facts, record bool) (*tree.Trace, error) {
	tr := &tree.Trace{}
	if err := ctx.Err(); err != nil {
		return tr, err
	}

	start := time.Now()
	depth := 0
	leaf, err := e.tree.Root().Walk(facts, func(s tree.Step) {
		depth++
		if record {
			tr.Steps = append(tr.Steps, s)
		}
		if e.hooks.OnNodeVisit != nil {
			e.hooks.OnNodeVisit(ctx, &domain.NodeEvent{
				EventBase: e.event(domain.EventNodeVisit),
				Input:     s.Input,
				Kind:      s.Kind,
				Depth:     depth,
				Key:       s.Key,
			})
		}
	})
	if err == nil {
		tr.Leaf = leaf
		tr.Result, err = leaf.Create()
	}

	if e.hooks.OnEvaluated != nil {
		e.hooks.OnEvaluated(ctx, &domain.EvaluationEvent{
			EventBase: e.event(domain.EventEvaluated),
			Duration:  time.Since(start),
			Depth:     depth,
			Err:       err,
		})
	}

	if err != nil {
		e.logger.Debug("evaluation failed", "depth", depth, "err", err)
		return tr, err
	}
	return tr, nil
}

func (e *Engine) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, Tree: e.name}
}

// ValidateFacts checks facts against the declared input types without
// evaluating. Every present fact must have its input's kind and lie in its
// range or enumeration; the root input must be present and is reported first.
// All failures are reported together as a *schema.AggregateError.
func (e *Engine) ValidateFacts(facts domain.Facts) error {
	errs := schema.ValidationErrors(schema.ValidateFields(e.schema, facts, e.tree.Root().Name()))
	errs = append(errs, schema.ValidationErrors(schema.Validate(e.branches, facts))...)

	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}
