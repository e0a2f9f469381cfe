package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/tree"
)

// Evaluator is a compiled decision tree ready to answer queries.
// This is the primary interface used by driving adapters (e.g., HTTP, MCP).
type Evaluator interface {
	// Evaluate walks the tree with facts and creates the result.
	Evaluate(ctx context.Context, facts domain.Facts) (any, error)

	// Trace evaluates like Evaluate and also returns the visited path.
	Trace(ctx context.Context, facts domain.Facts) (*tree.Trace, error)

	// Tree returns the compiled tree for introspection.
	Tree() *tree.DecisionTree

	// Document returns the source document the tree was compiled from.
	Document() *document.Document
}

// TreeSource resolves evaluators by document ID.
type TreeSource interface {
	// List returns the IDs of the loaded trees in sorted order.
	List() []string

	// Evaluator returns the evaluator for id, or domain.ErrTreeNotFound.
	Evaluator(id string) (Evaluator, error)
}
