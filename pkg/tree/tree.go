package tree

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
)

// DecisionTree ties a validated root node to the catalog of input types and
// the result spec it was compiled with. It is immutable.
type DecisionTree struct {
	root    *Node
	catalog *domain.Catalog
	spec    *result.Spec
}

// New validates root and wraps it. spec may be nil for trees assembled by hand.
func New(root *Node, catalog *domain.Catalog, spec *result.Spec) (*DecisionTree, error) {
	if root == nil {
		return nil, fmt.Errorf("root node is required")
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}
	return &DecisionTree{root: root, catalog: catalog, spec: spec}, nil
}

// Root returns the root node.
func (t *DecisionTree) Root() *Node { return t.root }

// InputTypes returns the catalog of declared input types.
func (t *DecisionTree) InputTypes() *domain.Catalog { return t.catalog }

// ResultSpec returns the result spec, if known.
func (t *DecisionTree) ResultSpec() *result.Spec { return t.spec }

// Evaluate resolves facts to a freshly constructed result.
func (t *DecisionTree) Evaluate(facts domain.Facts) (any, error) {
	return t.root.Evaluate(facts)
}

// Trace is an evaluation together with the path that produced it.
type Trace struct {
	Result any          `json:"result"`
	Steps  []Step       `json:"steps"`
	Leaf   *result.Leaf `json:"-"`
}

// Trace evaluates facts and records every node visited. On failure the
// returned Trace holds the steps taken before the error.
func (t *DecisionTree) Trace(facts domain.Facts) (*Trace, error) {
	tr := &Trace{}
	leaf, err := t.root.Walk(facts, func(s Step) {
		tr.Steps = append(tr.Steps, s)
	})
	if err != nil {
		return tr, err
	}
	tr.Leaf = leaf

	out, err := leaf.Create()
	if err != nil {
		return tr, err
	}
	tr.Result = out
	return tr, nil
}

// Depth returns the length of the longest root-to-leaf path.
func (t *DecisionTree) Depth() int {
	return depth(t.root)
}

func depth(n *Node) int {
	max := 0
	for _, c := range n.Children() {
		if d := depth(c); d > max {
			max = d
		}
	}
	return max + 1
}

// Inputs returns the names of the input types the tree actually branches on,
// in first-visit order.
func (t *DecisionTree) Inputs() []string {
	var out []string
	seen := make(map[string]bool)
	var visit func(n *Node)
	visit = func(n *Node) {
		if !seen[n.Name()] {
			seen[n.Name()] = true
			out = append(out, n.Name())
		}
		for _, c := range n.Children() {
			visit(c)
		}
	}
	visit(t.root)
	return out
}
