package tree

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
)

// Step records one node visited during evaluation.
type Step struct {
	Input    string           `json:"input"`
	Kind     domain.InputKind `json:"kind"`
	Fact     any              `json:"fact"`
	Key      string           `json:"key"`
	Fallback bool             `json:"fallback,omitempty"` // enum default was used
}

// Evaluate resolves facts down to a leaf and materializes its result.
func (n *Node) Evaluate(facts domain.Facts) (any, error) {
	leaf, err := n.Walk(facts, nil)
	if err != nil {
		return nil, err
	}
	return leaf.Create()
}

// Walk follows the branches selected by facts until it reaches a leaf.
// visit, when non-nil, is called for every node on the path.
func (n *Node) Walk(facts domain.Facts, visit func(Step)) (*result.Leaf, error) {
	node := n
	for {
		step, branch, err := node.selectBranch(facts)
		if err != nil {
			return nil, err
		}
		if visit != nil {
			visit(step)
		}

		if child, ok := branch.Node(); ok {
			node = child
			continue
		}
		if leaf, ok := branch.Leaf(); ok {
			return leaf, nil
		}
		return nil, fmt.Errorf("node %q has an empty branch for %q", node.Name(), step.Key)
	}
}

func (n *Node) selectBranch(facts domain.Facts) (Step, Branch, error) {
	name := n.input.Name
	step := Step{Input: name, Kind: n.input.Kind}

	switch n.input.Kind {
	case domain.KindBoolean:
		v, ok, err := domain.Bool(facts, name)
		if err != nil {
			return step, Branch{}, err
		}
		if !ok {
			return step, Branch{}, &domain.MissingFactError{Fact: name}
		}
		step.Fact = v
		if v {
			step.Key = "true"
			return step, n.whenTrue, nil
		}
		step.Key = "false"
		return step, n.whenFalse, nil

	case domain.KindIntegerRange:
		v, ok, err := domain.Int(facts, name)
		if err != nil {
			return step, Branch{}, err
		}
		if !ok {
			return step, Branch{}, &domain.MissingFactError{Fact: name}
		}
		step.Fact = v
		for _, e := range n.ranges {
			if v >= e.threshold {
				step.Key = domain.FormatThreshold(e.threshold)
				return step, e.branch, nil
			}
		}
		// Only facts below the declared minimum get here.
		return step, Branch{}, &domain.NoMappingError{Input: name, Value: v}

	case domain.KindStringEnum:
		v, ok, err := domain.String(facts, name)
		if err != nil {
			return step, Branch{}, err
		}
		if !ok {
			return step, Branch{}, &domain.MissingFactError{Fact: name}
		}
		step.Fact = v
		if b, found := n.cases[v]; found {
			step.Key = v
			return step, b, nil
		}
		if n.input.HasDefault() {
			if b, found := n.cases[n.input.Default]; found {
				step.Key = n.input.Default
				step.Fallback = true
				return step, b, nil
			}
		}
		return step, Branch{}, &domain.NoMappingError{Input: name, Value: v}
	}

	return step, Branch{}, fmt.Errorf("node %q has unknown kind %q", name, n.input.Kind)
}
