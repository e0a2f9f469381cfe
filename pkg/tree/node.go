package tree

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
)

// Branch is the value attached to a mapping key: either a child Node or a
// result Leaf. The zero Branch is empty and never produced by a Builder.
type Branch struct {
	child *Node
	leaf  *result.Leaf
}

// Child wraps a node as a Branch.
func Child(n *Node) Branch { return Branch{child: n} }

// Leaf wraps a result leaf as a Branch.
func Leaf(l *result.Leaf) Branch { return Branch{leaf: l} }

// Node returns the child node, if the branch is one.
func (b Branch) Node() (*Node, bool) { return b.child, b.child != nil }

// Leaf returns the result leaf, if the branch is one.
func (b Branch) Leaf() (*result.Leaf, bool) { return b.leaf, b.leaf != nil }

// IsZero reports whether the branch is empty.
func (b Branch) IsZero() bool { return b.child == nil && b.leaf == nil }

type rangeEntry struct {
	threshold int64
	branch    Branch
}

// Node is an immutable decision point over one input type.
type Node struct {
	input *domain.InputType

	// boolean
	whenTrue  Branch
	whenFalse Branch

	// integer range, sorted by descending threshold (Unbounded last)
	ranges []rangeEntry

	// string enum
	cases map[string]Branch
}

// Input returns the input type the node branches on.
func (n *Node) Input() *domain.InputType { return n.input }

// Name returns the input (fact) name.
func (n *Node) Name() string { return n.input.Name }

// Kind returns the node kind.
func (n *Node) Kind() domain.InputKind { return n.input.Kind }

// Mapping is one key/branch pair of a node.
type Mapping struct {
	Key    string
	Branch Branch
}

// Mappings lists the node's branches in a stable order: true before false,
// ascending thresholds, and enum keys in the order the input type declares them
// (undeclared keys last, sorted).
func (n *Node) Mappings() []Mapping {
	var out []Mapping
	switch n.input.Kind {
	case domain.KindBoolean:
		if !n.whenTrue.IsZero() {
			out = append(out, Mapping{Key: "true", Branch: n.whenTrue})
		}
		if !n.whenFalse.IsZero() {
			out = append(out, Mapping{Key: "false", Branch: n.whenFalse})
		}
	case domain.KindIntegerRange:
		for i := len(n.ranges) - 1; i >= 0; i-- {
			e := n.ranges[i]
			out = append(out, Mapping{Key: domain.FormatThreshold(e.threshold), Branch: e.branch})
		}
	case domain.KindStringEnum:
		seen := make(map[string]bool, len(n.cases))
		for _, v := range n.input.Values {
			if b, ok := n.cases[v]; ok {
				out = append(out, Mapping{Key: v, Branch: b})
				seen[v] = true
			}
		}
		var extra []string
		for k := range n.cases {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			out = append(out, Mapping{Key: k, Branch: n.cases[k]})
		}
	}
	return out
}

// Children returns the child nodes in Mappings order. Shared children reached
// through several keys are returned once.
func (n *Node) Children() []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	for _, m := range n.Mappings() {
		if c, ok := m.Branch.Node(); ok && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
