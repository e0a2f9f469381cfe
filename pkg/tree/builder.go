package tree

import (
	"fmt"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
)

// Builder assembles one Node. Builders are not safe for concurrent use; they
// belong to the compiling call stack until Build returns.
//
// Build resolves aliases and freezes the node. It does not check completeness:
// call Validate on the root once the whole tree is assembled.
type Builder interface {
	AddResult(key string, leaf *result.Leaf) error
	AddNode(key string, child *Node) error
	AddReference(key, target string) error
	Build() (*Node, error)
}

// NewBuilder returns the builder matching the input type's kind.
func NewBuilder(input *domain.InputType) (Builder, error) {
	if input == nil {
		return nil, fmt.Errorf("input type is required")
	}
	switch input.Kind {
	case domain.KindBoolean:
		return &booleanBuilder{input: input}, nil
	case domain.KindIntegerRange:
		return &integerBuilder{input: input, ranges: make(map[int64]Branch)}, nil
	case domain.KindStringEnum:
		return &enumBuilder{input: input, cases: make(map[string]Branch)}, nil
	default:
		return nil, domain.Configf(input.Name, "Unknown input-type: %s", input.Kind)
	}
}

func duplicateKey(input, key string) error {
	return domain.Configf(input, "Node %q may not have multiple mappings for the same value %s", input, key)
}

func checkBranch(input string, b Branch) error {
	if b.IsZero() {
		return domain.Configf(input, "Node %q may not map a key to an empty branch", input)
	}
	return nil
}

// --- Boolean ---

type booleanBuilder struct {
	input     *domain.InputType
	whenTrue  Branch
	whenFalse Branch
}

func (b *booleanBuilder) AddResult(key string, leaf *result.Leaf) error {
	return b.add(key, Leaf(leaf))
}

func (b *booleanBuilder) AddNode(key string, child *Node) error {
	return b.add(key, Child(child))
}

func (b *booleanBuilder) AddReference(key, target string) error {
	return domain.Configf(b.input.Name, "Boolean input types do not support references.")
}

func (b *booleanBuilder) add(key string, branch Branch) error {
	name := b.input.Name
	if err := checkBranch(name, branch); err != nil {
		return err
	}
	var slot *Branch
	switch key {
	case "true":
		slot = &b.whenTrue
	case "false":
		slot = &b.whenFalse
	default:
		return domain.Configf(name, "Node %q may only have mappings for \"true\" and \"false\", and not %q", name, key)
	}
	if !slot.IsZero() {
		return duplicateKey(name, fmt.Sprintf("%q", key))
	}
	*slot = branch
	return nil
}

func (b *booleanBuilder) Build() (*Node, error) {
	return &Node{input: b.input, whenTrue: b.whenTrue, whenFalse: b.whenFalse}, nil
}

// --- Integer range ---

type integerBuilder struct {
	input  *domain.InputType
	ranges map[int64]Branch
	refs   references
}

func (b *integerBuilder) parse(key string) (int64, error) {
	v, err := domain.ParseThreshold(key)
	if err != nil {
		return 0, domain.Configf(b.input.Name, "Node %q has an invalid integer value %q", b.input.Name, key)
	}
	return v, nil
}

func (b *integerBuilder) AddResult(key string, leaf *result.Leaf) error {
	return b.add(key, Leaf(leaf))
}

func (b *integerBuilder) AddNode(key string, child *Node) error {
	return b.add(key, Child(child))
}

func (b *integerBuilder) add(key string, branch Branch) error {
	if err := checkBranch(b.input.Name, branch); err != nil {
		return err
	}
	v, err := b.parse(key)
	if err != nil {
		return err
	}
	if _, exists := b.ranges[v]; exists || b.aliased(v) {
		return duplicateKey(b.input.Name, key)
	}
	b.ranges[v] = branch
	return nil
}

func (b *integerBuilder) aliased(v int64) bool {
	for _, ref := range b.refs.pending {
		if k, err := domain.ParseThreshold(ref.key); err == nil && k == v {
			return true
		}
	}
	return false
}

func (b *integerBuilder) AddReference(key, target string) error {
	v, err := b.parse(key)
	if err != nil {
		return err
	}
	if _, err := b.parse(target); err != nil {
		return err
	}
	if _, exists := b.ranges[v]; exists || b.aliased(v) {
		return duplicateKey(b.input.Name, key)
	}
	b.refs.add(key, target)
	return nil
}

func (b *integerBuilder) Build() (*Node, error) {
	err := b.refs.resolveAll(b.input.Name, func(key, target string) (bool, error) {
		t, _ := domain.ParseThreshold(target)
		branch, ok := b.ranges[t]
		if !ok {
			return false, nil
		}
		k, _ := domain.ParseThreshold(key)
		b.ranges[k] = branch
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	ranges := make([]rangeEntry, 0, len(b.ranges))
	for k, v := range b.ranges {
		ranges = append(ranges, rangeEntry{threshold: k, branch: v})
	}
	// Descending; Unbounded is math.MinInt64 and therefore sorts last.
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].threshold > ranges[j].threshold })

	return &Node{input: b.input, ranges: ranges}, nil
}

// --- String enum ---

type enumBuilder struct {
	input *domain.InputType
	cases map[string]Branch
	refs  references
}

func (b *enumBuilder) AddResult(key string, leaf *result.Leaf) error {
	return b.add(key, Leaf(leaf))
}

func (b *enumBuilder) AddNode(key string, child *Node) error {
	return b.add(key, Child(child))
}

func (b *enumBuilder) add(key string, branch Branch) error {
	if err := checkBranch(b.input.Name, branch); err != nil {
		return err
	}
	if _, exists := b.cases[key]; exists || b.refs.has(key) {
		return duplicateKey(b.input.Name, fmt.Sprintf("%q", key))
	}
	b.cases[key] = branch
	return nil
}

func (b *enumBuilder) AddReference(key, target string) error {
	if _, exists := b.cases[key]; exists || b.refs.has(key) {
		return duplicateKey(b.input.Name, fmt.Sprintf("%q", key))
	}
	b.refs.add(key, target)
	return nil
}

func (b *enumBuilder) Build() (*Node, error) {
	err := b.refs.resolveAll(b.input.Name, func(key, target string) (bool, error) {
		branch, ok := b.cases[target]
		if !ok {
			return false, nil
		}
		b.cases[key] = branch
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	cases := make(map[string]Branch, len(b.cases))
	for k, v := range b.cases {
		cases[k] = v
	}
	return &Node{input: b.input, cases: cases}, nil
}
