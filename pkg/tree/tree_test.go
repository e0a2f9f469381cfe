package tree_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answer struct {
	Value string
}

var labelSpec = func() *result.Spec {
	typ := result.Define[answer]("Answer").
		String("value", func(a *answer, v string) { a.Value = v }).
		Build()
	b := result.NewSpecBuilder(typ)
	if err := b.Add(result.TextAttribute("value")); err != nil {
		panic(err)
	}
	return b.Build()
}()

func leaf(t *testing.T, value string) *result.Leaf {
	t.Helper()
	lb := result.NewLeafBuilder(labelSpec)
	require.NoError(t, lb.Set("value", value))
	return lb.Build()
}

func mustBuilder(t *testing.T, input *domain.InputType) tree.Builder {
	t.Helper()
	b, err := tree.NewBuilder(input)
	require.NoError(t, err)
	return b
}

func evaluate(t *testing.T, n *tree.Node, facts domain.MapFacts) string {
	t.Helper()
	out, err := n.Evaluate(facts)
	require.NoError(t, err)
	return out.(*answer).Value
}

func TestIntegerRange_Thresholds(t *testing.T) {
	b := mustBuilder(t, domain.NewIntegerType("range", domain.Unbounded, domain.UnboundedMax))
	require.NoError(t, b.AddResult("1", leaf(t, "positive")))
	require.NoError(t, b.AddResult("unbounded", leaf(t, "negative")))
	require.NoError(t, b.AddResult("0", leaf(t, "zero")))

	node, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, node.Validate())

	tests := []struct {
		fact int64
		want string
	}{
		{math.MinInt64, "negative"},
		{-1, "negative"},
		{0, "zero"},
		{1, "positive"},
		{math.MaxInt64, "positive"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evaluate(t, node, domain.MapFacts{"range": tt.fact}), "fact %d", tt.fact)
	}
}

func TestIntegerRange_MaxThresholdKey(t *testing.T) {
	b := mustBuilder(t, domain.NewIntegerType("range", domain.Unbounded, domain.UnboundedMax))
	require.NoError(t, b.AddResult("unbounded", leaf(t, "rest")))
	require.NoError(t, b.AddResult("9223372036854775807", leaf(t, "max")))
	node, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, node.Validate())

	var keys []string
	for _, m := range node.Mappings() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"9223372036854775807", "unbounded"}, keys)

	var steps []tree.Step
	_, err = node.Walk(domain.MapFacts{"range": int64(math.MaxInt64)}, func(s tree.Step) { steps = append(steps, s) })
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "9223372036854775807", steps[0].Key)
	assert.Equal(t, "max", evaluate(t, node, domain.MapFacts{"range": int64(math.MaxInt64)}))
}

func TestIntegerRange_AcceptsLooseIntegerKinds(t *testing.T) {
	b := mustBuilder(t, domain.NewIntegerType("range", domain.Unbounded, domain.UnboundedMax))
	require.NoError(t, b.AddResult("unbounded", leaf(t, "low")))
	require.NoError(t, b.AddResult("10", leaf(t, "high")))
	node, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "high", evaluate(t, node, domain.MapFacts{"range": 10}))
	assert.Equal(t, "high", evaluate(t, node, domain.MapFacts{"range": float64(12)}))
	assert.Equal(t, "low", evaluate(t, node, domain.MapFacts{"range": int32(9)}))
}

func TestIntegerRange_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input *domain.InputType
		keys  []string
		want  string
	}{
		{
			name:  "missing unbounded",
			input: domain.NewIntegerType("range", domain.Unbounded, -1),
			keys:  []string{"-100", "-5000"},
			want:  `Invalid configuration: Node "range" is missing minimum mapping of "unbounded"`,
		},
		{
			name:  "above max",
			input: domain.NewIntegerType("range", domain.Unbounded, -1),
			keys:  []string{"unbounded", "0"},
			want:  `Invalid configuration: Node "range" cannot match value 0 because it falls above the max value allowed`,
		},
		{
			name:  "missing min",
			input: domain.NewIntegerType("range", 0, domain.UnboundedMax),
			keys:  []string{"5"},
			want:  `Invalid configuration: Node "range" is missing minimum mapping of "0"`,
		},
		{
			name:  "below min",
			input: domain.NewIntegerType("range", 0, domain.UnboundedMax),
			keys:  []string{"0000", "-1"},
			want:  `Invalid configuration: Node "range" cannot match value -1 because it falls below the min value allowed`,
		},
		{
			name:  "single value",
			input: domain.NewIntegerType("range", 3, 3),
			keys:  []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBuilder(t, tt.input)
			for _, k := range tt.keys {
				require.NoError(t, b.AddResult(k, leaf(t, k)))
			}
			node, err := b.Build()
			require.NoError(t, err, "build never checks completeness")

			err = node.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestIntegerRange_DuplicateKeys(t *testing.T) {
	b := mustBuilder(t, domain.NewIntegerType("range", domain.Unbounded, domain.UnboundedMax))
	require.NoError(t, b.AddResult("0", leaf(t, "a")))

	err := b.AddResult("0000", leaf(t, "b"))
	require.Error(t, err)
	assert.Equal(t, `Invalid configuration: Node "range" may not have multiple mappings for the same value 0000`, err.Error())

	assert.ErrorIs(t, b.AddReference("0", "unbounded"), domain.ErrConfiguration)
	assert.ErrorIs(t, b.AddReference("x", "0"), domain.ErrConfiguration)
}

func TestEnum_DefaultFallback(t *testing.T) {
	input, err := domain.NewEnumType("letters", []string{"a", "b", "c"}, "b")
	require.NoError(t, err)

	b := mustBuilder(t, input)
	require.NoError(t, b.AddResult("a", leaf(t, "LetterA")))
	require.NoError(t, b.AddResult("b", leaf(t, "LetterB")))
	require.NoError(t, b.AddResult("c", leaf(t, "LetterC")))
	node, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, node.Validate())

	assert.Equal(t, "LetterA", evaluate(t, node, domain.MapFacts{"letters": "a"}))
	assert.Equal(t, "LetterB", evaluate(t, node, domain.MapFacts{"letters": "b"}))
	assert.Equal(t, "LetterC", evaluate(t, node, domain.MapFacts{"letters": "c"}))
	assert.Equal(t, "LetterB", evaluate(t, node, domain.MapFacts{"letters": "d"}))
}

func TestEnum_NoDefaultMeansNoMapping(t *testing.T) {
	input, err := domain.NewEnumType("letters", []string{"a", "b"}, "")
	require.NoError(t, err)

	b := mustBuilder(t, input)
	require.NoError(t, b.AddResult("a", leaf(t, "LetterA")))
	require.NoError(t, b.AddResult("b", leaf(t, "LetterB")))
	node, err := b.Build()
	require.NoError(t, err)

	_, err = node.Evaluate(domain.MapFacts{"letters": "z"})
	var noMapping *domain.NoMappingError
	require.True(t, errors.As(err, &noMapping))
	assert.Equal(t, "letters", noMapping.Input)
	assert.Equal(t, "z", noMapping.Value)
	assert.ErrorIs(t, err, domain.ErrEvaluation)
}

func TestEnum_Validation(t *testing.T) {
	input, err := domain.NewEnumType("letters", []string{"a", "b", "c"}, "")
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		b := mustBuilder(t, input)
		require.NoError(t, b.AddResult("b", leaf(t, "B")))
		node, err := b.Build()
		require.NoError(t, err)
		assert.EqualError(t, node.Validate(), `Invalid configuration: Node "letters" is missing entries for values [a, c]`)
	})

	t.Run("extra", func(t *testing.T) {
		b := mustBuilder(t, input)
		for _, k := range []string{"a", "b", "c", "d"} {
			require.NoError(t, b.AddResult(k, leaf(t, k)))
		}
		node, err := b.Build()
		require.NoError(t, err)
		assert.EqualError(t, node.Validate(), `Invalid configuration: Node "letters" is not defined with an enumerated value "d"`)
	})
}

func TestBoolean(t *testing.T) {
	input := domain.NewBooleanType("flag")

	t.Run("both branches", func(t *testing.T) {
		b := mustBuilder(t, input)
		require.NoError(t, b.AddResult("true", leaf(t, "yes")))
		require.NoError(t, b.AddResult("false", leaf(t, "no")))
		node, err := b.Build()
		require.NoError(t, err)
		require.NoError(t, node.Validate())

		assert.Equal(t, "yes", evaluate(t, node, domain.MapFacts{"flag": true}))
		assert.Equal(t, "no", evaluate(t, node, domain.MapFacts{"flag": false}))
	})

	t.Run("missing false", func(t *testing.T) {
		b := mustBuilder(t, input)
		require.NoError(t, b.AddResult("true", leaf(t, "yes")))
		node, err := b.Build()
		require.NoError(t, err)
		assert.EqualError(t, node.Validate(), `Invalid configuration: Node "flag" must have a mapping for value "false"`)
	})

	t.Run("missing true", func(t *testing.T) {
		b := mustBuilder(t, input)
		require.NoError(t, b.AddResult("false", leaf(t, "no")))
		node, err := b.Build()
		require.NoError(t, err)
		assert.EqualError(t, node.Validate(), `Invalid configuration: Node "flag" must have a mapping for value "true"`)
	})

	t.Run("invalid key", func(t *testing.T) {
		err := mustBuilder(t, input).AddResult("maybe", leaf(t, "?"))
		assert.EqualError(t, err, `Invalid configuration: Node "flag" may only have mappings for "true" and "false", and not "maybe"`)
	})

	t.Run("duplicate", func(t *testing.T) {
		b := mustBuilder(t, input)
		require.NoError(t, b.AddResult("true", leaf(t, "yes")))
		assert.EqualError(t, b.AddResult("true", leaf(t, "again")),
			`Invalid configuration: Node "flag" may not have multiple mappings for the same value "true"`)
	})

	t.Run("references rejected", func(t *testing.T) {
		err := mustBuilder(t, input).AddReference("true", "false")
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "Boolean input types do not support references.")
	})
}

func TestEvaluate_FactErrors(t *testing.T) {
	b := mustBuilder(t, domain.NewIntegerType("range", domain.Unbounded, domain.UnboundedMax))
	require.NoError(t, b.AddResult("unbounded", leaf(t, "any")))
	node, err := b.Build()
	require.NoError(t, err)

	_, err = node.Evaluate(domain.MapFacts{})
	var missing *domain.MissingFactError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "range", missing.Fact)

	_, err = node.Evaluate(domain.MapFacts{"range": "foo"})
	var mismatch *domain.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "range", mismatch.Field)
	assert.Equal(t, domain.FactInteger, mismatch.Expected)
	assert.Equal(t, domain.FactString, mismatch.Actual)
	assert.Equal(t, "foo", mismatch.Value)

	assert.False(t, errors.Is(err, domain.ErrConfiguration))
}

func TestReferences_EitherOrder(t *testing.T) {
	input, err := domain.NewEnumType("number", []string{"3", "3_ref"}, "")
	require.NoError(t, err)

	three := leaf(t, "three")

	before := mustBuilder(t, input)
	require.NoError(t, before.AddReference("3_ref", "3"))
	require.NoError(t, before.AddResult("3", three))

	after := mustBuilder(t, input)
	require.NoError(t, after.AddResult("3", three))
	require.NoError(t, after.AddReference("3_ref", "3"))

	for name, b := range map[string]tree.Builder{"before": before, "after": after} {
		t.Run(name, func(t *testing.T) {
			node, err := b.Build()
			require.NoError(t, err)
			require.NoError(t, node.Validate())

			m := node.Mappings()
			require.Len(t, m, 2)
			l1, _ := m[0].Branch.Leaf()
			l2, _ := m[1].Branch.Leaf()
			assert.Same(t, l1, l2)
			assert.Equal(t, "three", evaluate(t, node, domain.MapFacts{"number": "3_ref"}))
		})
	}
}

func TestReferences_Chains(t *testing.T) {
	input, err := domain.NewEnumType("n", []string{"a", "b", "c", "d"}, "")
	require.NoError(t, err)

	b := mustBuilder(t, input)
	// d -> c -> b -> a, declared from the far end of the chain
	require.NoError(t, b.AddReference("d", "c"))
	require.NoError(t, b.AddReference("c", "b"))
	require.NoError(t, b.AddReference("b", "a"))
	require.NoError(t, b.AddResult("a", leaf(t, "A")))

	node, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, node.Validate())
	for _, k := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, "A", evaluate(t, node, domain.MapFacts{"n": k}))
	}
}

func TestReferences_Unresolved(t *testing.T) {
	input, err := domain.NewEnumType("n", []string{"a", "b", "c", "x", "y"}, "")
	require.NoError(t, err)

	b := mustBuilder(t, input)
	require.NoError(t, b.AddResult("a", leaf(t, "A")))
	require.NoError(t, b.AddReference("b", "missing"))
	require.NoError(t, b.AddReference("x", "y"))
	require.NoError(t, b.AddReference("y", "x"))

	_, err = b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, "Invalid configuration: Unmatched references found: missing,x,y", err.Error())
}

func TestReferences_NestedNodes(t *testing.T) {
	flag := domain.NewBooleanType("flag")
	inner := mustBuilder(t, flag)
	require.NoError(t, inner.AddResult("true", leaf(t, "T")))
	require.NoError(t, inner.AddResult("false", leaf(t, "F")))
	child, err := inner.Build()
	require.NoError(t, err)

	outerType, err := domain.NewEnumType("letters", []string{"a", "b"}, "")
	require.NoError(t, err)
	outer := mustBuilder(t, outerType)
	require.NoError(t, outer.AddReference("b", "a"))
	require.NoError(t, outer.AddNode("a", child))

	node, err := outer.Build()
	require.NoError(t, err)
	require.NoError(t, node.Validate())
	assert.Len(t, node.Children(), 1)
	assert.Equal(t, "F", evaluate(t, node, domain.MapFacts{"letters": "b", "flag": false}))
}

func TestValidate_ReportsDescendantPath(t *testing.T) {
	flag := domain.NewBooleanType("flag")
	inner := mustBuilder(t, flag)
	require.NoError(t, inner.AddResult("true", leaf(t, "T")))
	child, err := inner.Build()
	require.NoError(t, err)

	outer := mustBuilder(t, domain.NewIntegerType("range", domain.Unbounded, domain.UnboundedMax))
	require.NoError(t, outer.AddNode("unbounded", child))
	root, err := outer.Build()
	require.NoError(t, err)

	err = root.Validate()
	var cfg *domain.ConfigurationError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, "/range=unbounded/flag", cfg.Path)

	_, err = tree.New(root, nil, labelSpec)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestDecisionTree_IdempotentAndConcurrent(t *testing.T) {
	b := mustBuilder(t, domain.NewIntegerType("range", domain.Unbounded, domain.UnboundedMax))
	require.NoError(t, b.AddResult("unbounded", leaf(t, "negative")))
	require.NoError(t, b.AddResult("0", leaf(t, "zero")))
	require.NoError(t, b.AddResult("1", leaf(t, "positive")))
	root, err := b.Build()
	require.NoError(t, err)

	dt, err := tree.New(root, nil, labelSpec)
	require.NoError(t, err)

	facts := domain.MapFacts{"range": 42}
	first, err := dt.Evaluate(facts)
	require.NoError(t, err)
	second, err := dt.Evaluate(facts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			out, err := dt.Evaluate(domain.MapFacts{"range": v - 16})
			assert.NoError(t, err)
			assert.NotNil(t, out)
		}(i)
	}
	wg.Wait()
}

func TestDecisionTree_Trace(t *testing.T) {
	input, err := domain.NewEnumType("letters", []string{"a", "b"}, "b")
	require.NoError(t, err)
	flag := domain.NewBooleanType("flag")

	inner := mustBuilder(t, flag)
	require.NoError(t, inner.AddResult("true", leaf(t, "T")))
	require.NoError(t, inner.AddResult("false", leaf(t, "F")))
	child, err := inner.Build()
	require.NoError(t, err)

	outer := mustBuilder(t, input)
	require.NoError(t, outer.AddNode("a", child))
	require.NoError(t, outer.AddResult("b", leaf(t, "B")))
	root, err := outer.Build()
	require.NoError(t, err)

	dt, err := tree.New(root, nil, labelSpec)
	require.NoError(t, err)
	assert.Equal(t, 2, dt.Depth())
	assert.Equal(t, []string{"letters", "flag"}, dt.Inputs())

	tr, err := dt.Trace(domain.MapFacts{"letters": "a", "flag": true})
	require.NoError(t, err)
	assert.Equal(t, &answer{Value: "T"}, tr.Result)
	assert.Equal(t, []tree.Step{
		{Input: "letters", Kind: domain.KindStringEnum, Fact: "a", Key: "a"},
		{Input: "flag", Kind: domain.KindBoolean, Fact: true, Key: "true"},
	}, tr.Steps)

	tr, err = dt.Trace(domain.MapFacts{"letters": "zzz"})
	require.NoError(t, err)
	assert.True(t, tr.Steps[0].Fallback)

	tr, err = dt.Trace(domain.MapFacts{"letters": "a"})
	assert.ErrorIs(t, err, domain.ErrEvaluation)
	assert.Len(t, tr.Steps, 1)
}
