package compiler

import (
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type route struct {
	Queue    string
	Priority string
	Urgent   bool
	Note     string
	Weight   int64
}

func routeRegistry() *result.Registry {
	return result.NewRegistry(result.Define[route]("Route").
		String("queue", func(r *route, v string) { r.Queue = v }).
		String("priority", func(r *route, v string) { r.Priority = v }).
		Bool("urgent", func(r *route, v bool) { r.Urgent = v }).
		String("note", func(r *route, v string) { r.Note = v }).
		Int("weight", func(r *route, v int64) { r.Weight = v }).
		Build())
}

const header = `
input-types:
  - string-type: { name: letters, values: [a, b, c], default: b }
  - integer-type: { name: range }
  - boolean-type: { name: flag }
result-type:
  class: Route
  attributes:
    - string-attribute: { name: queue, values: [billing, support, sales] }
    - string-attribute: { name: priority, values: [low, high], default: low }
    - boolean-attribute: { name: urgent }
    - text-attribute: { name: note, default: none }
    - integer-attribute: { name: weight, default: 1 }
`

func compile(t *testing.T, body string) (*tree.DecisionTree, error) {
	t.Helper()
	doc, err := document.Parse([]byte(header + body))
	require.NoError(t, err)
	return New(WithRegistry(routeRegistry())).Compile(doc)
}

func mustCompile(t *testing.T, body string) *tree.DecisionTree {
	t.Helper()
	dt, err := compile(t, body)
	require.NoError(t, err)
	return dt
}

func TestCompile_NestedTree(t *testing.T) {
	dt := mustCompile(t, `
tree:
  - input: range
    value: unbounded
    result: { queue: billing }
  - input: range
    value: 0
    children:
      - { input: flag, value: true, result: { queue: support, urgent: true, priority: high } }
      - { input: flag, value: false, result: { queue: support, note: calm } }
  - input: range
    value: 10
    children:
      - { input: letters, value: a, result: { queue: sales, weight: 5 } }
      - { input: letters, value: b, ref: a }
      - { input: letters, value: c, result: { queue: billing } }
`)

	tests := []struct {
		name  string
		facts domain.MapFacts
		want  *route
	}{
		{"negative", domain.MapFacts{"range": -3}, &route{Queue: "billing", Priority: "low", Note: "none", Weight: 1}},
		{"urgent", domain.MapFacts{"range": 4, "flag": true}, &route{Queue: "support", Priority: "high", Urgent: true, Note: "none", Weight: 1}},
		{"calm", domain.MapFacts{"range": 0, "flag": false}, &route{Queue: "support", Priority: "low", Note: "calm", Weight: 1}},
		{"alias", domain.MapFacts{"range": 10, "letters": "b"}, &route{Queue: "sales", Priority: "low", Note: "none", Weight: 5}},
		{"default letter", domain.MapFacts{"range": 99, "letters": "zzz"}, &route{Queue: "sales", Priority: "low", Note: "none", Weight: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := dt.Evaluate(tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCompile_ReferencesToNodesInEitherOrder(t *testing.T) {
	for name, body := range map[string]string{
		"ref first": `
tree:
  - { input: letters, value: a, ref: c }
  - { input: letters, value: b, ref: a }
  - input: letters
    value: c
    children:
      - { input: flag, value: true, result: { queue: sales } }
      - { input: flag, value: false, result: { queue: billing } }
`,
		"ref last": `
tree:
  - input: letters
    value: c
    children:
      - { input: flag, value: true, result: { queue: sales } }
      - { input: flag, value: false, result: { queue: billing } }
  - { input: letters, value: b, ref: a }
  - { input: letters, value: a, ref: c }
`,
	} {
		t.Run(name, func(t *testing.T) {
			dt := mustCompile(t, body)
			for _, letter := range []string{"a", "b", "c"} {
				out, err := dt.Evaluate(domain.MapFacts{"letters": letter, "flag": true})
				require.NoError(t, err)
				assert.Equal(t, "sales", out.(*route).Queue)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		path string
	}{
		{
			name: "no tree",
			body: "tree: []\n",
			want: "Invalid configuration: Invalid document: no tree found",
		},
		{
			name: "mixed siblings",
			body: "tree:\n  - { input: flag, value: true, result: { queue: sales } }\n  - { input: range, value: unbounded, result: { queue: sales } }\n",
			want: "Invalid configuration: Node at path / must have only one child type.",
			path: "/",
		},
		{
			name: "undefined input",
			body: "tree:\n  - { input: colour, value: red, result: { queue: sales } }\n",
			want: `Invalid configuration: Undefined input name: "colour"`,
		},
		{
			name: "ref and children",
			body: "tree:\n  - input: range\n    value: unbounded\n    ref: \"0\"\n    children:\n      - { input: flag, value: true, result: { queue: sales } }\n",
			want: "Invalid configuration: Node at path /range=unbounded may not have both a refid and child elements.",
			path: "/range=unbounded",
		},
		{
			name: "empty element",
			body: "tree:\n  - { input: range, value: unbounded }\n",
			want: "Invalid configuration: Node at path /range=unbounded must have a result, child inputs, or a refid",
		},
		{
			name: "unknown attribute",
			body: "tree:\n  - { input: range, value: unbounded, result: { colour: red } }\n",
			want: `Invalid configuration: Result spec has no mapping for attribute "colour"`,
			path: "/range=unbounded",
		},
		{
			name: "invalid attribute value",
			body: "tree:\n  - { input: range, value: unbounded, result: { queue: nowhere } }\n",
			want: `Invalid configuration: Invalid value "nowhere" for string result attribute "queue"`,
		},
		{
			name: "duplicate key",
			body: "tree:\n  - { input: flag, value: true, result: { queue: sales } }\n  - { input: flag, value: true, result: { queue: sales } }\n",
			want: `Invalid configuration: Node "flag" may not have multiple mappings for the same value "true"`,
			path: "/flag=true",
		},
		{
			name: "unresolved reference",
			body: "tree:\n  - { input: range, value: unbounded, result: { queue: sales } }\n  - { input: range, value: 5, ref: \"7\" }\n",
			want: "Invalid configuration: Unmatched references found: 7",
			path: "/range",
		},
		{
			name: "incomplete nested node",
			body: "tree:\n  - input: range\n    value: unbounded\n    children:\n      - { input: flag, value: true, result: { queue: sales } }\n",
			want: `Invalid configuration: Node "flag" must have a mapping for value "false"`,
			path: "/range=unbounded/flag",
		},
		{
			name: "integer mapping without value",
			body: "tree:\n  - { input: range, result: { queue: sales } }\n",
			want: `Invalid configuration: Node "range" has an invalid integer value ""`,
			path: "/range=",
		},
		{
			name: "incomplete enum",
			body: "tree:\n  - { input: letters, value: a, result: { queue: sales } }\n",
			want: `Invalid configuration: Node "letters" is missing entries for values [b, c]`,
			path: "/letters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.body)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Equal(t, tt.want, err.Error())

			if tt.path != "" {
				var cfg *domain.ConfigurationError
				require.True(t, errors.As(err, &cfg))
				assert.Equal(t, tt.path, cfg.Path)
			}
		})
	}
}

func TestCompile_HeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "reserved name",
			doc:  "input-types:\n  - boolean-type: { name: result }\ntree: []\n",
			want: `Invalid configuration: No input-type may be named "result" since it is a reserved keyword`,
		},
		{
			name: "two defaults",
			doc:  "input-types:\n  - string-type: { name: x, values: [{text: a, default: true}, {text: b, default: true}] }\ntree: []\n",
			want: `Invalid configuration: Input-type "x" may not have more than one default type.`,
		},
		{
			name: "invalid min",
			doc:  "input-types:\n  - integer-type: { name: range, min: low }\ntree: []\n",
			want: `Invalid configuration: Invalid min value "low" for input-type "range"`,
		},
		{
			name: "missing result type",
			doc:  "input-types:\n  - boolean-type: { name: flag }\ntree: []\n",
			want: "Invalid configuration: Missing result-type element",
		},
		{
			name: "unknown class",
			doc:  "input-types: []\nresult-type: { class: Nope, attributes: [] }\ntree: []\n",
			want: "Invalid configuration: Result class not found: Nope",
		},
		{
			name: "attribute not on class",
			doc:  "input-types: []\nresult-type: { class: Route, attributes: [ { text-attribute: { name: colour } } ] }\ntree: []\n",
			want: "Invalid configuration: Result attribute colour not defined on result class Route",
		},
		{
			name: "invalid boolean default",
			doc:  "input-types: []\nresult-type: { class: Route, attributes: [ { boolean-attribute: { name: urgent, default: maybe } } ] }\ntree: []\n",
			want: `Invalid configuration: Invalid default value "maybe" for boolean result attribute "urgent"`,
		},
		{
			name: "attribute without kind",
			doc:  "input-types: []\nresult-type: { class: Route, attributes: [ {} ] }\ntree: []\n",
			want: "Invalid configuration: Unknown result attribute type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := document.Parse([]byte(tt.doc))
			require.NoError(t, err)

			_, err = New(WithRegistry(routeRegistry())).Compile(doc)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestCompile_OpenResults(t *testing.T) {
	doc, err := document.Parse([]byte(`
input-types:
  - boolean-type: { name: flag }
result-type:
  class: Anything
  attributes:
    - text-attribute: { name: label }
    - boolean-attribute: { name: done, default: "true" }
tree:
  - { input: flag, value: true, result: { label: yes } }
  - { input: flag, value: false, result: {} }
`))
	require.NoError(t, err)

	_, err = New().Compile(doc)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	dt, err := New(WithOpenResults(true)).Compile(doc)
	require.NoError(t, err)

	out, err := dt.Evaluate(domain.MapFacts{"flag": false})
	require.NoError(t, err)
	assert.Equal(t, result.Record{"label": "", "done": true}, out)
}
