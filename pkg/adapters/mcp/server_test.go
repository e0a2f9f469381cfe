package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gateYAML = `
input-types:
  - string-type: { name: env, values: [prod, staging, { text: dev, default: true }] }
result-type:
  class: Gate
  attributes:
    - boolean-attribute: { name: approval }
tree:
  - { input: env, value: prod, result: { approval: true } }
  - { input: env, value: staging, ref: dev }
  - { input: env, value: dev, result: { approval: false } }
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	lib := arbor.NewLibrary(memory.NewLoader(map[string]string{"gate": gateYAML}), arbor.WithOpenResults(true))
	require.NoError(t, lib.Load(context.Background()))
	return NewServer(lib, logging.NewNop())
}

// call sends one JSON-RPC request through the server and decodes the raw reply.
func call(t *testing.T, s *Server, method string, params any) map[string]any {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	reply := s.mcpServer.HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(reply)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Nil(t, out["error"], string(raw))
	return out["result"].(map[string]any)
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) map[string]any {
	t.Helper()
	return call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
}

func TestListTools(t *testing.T) {
	res := call(t, newTestServer(t), "tools/list", map[string]any{})

	var names []string
	for _, tool := range res["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"list_trees", "describe_tree", "evaluate"}, names)
}

func TestListTrees(t *testing.T) {
	res := callTool(t, newTestServer(t), "list_trees", map[string]any{})
	assert.Equal(t, map[string]any{"trees": []any{"gate"}}, res["structuredContent"])
}

func TestDescribeTree(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s, "describe_tree", map[string]any{"id": "gate"})
	summary := res["structuredContent"].(map[string]any)
	assert.Equal(t, "env", summary["root"])
	assert.Equal(t, "Gate", summary["result"].(map[string]any)["class"])
	assert.Equal(t, map[string]any{"env": "string{prod,staging,dev}"}, summary["facts"])

	res = callTool(t, s, "describe_tree", map[string]any{"id": "missing"})
	assert.Equal(t, true, res["isError"])
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		facts    map[string]any
		approval any
		isError  bool
	}{
		{"prod", map[string]any{"env": "prod"}, true, false},
		{"staging follows dev", map[string]any{"env": "staging"}, false, false},
		{"unknown uses default", map[string]any{"env": "qa"}, false, false},
		{"missing fact", map[string]any{}, nil, true},
		{"type mismatch", map[string]any{"env": 3}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, "evaluate", map[string]any{"id": "gate", "facts": tt.facts})
			if tt.isError {
				assert.Equal(t, true, res["isError"])
				return
			}
			out := res["structuredContent"].(map[string]any)
			assert.Equal(t, "gate", out["tree"])
			assert.Equal(t, tt.approval, out["result"].(map[string]any)["approval"])
			assert.Nil(t, out["trace"])
		})
	}
}

func TestEvaluate_Trace(t *testing.T) {
	res := callTool(t, newTestServer(t), "evaluate", map[string]any{
		"id":    "gate",
		"facts": map[string]any{"env": "qa"},
		"trace": true,
	})
	out := res["structuredContent"].(map[string]any)
	steps := out["trace"].([]any)
	require.Len(t, steps, 1)
	step := steps[0].(map[string]any)
	assert.Equal(t, "dev", step["key"])
	assert.Equal(t, true, step["fallback"])
}

func TestTreesResource(t *testing.T) {
	res := call(t, newTestServer(t), "resources/read", map[string]any{"uri": TreesURI})

	contents := res["contents"].([]any)
	require.Len(t, contents, 1)
	text := contents[0].(map[string]any)["text"].(string)

	var summaries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "gate", summaries[0]["id"])
}
