package loam

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/loam"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/internal/testutils"
	"github.com/aretw0/arbor/pkg/document"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/aretw0/arbor/pkg/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkdown = `---
name: %s
input-types:
  - boolean-type:
      name: flag
result-type:
  class: Answer
  attributes:
    - text-attribute:
        name: label
tree:
  - input: flag
    value: true
    result:
      label: "yes"
  - input: flag
    value: false
    result:
      label: "no"
---
`

func newLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, files)
	return New(loam.NewTypedRepository[TreeMetadata](repo))
}

func sample(name string) string {
	return fmt.Sprintf(sampleMarkdown, name)
}

func TestLoader_Contract(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"a.md": sample("a"),
		"b.md": sample("b"),
	})

	tests.DocumentLoaderContractTest(t, loader, map[string]*document.Document{
		"a": tests.SampleDocument("a"),
		"b": tests.SampleDocument("b"),
	})
}

func TestLoader_ListDocuments_NormalizesIDs(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"start.md": sample("start"),
		"choice.json": `{
  "id": "choice.json",
  "input-types": [{"boolean-type": {"name": "flag"}}],
  "tree": []
}`,
	})

	ids, err := loader.ListDocuments(context.Background())
	require.NoError(t, err)

	assert.Contains(t, ids, "start", "start.md should become start")
	assert.Contains(t, ids, "choice", "choice.json should become choice")
	assert.Len(t, ids, 2)
}

func TestLoader_ListDocuments_DetectsCollisions(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"foo.md": "---\nid: foo\ntree: []\n---\n",
		"foo.json": `{
  "id": "foo",
  "tree": []
}`,
	})

	_, err := loader.ListDocuments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestLoader_BodyBecomesDescription(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"routing.md": sample("") + "\nRoutes requests by flag.\n",
	})

	doc, err := loader.LoadDocument(context.Background(), "routing")
	require.NoError(t, err)
	assert.Equal(t, "routing", doc.Name)
	assert.Equal(t, "Routes requests by flag.", doc.Description)
}

func TestLoader_NumericFrontMatterCompiles(t *testing.T) {
	loader := newLoader(t, map[string]string{
		"ranges.md": `---
input-types:
  - integer-type:
      name: range
      min: -10
      max: 10
result-type:
  class: Answer
  attributes:
    - integer-attribute:
        name: score
tree:
  - input: range
    value: 0
    result:
      score: 1
  - input: range
    value: unbounded
    result:
      score: 0
---
`,
	})

	doc, err := loader.LoadDocument(context.Background(), "ranges")
	require.NoError(t, err)
	assert.Equal(t, document.Scalar("-10"), doc.InputTypes[0].IntegerType.Min)

	dt, err := compiler.New(compiler.WithOpenResults(true)).Compile(doc)
	require.NoError(t, err)

	got, err := dt.Evaluate(domain.MapFacts{"range": 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.(result.Record)["score"])
}
