package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/result"
	"github.com/aretw0/arbor/pkg/tree"
)

// Explain renders an evaluation as markdown: the path through the tree, then
// the result or the error that stopped it.
func Explain(id string, tr *tree.Trace, err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Evaluation of `%s`\n\n", id)

	if tr != nil && len(tr.Steps) > 0 {
		sb.WriteString("| # | Input | Kind | Fact | Branch |\n")
		sb.WriteString("|---|-------|------|------|--------|\n")
		for i, s := range tr.Steps {
			branch := "`" + s.Key + "`"
			if s.Fallback {
				branch += " (default)"
			}
			fmt.Fprintf(&sb, "| %d | %s | %s | `%v` | %s |\n", i+1, s.Input, s.Kind, s.Fact, branch)
		}
		sb.WriteString("\n")
	}

	if err != nil {
		sb.WriteString("## Stopped\n\n")
		fmt.Fprintf(&sb, "> %s\n", err)
		if hint := hintFor(err); hint != "" {
			fmt.Fprintf(&sb, "\n%s\n", hint)
		}
		return sb.String()
	}

	sb.WriteString("## Result\n\n")
	if tr != nil && tr.Leaf != nil {
		fmt.Fprintf(&sb, "`%s`\n\n", tr.Leaf.String())
	}
	writeValue(&sb, tr)
	return sb.String()
}

func writeValue(sb *strings.Builder, tr *tree.Trace) {
	if tr == nil {
		return
	}
	rec, ok := tr.Result.(result.Record)
	if !ok {
		fmt.Fprintf(sb, "```\n%+v\n```\n", tr.Result)
		return
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, "- **%s**: `%v`\n", k, rec[k])
	}
}

func hintFor(err error) string {
	var (
		missing   *domain.MissingFactError
		mismatch  *domain.TypeMismatchError
		noMapping *domain.NoMappingError
	)
	switch {
	case errors.As(err, &missing):
		return fmt.Sprintf("Provide a value with `--fact %s=...`.", missing.Fact)
	case errors.As(err, &mismatch):
		return fmt.Sprintf("`%s` must be %s.", mismatch.Field, mismatch.Expected)
	case errors.As(err, &noMapping):
		return fmt.Sprintf("No branch of `%s` accepts this value.", noMapping.Input)
	}
	return ""
}
