package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// ParseFacts turns key=value flags into facts typed by the tree's input types.
func ParseFacts(ev ports.Evaluator, pairs []string) (domain.MapFacts, error) {
	raw := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid fact %q: expected key=value", p)
		}
		raw[key] = value
	}
	return domain.ParseFacts(raw, ev.Tree().InputTypes())
}
