package tree

import (
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

type reference struct {
	key    string
	target string
}

// references holds the aliases of one builder that are not yet resolved.
type references struct {
	pending []reference
}

func (r *references) add(key, target string) {
	r.pending = append(r.pending, reference{key: key, target: target})
}

func (r *references) has(key string) bool {
	for _, ref := range r.pending {
		if ref.key == key {
			return true
		}
	}
	return false
}

// resolveAll makes full passes over the pending aliases until a pass resolves
// nothing. resolve copies the target's branch to the alias key and reports
// whether the target was concrete. Whatever is left over is reported with its
// targets; cycles never make progress and end up here too.
func (r *references) resolveAll(input string, resolve func(key, target string) (bool, error)) error {
	for {
		progressed := false
		remaining := r.pending[:0]
		for _, ref := range r.pending {
			ok, err := resolve(ref.key, ref.target)
			if err != nil {
				return err
			}
			if ok {
				progressed = true
				continue
			}
			remaining = append(remaining, ref)
		}
		r.pending = remaining
		if !progressed || len(r.pending) == 0 {
			break
		}
	}

	if len(r.pending) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var targets []string
	for _, ref := range r.pending {
		if !seen[ref.target] {
			seen[ref.target] = true
			targets = append(targets, ref.target)
		}
	}
	sort.Strings(targets)
	return domain.Configf(input, "Unmatched references found: %s", strings.Join(targets, ","))
}
