package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Validate checks the completeness of the node and, depth first, of every
// descendant. The first failure is returned.
func (n *Node) Validate() error {
	return n.validate("/" + n.input.Name)
}

func (n *Node) validate(path string) error {
	if err := n.validateShallow(); err != nil {
		var cfg *domain.ConfigurationError
		if errors.As(err, &cfg) && cfg.Path == "" {
			cfg.Path = path
		}
		return err
	}
	for _, m := range n.Mappings() {
		child, ok := m.Branch.Node()
		if !ok {
			continue
		}
		if err := child.validate(path + "=" + m.Key + "/" + child.input.Name); err != nil {
			return err
		}
	}
	return nil
}

// validateShallow checks only the node's own mapping table.
func (n *Node) validateShallow() error {
	name := n.input.Name
	switch n.input.Kind {
	case domain.KindBoolean:
		if n.whenTrue.IsZero() {
			return domain.Configf(name, "Node %q must have a mapping for value \"true\"", name)
		}
		if n.whenFalse.IsZero() {
			return domain.Configf(name, "Node %q must have a mapping for value \"false\"", name)
		}
		return nil

	case domain.KindIntegerRange:
		min, max := n.input.Min, n.input.Max
		includesMin := false
		for _, e := range n.ranges {
			switch {
			case e.threshold < min:
				return domain.Configf(name, "Node %q cannot match value %s because it falls below the min value allowed", name, domain.FormatThreshold(e.threshold))
			case e.threshold > max:
				return domain.Configf(name, "Node %q cannot match value %s because it falls above the max value allowed", name, domain.FormatThreshold(e.threshold))
			case e.threshold == min:
				includesMin = true
			}
		}
		if !includesMin {
			return domain.Configf(name, "Node %q is missing minimum mapping of %q", name, domain.FormatBound(min))
		}
		return nil

	case domain.KindStringEnum:
		for _, m := range n.Mappings() {
			if !n.input.HasValue(m.Key) {
				return domain.Configf(name, "Node %q is not defined with an enumerated value %q", name, m.Key)
			}
		}
		var missing []string
		for _, v := range n.input.Values {
			if _, ok := n.cases[v]; !ok {
				missing = append(missing, v)
			}
		}
		if len(missing) > 0 {
			return domain.Configf(name, "Node %q is missing entries for values [%s]", name, strings.Join(missing, ", "))
		}
		return nil
	}

	return domain.Configf(name, "Unknown input-type: %s", n.input.Kind)
}

// String renders the node kind and input for debugging.
func (n *Node) String() string {
	return fmt.Sprintf("%sNode{%s}", n.input.Kind, n.input.Name)
}
