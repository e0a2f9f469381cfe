package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/result"
	"github.com/aretw0/arbor/pkg/tree"
)

// GraphOverlay marks the path of one evaluation on the graph.
type GraphOverlay struct {
	VisitedNodes []*tree.Node
	Leaf         *result.Leaf
}

// OverlayFromTrace replays the steps of a trace from the root of dt.
func OverlayFromTrace(dt *tree.DecisionTree, tr *tree.Trace) *GraphOverlay {
	overlay := &GraphOverlay{Leaf: tr.Leaf}
	node := dt.Root()
	for _, step := range tr.Steps {
		if node == nil {
			break
		}
		overlay.VisitedNodes = append(overlay.VisitedNodes, node)
		var next *tree.Node
		for _, m := range node.Mappings() {
			if m.Key == step.Key {
				next, _ = m.Branch.Node()
				break
			}
		}
		node = next
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of the tree.
// Decision nodes are drawn as {Rhombus} and result leaves as [Rectangle].
// Shared nodes (references) are drawn once with one edge per mapped value.
// The enum default is labelled on its edge, and the overlay, if any, styles
// the visited path.
func GenerateMermaid(dt *tree.DecisionTree, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := newIDs()
	var visit func(n *tree.Node)
	visit = func(n *tree.Node) {
		id, fresh := ids.node(n)
		if !fresh {
			return
		}
		fmt.Fprintf(&sb, "    %s{\"%s\"}\n", id, escape(n.Name()))

		def := ""
		if n.Input().HasDefault() {
			def = n.Input().Default
		}

		for _, m := range n.Mappings() {
			label := m.Key
			if m.Key == def {
				label += " (default)"
			}

			if child, ok := m.Branch.Node(); ok {
				childID, _ := ids.peekNode(child)
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, escape(label), childID)
				visit(child)
				continue
			}
			if leaf, ok := m.Branch.Leaf(); ok {
				leafID, fresh := ids.leaf(leaf)
				if fresh {
					fmt.Fprintf(&sb, "    %s[\"%s\"]\n", leafID, escape(leaf.String()))
				}
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, escape(label), leafID)
			}
		}
	}
	visit(dt.Root())

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for _, n := range overlay.VisitedNodes {
			id, ok := ids.nodes[n]
			if ok && !styled[id] {
				styled[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.Leaf != nil {
			if id, ok := ids.leaves[overlay.Leaf]; ok {
				fmt.Fprintf(&sb, "    class %s current;\n", id)
			}
		}
	}

	return sb.String()
}

// ids hands out stable Mermaid identifiers by pointer identity.
type ids struct {
	nodes  map[*tree.Node]string
	leaves map[*result.Leaf]string
}

func newIDs() *ids {
	return &ids{nodes: make(map[*tree.Node]string), leaves: make(map[*result.Leaf]string)}
}

func (i *ids) node(n *tree.Node) (string, bool) {
	if id, ok := i.nodes[n]; ok {
		return id, false
	}
	id := fmt.Sprintf("n%d_%s", len(i.nodes)+1, sanitizeMermaidID(n.Name()))
	i.nodes[n] = id
	return id, true
}

// peekNode returns the id n will get, registering it without marking it drawn.
func (i *ids) peekNode(n *tree.Node) (string, bool) {
	if id, ok := i.nodes[n]; ok {
		return id, false
	}
	return fmt.Sprintf("n%d_%s", len(i.nodes)+1, sanitizeMermaidID(n.Name())), true
}

func (i *ids) leaf(l *result.Leaf) (string, bool) {
	if id, ok := i.leaves[l]; ok {
		return id, false
	}
	id := fmt.Sprintf("r%d", len(i.leaves)+1)
	i.leaves[l] = id
	return id, true
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
