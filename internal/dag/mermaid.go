package dag

import (
	"fmt"
	"strings"
)

// Mermaid renders the graph as a mermaid flowchart, dependencies
// pointing at their dependents. Node order follows discovery order so
// the output is stable across runs.
func Mermaid(g *Graph) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")
	for _, node := range g.Nodes() {
		fmt.Fprintf(&sb, "  %s(%s)\n", node.Name, node.Name)
		for _, dep := range node.Deps {
			fmt.Fprintf(&sb, "  %s --> %s\n", dep, node.Name)
		}
	}
	return sb.String()
}
