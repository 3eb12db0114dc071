// Package dag builds and orders the dependency graph over a folder of
// transformation units. Nodes are unit names plus every table name
// referenced as a dependency; names with no matching unit are source
// leaves assumed to pre-exist in the database.
package dag

import (
	"github.com/ductolabs/ducto/internal/unit"
)

// Node is one entry in the execution graph.
type Node struct {
	// Name is the unit name or referenced table name.
	Name string
	// Unit is nil for source leaves.
	Unit *unit.Unit
	// Deps are the table names this node's governing statement reads.
	// Always empty for source leaves.
	Deps []string
}

// IsSource reports whether the node is a source leaf.
func (n *Node) IsSource() bool {
	return n.Unit == nil
}

// Graph is the execution graph. Node iteration follows first-discovery
// order so that scheduling is deterministic for identical inputs.
type Graph struct {
	nodes map[string]*Node
	order []string // first-discovery order
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddUnit adds a unit node with its dependency set. Every dependency
// not yet present is added as a source leaf; a later AddUnit for the
// same name upgrades the leaf in place, preserving discovery order.
func (g *Graph) AddUnit(u *unit.Unit, deps []string) {
	node := g.ensure(u.Name)
	node.Unit = u
	node.Deps = deps
	for _, dep := range deps {
		g.ensure(dep)
	}
}

// ensure returns the node for name, creating a source leaf if needed.
func (g *Graph) ensure(name string) *Node {
	if node, ok := g.nodes[name]; ok {
		return node
	}
	node := &Node{Name: name}
	g.nodes[name] = node
	g.order = append(g.order, name)
	return node
}

// Node returns the node for name.
func (g *Graph) Node(name string) (*Node, bool) {
	node, ok := g.nodes[name]
	return node, ok
}

// Nodes returns all nodes in first-discovery order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Order computes a total execution order: every node appears after all
// nodes in its dependency set. Kahn's algorithm seeded and tie-broken
// by first-discovery order, so identical inputs always produce
// identical output. Returns a CycleError when the graph is not acyclic.
func (g *Graph) Order() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))

	for _, name := range g.order {
		node := g.nodes[name]
		for _, dep := range node.Deps {
			if dep == name {
				return nil, &CycleError{Nodes: []string{name, name}}
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for _, name := range g.order {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, &CycleError{Nodes: g.findCycle()}
	}
	return order, nil
}

// findCycle locates one cycle for error reporting. The returned path
// starts and ends on the same node.
func (g *Graph) findCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	parent := make(map[string]string)

	var cycle []string
	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		onStack[name] = true
		for _, dep := range g.nodes[name].Deps {
			if !visited[dep] {
				parent[dep] = name
				if dfs(dep) {
					return true
				}
			} else if onStack[dep] {
				cycle = []string{dep}
				for cur := name; cur != dep; cur = parent[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{dep}, cycle...)
				return true
			}
		}
		onStack[name] = false
		return false
	}

	for _, name := range g.order {
		if !visited[name] {
			if dfs(name) {
				return cycle
			}
		}
	}
	return nil
}
