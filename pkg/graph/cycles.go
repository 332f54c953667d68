package graph

import (
	"slices"
	"strings"
)

// Cycle is a strongly connected component of two or more packages, or a
// single package that depends on itself.
type Cycle struct {
	// Nodes are ordered by discovery from the component's entry point.
	Nodes []NodeID
}

// Len returns the number of packages in the cycle.
func (c Cycle) Len() int { return len(c.Nodes) }

// Names returns the package names in cycle order.
func (c Cycle) Names(g *Graph) []string {
	names := make([]string, len(c.Nodes))
	for i, id := range c.Nodes {
		names[i] = g.Name(id)
	}
	return names
}

// Path formats the cycle as "a -> b -> c -> a".
func (c Cycle) Path(g *Graph) string {
	if len(c.Nodes) == 0 {
		return ""
	}
	names := append(c.Names(g), g.Name(c.Nodes[0]))
	return strings.Join(names, " -> ")
}

// tarjan holds the per-run state of Tarjan's strongly connected components
// algorithm: discovery indices, low-links and the component stack.
type tarjan struct {
	g       *Graph
	counter int
	index   []int
	low     []int
	onStack []bool
	stack   []NodeID
	found   []Cycle
}

// FindCycles returns every dependency cycle in g. It never mutates g.
//
// The walk starts at the root and then picks up any node not yet visited
// in index order; children are visited in adjacency order. Cycles are
// returned in the order their entry points were discovered, so repeated
// runs over the same graph give identical output.
func FindCycles(g *Graph) []Cycle {
	t := &tarjan{
		g:       g,
		index:   make([]int, g.Len()),
		low:     make([]int, g.Len()),
		onStack: make([]bool, g.Len()),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	for v := range g.nodes {
		if t.index[v] < 0 {
			t.strongConnect(NodeID(v))
		}
	}
	slices.SortFunc(t.found, func(a, b Cycle) int {
		return t.index[a.Nodes[0]] - t.index[b.Nodes[0]]
	})
	return t.found
}

func (t *tarjan) strongConnect(v NodeID) {
	t.index[v] = t.counter
	t.low[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, e := range t.g.out[v] {
		w := e.To
		if t.index[w] < 0 {
			t.strongConnect(w)
			t.low[v] = min(t.low[v], t.low[w])
		} else if t.onStack[w] {
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] != t.index[v] {
		return
	}

	var comp []NodeID
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		comp = append(comp, w)
		if w == v {
			break
		}
	}
	if len(comp) == 1 && !t.g.HasEdge(v, v) {
		return
	}
	slices.SortFunc(comp, func(a, b NodeID) int { return t.index[a] - t.index[b] })
	t.found = append(t.found, Cycle{Nodes: comp})
}

// CycleMembership maps every node that belongs to a cycle to the cycle's
// position in cycles.
func CycleMembership(cycles []Cycle) map[NodeID]int {
	m := make(map[NodeID]int)
	for i, c := range cycles {
		for _, id := range c.Nodes {
			m[id] = i
		}
	}
	return m
}

// InCycle reports whether the edge from->to lies inside one cycle.
func InCycle(membership map[NodeID]int, from, to NodeID) bool {
	a, ok := membership[from]
	if !ok {
		return false
	}
	b, ok := membership[to]
	return ok && a == b
}
