package graph

import (
	"cmp"
	"iter"
	"slices"
)

// Graph is an arena of package nodes with adjacency lists. Graphs are
// created by [Build]; the zero value is not usable.
type Graph struct {
	nodes []Node
	index map[string]NodeID
	out   [][]Edge
	in    [][]NodeID
	pairs map[[2]NodeID]int // (from, to) -> position in out[from]
	edges int

	requirements map[string][]Requirement
}

// Root is the NodeID of the manifest's own package.
const Root NodeID = 0

func newGraph(root PackageID) *Graph {
	g := &Graph{
		index:        make(map[string]NodeID),
		pairs:        make(map[[2]NodeID]int),
		requirements: make(map[string][]Requirement),
	}
	g.addNode(root)
	return g
}

func (g *Graph) addNode(id PackageID) NodeID {
	n := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Depth: -1})
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[id.Name] = n
	return n
}

// setEdge inserts from->to or upgrades an existing edge to a stronger
// relation. Weaker re-declarations are ignored.
func (g *Graph) setEdge(from, to NodeID, r Relation) {
	key := [2]NodeID{from, to}
	if i, ok := g.pairs[key]; ok {
		if r.Stronger(g.out[from][i].Relation) {
			g.out[from][i].Relation = r
		}
		return
	}
	g.pairs[key] = len(g.out[from])
	g.out[from] = append(g.out[from], Edge{From: from, To: to, Relation: r})
	g.in[to] = append(g.in[to], from)
	g.edges++
}

// seal orders adjacency lists by package name and drops build-only state.
func (g *Graph) seal() {
	byName := func(a, b NodeID) int { return cmp.Compare(g.nodes[a].ID.Name, g.nodes[b].ID.Name) }
	for i := range g.out {
		slices.SortFunc(g.out[i], func(a, b Edge) int { return byName(a.To, b.To) })
		slices.SortFunc(g.in[i], byName)
	}
	for i, edges := range g.out {
		for j, e := range edges {
			g.pairs[[2]NodeID{NodeID(i), e.To}] = j
		}
	}
}

// Len returns the number of nodes, including the root.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of distinct (parent, child) edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Node returns a pointer to the node with the given id. The pointer is
// valid for the lifetime of the graph. It panics if id is out of range.
func (g *Graph) Node(id NodeID) *Node { return &g.nodes[id] }

// Name is shorthand for g.Node(id).ID.Name.
func (g *Graph) Name(id NodeID) string { return g.nodes[id].ID.Name }

// Lookup returns the node for a package name.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.index[name]
	return id, ok
}

// LookupID returns the node whose identity equals id exactly.
func (g *Graph) LookupID(id PackageID) (NodeID, bool) {
	n, ok := g.index[id.Name]
	if !ok || g.nodes[n].ID != id {
		return 0, false
	}
	return n, true
}

// Children returns the outgoing edges of id ordered by child name.
// The returned slice must not be modified.
func (g *Graph) Children(id NodeID) []Edge { return g.out[id] }

// Parents returns the nodes with an edge to id ordered by name.
// The returned slice must not be modified.
func (g *Graph) Parents(id NodeID) []NodeID { return g.in[id] }

// HasEdge reports whether from->to exists.
func (g *Graph) HasEdge(from, to NodeID) bool {
	_, ok := g.pairs[[2]NodeID{from, to}]
	return ok
}

// EdgeBetween returns the edge from->to, if any.
func (g *Graph) EdgeBetween(from, to NodeID) (Edge, bool) {
	i, ok := g.pairs[[2]NodeID{from, to}]
	if !ok {
		return Edge{}, false
	}
	return g.out[from][i], true
}

// All iterates over the nodes in index order.
func (g *Graph) All() iter.Seq2[NodeID, *Node] {
	return func(yield func(NodeID, *Node) bool) {
		for i := range g.nodes {
			if !yield(NodeID(i), &g.nodes[i]) {
				return
			}
		}
	}
}

// Edges iterates over every edge, grouped by parent in index order.
func (g *Graph) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, edges := range g.out {
			for _, e := range edges {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Direct returns the root's children, ordered by name.
func (g *Graph) Direct() []Edge { return g.out[Root] }

// IsDirect reports whether id is declared by the root manifest.
func (g *Graph) IsDirect(id NodeID) bool { return g.HasEdge(Root, id) }
