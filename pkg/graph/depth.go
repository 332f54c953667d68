package graph

// ComputeDepths assigns every node its breadth-first distance from the
// root. The root gets 0; each child of a node at depth d that has not been
// reached yet gets d+1.
func ComputeDepths(g *Graph) {
	for i := range g.nodes {
		g.nodes[i].Depth = -1
	}
	g.nodes[Root].Depth = 0
	queue := []NodeID{Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range g.out[n] {
			if g.nodes[e.To].Depth >= 0 {
				continue
			}
			g.nodes[e.To].Depth = g.nodes[n].Depth + 1
			queue = append(queue, e.To)
		}
	}
}

// NodesAtDepth returns the nodes at distance d from the root in index
// order. ComputeDepths must have run.
func (g *Graph) NodesAtDepth(d int) []NodeID {
	var ids []NodeID
	for i, n := range g.nodes {
		if n.Depth == d {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// MaxDepth returns the greatest node depth, or -1 before ComputeDepths.
func (g *Graph) MaxDepth() int {
	deepest := -1
	for _, n := range g.nodes {
		deepest = max(deepest, n.Depth)
	}
	return deepest
}
