package graph

import (
	"slices"
	"testing"
)

func reachable(g *Graph, from NodeID) map[NodeID]bool {
	seen := map[NodeID]bool{from: true}
	stack := []NodeID{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.Children(n) {
			if !seen[e.To] {
				seen[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	return seen
}

func TestFindCyclesTriangle(t *testing.T) {
	g := mustBuild(t, &Manifest{
		Root:       PackageID{Name: "app"},
		Production: decls("a", "1"),
		Packages: map[string]*Manifest{
			"a": {Production: decls("b", "1")},
			"b": {Production: decls("c", "1")},
			"c": {Production: decls("a", "1")},
		},
	})

	cycles := FindCycles(g)
	if len(cycles) != 1 {
		t.Fatalf("FindCycles() = %d cycles, want 1", len(cycles))
	}
	if cycles[0].Len() != 3 {
		t.Errorf("cycle length = %d, want 3", cycles[0].Len())
	}
	if got := cycles[0].Path(g); got != "a -> b -> c -> a" {
		t.Errorf("Path() = %q", got)
	}

	again := FindCycles(g)
	if !slices.EqualFunc(cycles, again, func(x, y Cycle) bool { return slices.Equal(x.Nodes, y.Nodes) }) {
		t.Error("FindCycles() output changed between runs")
	}
}

func TestFindCyclesSelfEdge(t *testing.T) {
	g := mustBuild(t, &Manifest{
		Root:       PackageID{Name: "app"},
		Production: decls("a", "1"),
		Packages: map[string]*Manifest{
			"a": {Production: decls("a", "1")},
		},
	})

	cycles := FindCycles(g)
	if len(cycles) != 1 || cycles[0].Len() != 1 {
		t.Fatalf("FindCycles() = %+v, want one cycle of length 1", cycles)
	}
	if got := cycles[0].Path(g); got != "a -> a" {
		t.Errorf("Path() = %q", got)
	}
}

func TestFindCyclesRootSelfDependency(t *testing.T) {
	g := mustBuild(t, &Manifest{
		Root:       PackageID{Name: "app"},
		Production: decls("app", "*"),
	})
	if g.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", g.Len())
	}
	if cycles := FindCycles(g); len(cycles) != 1 {
		t.Errorf("FindCycles() = %d cycles, want 1", len(cycles))
	}
}

func TestFindCyclesExactSCCs(t *testing.T) {
	g := mustBuild(t, &Manifest{
		Root:       PackageID{Name: "app"},
		Production: decls("a", "1", "x", "1", "solo", "1"),
		Packages: map[string]*Manifest{
			"a":    {Production: decls("b", "1")},
			"b":    {Production: decls("a", "1", "c", "1")},
			"c":    {Production: decls("d", "1")},
			"d":    {Production: decls("c", "1", "e", "1")},
			"x":    {Dev: decls("y", "1")},
			"y":    {Peer: decls("z", "1")},
			"z":    {Optional: decls("x", "1")},
			"solo": {Production: decls("e", "1")},
		},
	})

	cycles := FindCycles(g)
	var got [][]string
	for _, c := range cycles {
		got = append(got, c.Names(g))
	}
	want := [][]string{{"a", "b"}, {"c", "d"}, {"x", "y", "z"}}
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Fatalf("cycles = %v, want %v", got, want)
	}

	// Every member reaches every other member, and no outside node is
	// mutually reachable with a member.
	membership := CycleMembership(cycles)
	for _, c := range cycles {
		for _, u := range c.Nodes {
			r := reachable(g, u)
			for _, v := range c.Nodes {
				if !r[v] {
					t.Errorf("%s does not reach %s", g.Name(u), g.Name(v))
				}
			}
			for w := range r {
				if _, in := membership[w]; in {
					continue
				}
				if reachable(g, w)[u] && w != u {
					t.Errorf("%s is mutually reachable with %s but not reported", g.Name(w), g.Name(u))
				}
			}
		}
	}

	a, _ := g.Lookup("a")
	b, _ := g.Lookup("b")
	c, _ := g.Lookup("c")
	if !InCycle(membership, a, b) {
		t.Error("InCycle(a, b) = false")
	}
	if InCycle(membership, b, c) {
		t.Error("InCycle(b, c) = true, edge joins two different cycles")
	}
}
