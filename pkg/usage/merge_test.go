package usage

import (
	"slices"
	"testing"

	"github.com/matzehuels/codescope/pkg/graph"
)

func mergeGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build(&graph.Manifest{
		Root: graph.PackageID{Name: "app", Version: "1.0.0"},
		Production: []graph.Declaration{
			{Name: "lodash", Version: "^4.17.21"},
			{Name: "moment", Version: "^2.29.0"},
			{Name: "core-js", Version: "^3.0.0"},
			{Name: "react", Version: "^18.0.0"},
		},
		Dev:  []graph.Declaration{{Name: "jest", Version: "^29.0.0"}},
		Peer: []graph.Declaration{{Name: "react-dom", Version: "^18.0.0"}},
		Packages: map[string]*graph.Manifest{
			"react": {Production: []graph.Declaration{{Name: "scheduler", Version: "^0.23.0"}, {Name: "loose-envify", Version: "^1.1.0"}}},
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func node(t *testing.T, g *graph.Graph, name string) *graph.Node {
	t.Helper()
	id, ok := g.Lookup(name)
	if !ok {
		t.Fatalf("Lookup(%q) not found", name)
	}
	return g.Node(id)
}

func TestMerge(t *testing.T) {
	g := mergeGraph(t)
	a := NewAnalyzer()
	a.Add(
		Record{File: "src/a.ts", Package: "lodash", Kind: KindNamed, Export: "map"},
		Record{File: "src/a.ts", Package: "react", Kind: KindDefault},
		Record{File: "src/a.ts", Package: "scheduler", Kind: KindNamed, Export: "unstable_now"},
		Record{File: "src/polyfills.ts", Package: "core-js/stable", Kind: KindSideEffect},
		Record{File: "src/a.ts", Package: "zod", Kind: KindNamed, Export: "z"},
	)
	sum := Merge(g, a, ExportCounts{"lodash": 300, "react": 20})

	lodash := node(t, g, "lodash")
	if lodash.Usage == nil || lodash.Usage.Files != 1 || lodash.Usage.Named != 1 {
		t.Errorf("lodash usage = %+v", lodash.Usage)
	}
	if !lodash.HasUtilization || lodash.Utilization != 1.0/300 {
		t.Errorf("lodash utilization = %v, %v", lodash.Utilization, lodash.HasUtilization)
	}

	moment := node(t, g, "moment")
	if moment.Usage == nil || moment.Usage.Files != 0 {
		t.Errorf("moment usage = %+v, want zero files", moment.Usage)
	}
	if moment.HasUtilization {
		t.Error("moment has utilization without an export count")
	}
	if !moment.PossiblyUnused {
		t.Error("moment not flagged possibly unused")
	}

	if node(t, g, "core-js").PossiblyUnused {
		t.Error("side-effect import flagged possibly unused")
	}
	if !node(t, g, "jest").PossiblyUnused {
		t.Error("unimported dev dependency not flagged")
	}
	if node(t, g, "react-dom").PossiblyUnused {
		t.Error("peer dependency flagged possibly unused")
	}

	if n := node(t, g, "scheduler"); n.Usage == nil || n.Usage.Files != 1 {
		t.Errorf("directly imported transitive package usage = %+v", n.Usage)
	}
	if n := node(t, g, "loose-envify"); n.Usage != nil || n.PossiblyUnused {
		t.Error("transitive package received usage without being imported")
	}
	if g.Node(graph.Root).Usage != nil {
		t.Error("root received usage")
	}

	if !slices.Equal(sum.PossiblyUnused, []string{"jest", "moment"}) {
		t.Errorf("PossiblyUnused = %v", sum.PossiblyUnused)
	}
	if !slices.Equal(sum.Undeclared, []string{"zod"}) {
		t.Errorf("Undeclared = %v", sum.Undeclared)
	}
	if sum.Merged != 7 {
		t.Errorf("Merged = %d, want 7", sum.Merged)
	}
	if sum.Utilized != 2 {
		t.Errorf("Utilized = %d, want 2", sum.Utilized)
	}
}

func TestMergeWithoutOracle(t *testing.T) {
	g := mergeGraph(t)
	a := NewAnalyzer()
	a.Add(Record{File: "a.ts", Package: "lodash", Kind: KindNamed, Export: "map"})
	sum := Merge(g, a, nil)

	for _, n := range g.All() {
		if n.HasUtilization {
			t.Errorf("%s has utilization without an oracle", n.ID.Name)
		}
	}
	if sum.Utilized != 0 {
		t.Errorf("Utilized = %d, want 0", sum.Utilized)
	}
}

func TestMergeIsRepeatable(t *testing.T) {
	g := mergeGraph(t)
	a := NewAnalyzer()
	a.Add(Record{File: "a.ts", Package: "moment", Kind: KindDefault})
	Merge(g, a, nil)
	if node(t, g, "moment").PossiblyUnused {
		t.Fatal("imported package flagged possibly unused")
	}

	Merge(g, NewAnalyzer(), nil)
	if !node(t, g, "moment").PossiblyUnused {
		t.Error("second merge kept stale usage")
	}
}
