package savings

import (
	"testing"

	"github.com/matzehuels/codescope/pkg/graph"
)

func annotatedGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build(&graph.Manifest{
		Root: graph.PackageID{Name: "app", Version: "1.0.0"},
		Production: []graph.Declaration{
			{Name: "left-pad", Version: "^1.3.0"},
			{Name: "moment", Version: "^2.29.0"},
			{Name: "date-fns", Version: "^3.0.0"},
			{Name: "react", Version: "^18.0.0"},
			{Name: "zod", Version: "^3.0.0"},
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	set := func(name string, size int64, usage *graph.UsageFacts, util float64, hasUtil bool) {
		id, _ := g.Lookup(name)
		n := g.Node(id)
		n.Size, n.HasSize = size, size > 0
		n.Usage = usage
		n.Utilization, n.HasUtilization = util, hasUtil
	}
	set("left-pad", 300*kb, &graph.UsageFacts{}, 0, false)
	set("moment", 67*kb, &graph.UsageFacts{Files: 3, Default: true}, 0, false)
	set("date-fns", 100*kb, &graph.UsageFacts{Files: 1, Named: 2}, 0.10, true)
	set("react", 10*kb, &graph.UsageFacts{Files: 9, Default: true}, 0.9, true)
	set("zod", 0, &graph.UsageFacts{}, 0, false) // no size: not evaluated
	return g
}

func TestClassify(t *testing.T) {
	g := annotatedGraph(t)
	rep := classifier(t).Classify(g)

	if rep.Evaluated != 4 {
		t.Errorf("Evaluated = %d, want 4", rep.Evaluated)
	}
	if len(rep.Entries) != 3 {
		t.Fatalf("Entries = %d, want 3", len(rep.Entries))
	}

	wantOrder := []string{"left-pad", "date-fns", "moment"}
	for i, name := range wantOrder {
		if rep.Entries[i].Package.Name != name {
			t.Errorf("Entries[%d] = %s, want %s", i, rep.Entries[i].Package.Name, name)
		}
	}

	if rep.Totals[graph.CategoryUnused] != 300*kb {
		t.Errorf("unused total = %d", rep.Totals[graph.CategoryUnused])
	}
	if rep.Totals[graph.CategoryUnderutilized] != 90*kb {
		t.Errorf("underutilized total = %d", rep.Totals[graph.CategoryUnderutilized])
	}
	if rep.Totals[graph.CategoryHasAlternative] != 65*kb {
		t.Errorf("alternative total = %d", rep.Totals[graph.CategoryHasAlternative])
	}
	if rep.TotalSavings != 455*kb {
		t.Errorf("TotalSavings = %d, want %d", rep.TotalSavings, 455*kb)
	}
	if rep.TotalSize != 477*kb {
		t.Errorf("TotalSize = %d, want %d", rep.TotalSize, 477*kb)
	}

	var sum int64
	for _, e := range rep.Entries {
		if e.Savings < 0 {
			t.Errorf("%s savings %d < 0", e.Package.Name, e.Savings)
		}
		sum += e.Savings
	}
	if sum != rep.TotalSavings {
		t.Errorf("entries sum to %d, TotalSavings = %d", sum, rep.TotalSavings)
	}

	moment := rep.ByCategory(graph.CategoryHasAlternative)
	if len(moment) != 1 || moment[0].Alternative == nil || moment[0].Alternative.Replacement != "dayjs" {
		t.Errorf("ByCategory(has-alternative) = %+v", moment)
	}

	id, _ := g.Lookup("left-pad")
	if n := g.Node(id); n.Category != graph.CategoryUnused || n.Savings != 300*kb {
		t.Errorf("left-pad node = %v, %d", n.Category, n.Savings)
	}
	id, _ = g.Lookup("react")
	if n := g.Node(id); n.Category != graph.CategoryNone {
		t.Errorf("react category = %v, want none", n.Category)
	}

	if !rep.Exceeds(400 * kb) {
		t.Error("Exceeds(400KiB) = false")
	}
	if rep.Exceeds(0) || rep.Exceeds(500*kb) {
		t.Error("Exceeds() tripped below the total")
	}
}

func TestClassifyIsRepeatable(t *testing.T) {
	g := annotatedGraph(t)
	cl := classifier(t)
	first := cl.Classify(g)
	second := cl.Classify(g)
	if first.TotalSavings != second.TotalSavings || len(first.Entries) != len(second.Entries) {
		t.Errorf("second run differs: %d/%d vs %d/%d",
			first.TotalSavings, len(first.Entries), second.TotalSavings, len(second.Entries))
	}
}
