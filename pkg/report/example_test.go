package report_test

import (
	"fmt"

	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/report"
)

func ExampleToDOT() {
	g, _ := graph.Build(&graph.Manifest{
		Root:       graph.PackageID{Name: "app", Version: "1.0.0"},
		Production: []graph.Declaration{{Name: "a", Version: "1.0.0"}},
		Packages: map[string]*graph.Manifest{
			"a": {Production: []graph.Declaration{{Name: "b", Version: "1.0.0"}}},
			"b": {Production: []graph.Declaration{{Name: "a", Version: "1.0.0"}}},
		},
	})
	fmt.Print(report.ToDOT(g, graph.FindCycles(g), report.DOTOptions{}))
	// Output:
	// digraph G {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontname="Helvetica", fontsize=12, margin="0.2,0.1"];
	//   edge [color="#6b7280"];
	//   ranksep=0.5;
	//   nodesep=0.3;
	//
	//   "app" [label="app", penwidth=2];
	//   "a" [label="a", color="#dc2626"];
	//   "b" [label="b", color="#dc2626"];
	//
	//   "app" -> "a";
	//   "a" -> "b" [color="#dc2626", penwidth=2];
	//   "b" -> "a" [color="#dc2626", penwidth=2];
	// }
}
