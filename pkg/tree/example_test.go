package tree_test

import (
	"fmt"

	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/tree"
)

func ExampleFlatten() {
	g, _ := graph.Build(&graph.Manifest{
		Root: graph.PackageID{Name: "app"},
		Production: []graph.Declaration{
			{Name: "react", Version: "^18.0.0"},
			{Name: "react-dom", Version: "^18.0.0"},
		},
		Packages: map[string]*graph.Manifest{
			"react-dom": {Production: []graph.Declaration{
				{Name: "react", Version: "^18.0.0"},
				{Name: "scheduler", Version: "^0.23.0"},
			}},
		},
	})

	t := tree.New(g, tree.Options{})
	state := tree.NewExpandState()
	state.ExpandAll(t)
	for _, row := range tree.Flatten(t, state) {
		fmt.Println(row.Prefix() + g.Name(row.Node.Package))
	}
	// Output:
	// app
	// ├── react
	// └── react-dom
	//     ├── react
	//     └── scheduler
}
