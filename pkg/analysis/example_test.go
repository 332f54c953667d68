package analysis_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/savings"
	"github.com/matzehuels/codescope/pkg/usage"
)

func ExampleAnalyze() {
	in := analysis.Input{
		Manifest: &graph.Manifest{
			Root: graph.PackageID{Name: "app", Version: "1.0.0"},
			Production: []graph.Declaration{
				{Name: "left-pad", Version: "^1.3.0"},
				{Name: "lodash", Version: "^4.17.21"},
			},
		},
		Sizes: bundle.SizeTable{
			{Path: "./node_modules/left-pad/index.js", Size: 300 << 10},
			{Path: "./node_modules/lodash/lodash.js", Size: 100 << 10},
		},
		Usage: []usage.Record{
			{File: "src/index.ts", Package: "lodash/fp", Kind: usage.KindNamed, Export: "map"},
		},
	}

	res, err := analysis.Analyze(context.Background(), in, savings.DefaultConfig(), log.New(io.Discard))
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, e := range res.Savings.Entries {
		fmt.Printf("%s: %s, %s\n", e.Package.Name, e.Category, bundle.FormatSize(e.Savings))
	}
	// Output:
	// left-pad: unused, 300 KiB
	// lodash: has-alternative, 100 KiB
}
