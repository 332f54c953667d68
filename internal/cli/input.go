package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/source/npm"
	"github.com/matzehuels/codescope/pkg/usage"
)

// inputOpts holds the flags that select analysis inputs besides the
// project's package.json and lockfile.
type inputOpts struct {
	stats     string // webpack stats JSON
	sizes     string // plain module size table
	usage     string // import records
	exports   string // per-package export counts
	workspace bool   // analyze every workspace member
}

func (o *inputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.stats, "stats", "", "webpack stats JSON (webpack --json)")
	cmd.Flags().StringVar(&o.sizes, "sizes", "", "module size table JSON ([{path, size}])")
	cmd.Flags().StringVar(&o.usage, "usage", "", "import records JSON ([{file, package, kind, export}])")
	cmd.Flags().StringVar(&o.exports, "exports", "", "export counts JSON ({package: count})")
	cmd.Flags().BoolVarP(&o.workspace, "workspace", "w", false, "analyze every npm workspace member")
	cmd.MarkFlagsMutuallyExclusive("stats", "sizes")
}

// project is one manifest to analyze.
type project struct {
	dir   string
	input analysis.Input
	err   error
}

// load reads the project in dir, or each workspace member with
// --workspace. Bundle and usage inputs are shared by all members.
func (o *inputOpts) load(dir string) ([]project, error) {
	base, err := o.extras()
	if err != nil {
		return nil, err
	}

	if !o.workspace {
		m, err := npm.Load(dir)
		if err != nil {
			return nil, err
		}
		in := base
		in.Manifest = m
		return []project{{dir: dir, input: in}}, nil
	}

	members, err := npm.LoadWorkspace(dir)
	if err != nil {
		return nil, err
	}
	projects := make([]project, len(members))
	for i, m := range members {
		in := base
		in.Manifest = m.Manifest
		projects[i] = project{dir: m.Dir, input: in, err: m.Err}
	}
	return projects, nil
}

// extras reads the optional bundle and usage inputs.
func (o *inputOpts) extras() (analysis.Input, error) {
	var in analysis.Input
	var err error
	switch {
	case o.stats != "":
		in.Sizes, err = readJSONFile(o.stats, bundle.ReadWebpackStats)
	case o.sizes != "":
		in.Sizes, err = readJSONFile(o.sizes, bundle.ReadSizeTable)
	}
	if err != nil {
		return in, err
	}
	if o.usage != "" {
		if in.Usage, err = readJSONFile(o.usage, usage.ReadTable); err != nil {
			return in, err
		}
	}
	if o.exports != "" {
		if in.Exports, err = readJSONFile(o.exports, usage.ReadExportCounts); err != nil {
			return in, err
		}
	}
	return in, nil
}

func readJSONFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
