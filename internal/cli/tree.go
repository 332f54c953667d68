package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/tree"
)

// treeOpts holds the tree command flags.
type treeOpts struct {
	inputs   inputOpts
	depth    int
	maxDepth int
	sort     string
	print    bool
	filter   string
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [dir]",
		Short: "Browse the dependency tree",
		Long: `Browse the dependency tree of the npm project in dir.

On a terminal the tree opens in an interactive viewer:

  j/k ↑/↓      move             enter/space  toggle
  l/→ h/←      expand/collapse  e/c          expand/collapse all
  /            search           n/N          next/previous match
  s            cycle sort       q            quit

With --print, or when stdout is not a terminal, the tree is printed down
to --depth. A package already on the current path is shown once more as
a cyclic leaf (↻); nodes at --max-depth are truncated (…).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), projectDir(args), &opts)
		},
	}

	opts.inputs.register(cmd)
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 1, "initially expanded depth")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "depth cap of the projection (default from config)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sibling order: name, size, savings, relation (default from config)")
	cmd.Flags().BoolVarP(&opts.print, "print", "p", false, "print the tree instead of opening the viewer")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "with --print, only rows whose name matches")
	_ = cmd.RegisterFlagCompletionFunc("sort", cobra.FixedCompletions(
		[]string{"name", "size", "savings", "relation"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runTree analyzes the project and shows its tree.
func (c *CLI) runTree(ctx context.Context, dir string, opts *treeOpts) error {
	if opts.inputs.workspace {
		return fmt.Errorf("tree does not support --workspace; run it per member")
	}
	cfg, err := c.loadConfig(dir)
	if err != nil {
		return err
	}
	mode := cfg.Tree.SortMode()
	if opts.sort != "" {
		if mode, err = tree.ParseSortMode(opts.sort); err != nil {
			return err
		}
	}
	maxDepth := cfg.Tree.MaxDepth
	if opts.maxDepth > 0 {
		maxDepth = opts.maxDepth
	}

	projects, err := opts.inputs.load(dir)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// The viewer needs the graph, which cached reports do not carry.
	out, err := c.analyze(ctx, runner, projects[0].input, true)
	if err != nil {
		return err
	}

	t := tree.New(out.Result.Graph, tree.Options{MaxDepth: maxDepth, Sort: mode})
	if opts.print || !isTerminal(c.Out) {
		return printTree(c.Out, t, opts.depth, opts.filter)
	}
	return runTreeView(ctx, t, opts.depth)
}

// printTree writes the rows visible with every node above depth expanded.
func printTree(w io.Writer, t *tree.Tree, depth int, filter string) error {
	state := tree.NewExpandState()
	state.ExpandDepth(t, depth)
	rows := tree.Filter(t, tree.Flatten(t, state), filter)
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, plainRow(t, state, r)); err != nil {
			return err
		}
	}
	return nil
}

func plainRow(t *tree.Tree, state *tree.ExpandState, r tree.Row) string {
	n := t.Graph().Node(r.Node.Package)
	line := r.Prefix() + t.Indicator(r.Node, state) + n.ID.Name
	if details := nodeDetails(n, r.Node); len(details) > 0 {
		line += "  " + strings.Join(details, " · ")
	}
	return line
}

// nodeDetails lists the annotations shown after a package name.
func nodeDetails(n *graph.Node, tn *tree.Node) []string {
	var parts []string
	if n.ID.Version != "" {
		parts = append(parts, n.ID.Version)
	}
	if tn.Depth > 0 && tn.Relation != graph.RelationProduction {
		parts = append(parts, tn.Relation.String())
	}
	if n.HasSize {
		parts = append(parts, bundle.FormatSize(n.Size))
	}
	if n.Category != graph.CategoryNone {
		parts = append(parts, fmt.Sprintf("%s -%s", n.Category, bundle.FormatSize(n.Savings)))
	}
	return parts
}
