package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/config"
	"github.com/matzehuels/codescope/pkg/report"
)

// analyzeOpts holds the analyze command flags.
type analyzeOpts struct {
	inputs  inputOpts
	format  string
	output  string
	refresh bool
	hideDev bool
	sizes   bool
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Analyze a project's dependency graph",
		Long: `Analyze the npm project in dir (default: the current directory).

The package.json and package-lock.json are read to build the dependency
graph. With --stats or --sizes, bundle bytes are attributed to packages;
with --usage, source imports are merged and savings estimated.

Reports are cached keyed by their inputs and configuration. Use --refresh
to recompute, or --no-cache to bypass the cache entirely.

Examples:
  codescope analyze
  codescope analyze ./app --stats dist/stats.json --usage imports.json
  codescope analyze -f markdown -o report.md
  codescope analyze -f svg -o deps.svg --hide-dev
  codescope analyze --workspace -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), projectDir(args), &opts)
		},
	}

	opts.inputs.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatText), "output format: "+formatNames())
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (directory with --workspace)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached report exists")
	cmd.Flags().BoolVar(&opts.hideDev, "hide-dev", false, "leave dev dependencies out of dot/svg output")
	cmd.Flags().BoolVar(&opts.sizes, "show-sizes", true, "label dot/svg nodes with sizes and savings")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(formatValues(), cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func formatValues() []string {
	out := make([]string, len(report.Formats))
	for i, f := range report.Formats {
		out[i] = string(f)
	}
	return out
}

func formatNames() string { return strings.Join(formatValues(), ", ") }

// runAnalyze analyzes one project or, with --workspace, every member.
func (c *CLI) runAnalyze(ctx context.Context, dir string, opts *analyzeOpts) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(dir)
	if err != nil {
		return err
	}
	projects, err := opts.inputs.load(dir)
	if err != nil {
		return err
	}
	if opts.inputs.workspace {
		return c.runWorkspace(ctx, cfg, projects, format, opts)
	}

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	out, err := c.analyze(ctx, runner, projects[0].input, opts.refresh || format.NeedsGraph())
	if err != nil {
		return err
	}

	if format == report.FormatText && opts.output == "" {
		c.ui().report(out.Report, out.CacheHit)
		return nil
	}
	return c.writeOutput(opts.output, func(w io.Writer) error {
		return report.Render(ctx, w, out.Result, out.Report, format, opts.dotOptions())
	})
}

func (o *analyzeOpts) dotOptions() report.DOTOptions {
	return report.DOTOptions{Sizes: o.sizes, HideDev: o.hideDev}
}

// analyze runs one cached analysis behind a spinner.
func (c *CLI) analyze(ctx context.Context, runner *analysis.Runner, in analysis.Input, refresh bool) (*analysis.Outcome, error) {
	logger := loggerFromContext(ctx)
	name := in.Manifest.Root.Name
	prog := newProgress(logger)

	spin := startSpinner(ctx, "Analyzing "+name+"...")
	out, err := runner.Run(ctx, in, analysis.RunOptions{Refresh: refresh})
	spin.Stop()
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", name, err)
	}

	if out.CacheHit {
		prog.done("Loaded cached report for " + name)
	} else {
		prog.done("Analyzed " + name)
	}
	return out, nil
}

// runWorkspace analyzes every loadable member concurrently. Members that
// fail to load or analyze are logged; the others are still written.
func (c *CLI) runWorkspace(ctx context.Context, cfg *config.Config, projects []project, format report.Format, opts *analyzeOpts) error {
	logger := loggerFromContext(ctx)
	u := c.ui()

	var inputs []analysis.Input
	failed := 0
	for _, p := range projects {
		if p.err != nil {
			logger.Error("could not load workspace member", "dir", p.dir, "error", p.err)
			failed++
			continue
		}
		inputs = append(inputs, p.input)
	}

	prog := newProgress(logger)
	spin := startSpinner(ctx, fmt.Sprintf("Analyzing %d workspace members...", len(inputs)))
	members, err := analysis.AnalyzeWorkspace(ctx, inputs, cfg.Savings, logger)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d workspace members", len(members)))

	var reports []*analysis.Report
	for _, m := range members {
		if m.Err != nil {
			failed++
			continue
		}
		rep := analysis.NewReport(m.Result)
		reports = append(reports, rep)

		switch {
		case format == report.FormatText && opts.output == "":
			u.report(rep, false)
			u.newline()
		case format == report.FormatJSON && opts.output == "":
			// written as one array below
		default:
			if opts.output == "" {
				return fmt.Errorf("--output directory required for workspace %s output", format)
			}
			path := filepath.Join(opts.output, memberFile(m.Name)+format.Extension())
			err := c.writeOutput(path, func(w io.Writer) error {
				return report.Render(ctx, w, m.Result, rep, format, opts.dotOptions())
			})
			if err != nil {
				return err
			}
		}
	}

	if format == report.FormatJSON && opts.output == "" {
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d workspace members failed", failed, len(projects))
	}
	return nil
}

// memberFile turns a package name into a file name: "@scope/pkg" becomes
// "scope__pkg".
func memberFile(name string) string {
	name = strings.TrimPrefix(name, "@")
	name = strings.ReplaceAll(name, "/", "__")
	if name == "" {
		return "unnamed"
	}
	return name
}
