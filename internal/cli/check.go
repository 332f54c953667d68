package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/config"
)

// checkCommand creates the check command group used to gate CI.
func (c *CLI) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fail when the dependency graph breaks a rule",
		Long: `Check the dependency graph against a rule and exit non-zero when it fails.

Exit statuses:
  0  the check passed
  1  the analysis itself failed
  2  dependency cycles were found
  3  estimated savings exceed the limit`,
	}

	cmd.AddCommand(c.checkCyclesCommand())
	cmd.AddCommand(c.checkSavingsCommand())

	return cmd
}

// checkCyclesCommand creates the "check cycles" subcommand.
func (c *CLI) checkCyclesCommand() *cobra.Command {
	var inputs inputOpts

	cmd := &cobra.Command{
		Use:   "cycles [dir]",
		Short: "Exit 2 when the dependency graph has cycles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, _, err := c.checkReport(cmd.Context(), projectDir(args), &inputs)
			if err != nil {
				return err
			}
			return c.checkCycles(rep)
		},
	}
	inputs.register(cmd)
	return cmd
}

// checkSavingsCommand creates the "check savings" subcommand.
func (c *CLI) checkSavingsCommand() *cobra.Command {
	var (
		inputs inputOpts
		limit  string
	)

	cmd := &cobra.Command{
		Use:   "savings [dir]",
		Short: "Exit 3 when estimated savings exceed a limit",
		Long: `Exit 3 when the estimated savings exceed a limit.

The limit comes from --max-savings or check.max_savings in the config and
accepts human-readable sizes ("500 KiB", "1.5MB"). Savings need bundle
sizes (--stats or --sizes) and import records (--usage).

With check.fail_on_cycles set, dependency cycles also fail the check with
exit status 2.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, cfg, err := c.checkReport(cmd.Context(), projectDir(args), &inputs)
			if err != nil {
				return err
			}
			if limit != "" {
				if err := cfg.Check.MaxSavings.UnmarshalText([]byte(limit)); err != nil {
					return fmt.Errorf("--max-savings: %w", err)
				}
			}
			return c.checkSavings(rep, cfg)
		},
	}
	inputs.register(cmd)
	cmd.Flags().StringVar(&limit, "max-savings", "", `savings limit, e.g. "500 KiB" (overrides check.max_savings)`)
	return cmd
}

// checkReport analyzes one project for the check commands. Workspaces are
// not supported here; check each member directory instead.
func (c *CLI) checkReport(ctx context.Context, dir string, inputs *inputOpts) (*analysis.Report, *config.Config, error) {
	if inputs.workspace {
		return nil, nil, fmt.Errorf("check does not support --workspace; run it per member")
	}
	cfg, err := c.loadConfig(dir)
	if err != nil {
		return nil, nil, err
	}
	projects, err := inputs.load(dir)
	if err != nil {
		return nil, nil, err
	}

	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	out, err := c.analyze(ctx, runner, projects[0].input, false)
	if err != nil {
		return nil, nil, err
	}
	return out.Report, cfg, nil
}

func (c *CLI) checkCycles(rep *analysis.Report) error {
	u := c.ui()
	if len(rep.Cycles) == 0 {
		u.success("No dependency cycles in %s", rep.Root.Name)
		return nil
	}
	u.failure("%d dependency cycle(s) in %s", len(rep.Cycles), rep.Root.Name)
	for _, cyc := range rep.Cycles {
		u.detail("%s", cycleLine(cyc))
	}
	return &ExitError{Code: ExitCycles, Err: fmt.Errorf("%d dependency cycle(s) found", len(rep.Cycles))}
}

func (c *CLI) checkSavings(rep *analysis.Report, cfg *config.Config) error {
	u := c.ui()
	limit := int64(cfg.Check.MaxSavings)
	total := rep.Summary.TotalSavings

	switch {
	case rep.Savings == nil:
		u.warning("No savings estimate: pass --stats or --sizes together with --usage")
	case limit <= 0:
		u.warning("No savings limit set; estimated savings are %s", bundle.FormatSize(total))
	case rep.Savings.Exceeds(limit):
		u.failure("Estimated savings %s exceed the limit of %s", bundle.FormatSize(total), bundle.FormatSize(limit))
		u.savingsTable(rep)
		return &ExitError{
			Code: ExitSavings,
			Err:  fmt.Errorf("savings %s exceed limit %s", bundle.FormatSize(total), bundle.FormatSize(limit)),
		}
	default:
		u.success("Estimated savings %s are within the limit of %s", bundle.FormatSize(total), bundle.FormatSize(limit))
	}

	if cfg.Check.FailOnCycles {
		return c.checkCycles(rep)
	}
	return nil
}
