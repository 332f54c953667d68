// Package cli implements the codescope command-line interface.
//
// The commands analyze an npm project's dependency graph, report savings
// opportunities, gate CI on cycles and savings, browse the dependency
// tree interactively and serve the analysis over HTTP. The CLI is built
// with cobra; logging goes through charmbracelet/log.
//
// # Commands
//
//   - analyze: build the graph and write a report (text, json, csv, markdown, dot, svg)
//   - check cycles: exit 2 when the graph has dependency cycles
//   - check savings: exit 3 when estimated savings exceed a limit
//   - tree: browse the dependency tree (interactive, or --print)
//   - serve: run the HTTP API
//   - cache: clear or locate the report cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs analysis stages and cache activity. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/buildinfo"
	"github.com/matzehuels/codescope/pkg/cache"
	"github.com/matzehuels/codescope/pkg/config"
)

const (
	// appName is the application name used for directories and display.
	appName = "codescope"

	// redisPrefix namespaces codescope keys in a shared Redis.
	redisPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Exit statuses reported through [ExitError].
const (
	ExitFailure     = 1
	ExitCycles      = 2
	ExitSavings     = 3
	ExitInterrupted = 130
)

// ExitError carries a non-zero exit status out of a command. Err is the
// message printed to stderr.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output. Logs go to the logger's writer.
	Out io.Writer

	configPath string
	noCache    bool
}

// New creates a new CLI instance writing logs to w and output to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "codescope analyzes npm dependency graphs",
		Long:          `codescope builds the dependency graph of an npm project, finds cycles and version conflicts, attributes bundle bytes to packages and estimates how much could be saved by removing or replacing them.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				registerLogHooks(c.Logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: codescope.toml in the project, then $XDG_CONFIG_HOME/codescope/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the report cache")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig loads the configuration for the project in dir and applies
// global flags.
func (c *CLI) loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(c.configPath, dir)
	if err != nil {
		return nil, err
	}
	if c.noCache {
		cfg.Cache.Disabled = true
	}
	if cfg.Source != "" {
		c.Logger.Debug("loaded config", "file", cfg.Source)
	}
	return cfg, nil
}

// newCache builds the configured cache: Redis when a URL is set, the file
// cache otherwise. With memoryFront an LRU sits in front of it.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, memoryFront bool) (cache.Cache, error) {
	if cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}

	var back cache.Cache
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, redisPrefix)
		if err != nil {
			return nil, err
		}
		back = rc
	} else {
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("report cache unavailable", "dir", cfg.Cache.Dir, "error", err)
			return cache.NewNullCache(), nil
		}
		back = fc
	}

	if !memoryFront {
		return back, nil
	}
	front, err := cache.NewMemoryCache(cfg.Cache.MemoryEntries)
	if err != nil {
		return nil, err
	}
	return cache.NewTiered(front, back, cfg.Cache.TTL), nil
}

// newRunner creates a cached analysis runner for cfg.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, memoryFront bool) (*analysis.Runner, error) {
	store, err := c.newCache(ctx, cfg, memoryFront)
	if err != nil {
		return nil, err
	}
	r := analysis.NewRunner(store, nil, cfg.Savings, c.Logger)
	r.TTL = cfg.Cache.TTL
	return r, nil
}

// =============================================================================
// Paths & Output
// =============================================================================

// projectDir returns the project directory argument, defaulting to ".".
func projectDir(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return "."
	}
	return args[0]
}

// writeOutput runs write against path, or against c.Out when path is
// empty.
func (c *CLI) writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(c.Out)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.ui().file(path)
	return nil
}
