// Package config loads codescope's configuration.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults ([Default]).
//  2. A TOML file: the --config flag, else codescope.toml or
//     .codescope.toml in the project directory, else
//     $XDG_CONFIG_HOME/codescope/config.toml.
//  3. CODESCOPE_* environment variables. A .env file in the project
//     directory is loaded first and never overrides variables that are
//     already set.
//
// A complete file looks like this:
//
//	[savings]
//	underutilized_threshold = 0.20
//	treeshaking_threshold = 0.60
//	treeshaking_factor = 0.6
//	alternative_savings_estimate_bytes = 0
//
//	[alternatives.moment]
//	replacement = "dayjs"
//	rationale = "Day.js is 2KB vs Moment's 67KB"
//	replacement_bytes = 2048
//
//	[check]
//	max_savings = "500 KiB"
//	fail_on_cycles = true
//
//	[tree]
//	max_depth = 32
//	sort = "size"
//
//	[cache]
//	dir = "~/.cache/codescope"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//	memory_entries = 128
//
//	[server]
//	addr = ":8080"
//
// Entries under [alternatives] are merged over the built-in table; an entry
// with an empty replacement removes the built-in one.
//
// [Load] validates the result, so a bad threshold is reported as an
// *errors.ConfigError before any analysis starts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/savings"
	"github.com/matzehuels/codescope/pkg/tree"
)

// FileNames are the config file names looked up in a project directory.
var FileNames = []string{"codescope.toml", ".codescope.toml"}

// Defaults for the non-savings sections.
const (
	DefaultCacheTTL      = 24 * time.Hour
	DefaultMemoryEntries = 128
	DefaultServerAddr    = ":8080"
)

// Config is the complete configuration.
type Config struct {
	Savings      savings.Config                 `toml:"savings"`
	Alternatives map[string]savings.Alternative `toml:"alternatives"`
	Check        CheckConfig                    `toml:"check"`
	Tree         TreeConfig                     `toml:"tree"`
	Cache        CacheConfig                    `toml:"cache"`
	Server       ServerConfig                   `toml:"server"`

	// Source is the file the configuration was read from, if any.
	Source string `toml:"-"`
}

// CheckConfig holds the limits used by the check commands.
type CheckConfig struct {
	// MaxSavings is the savings total above which `check savings` fails.
	// Zero disables the limit.
	MaxSavings ByteSize `toml:"max_savings"`
	// FailOnCycles makes `check savings` also fail, with the cycles exit
	// status, when the graph has cycles. `check cycles` always does.
	FailOnCycles bool `toml:"fail_on_cycles"`
}

// TreeConfig configures the tree projection.
type TreeConfig struct {
	MaxDepth int    `toml:"max_depth"`
	Sort     string `toml:"sort"`
}

// SortMode parses Sort. Validate has already rejected unknown names.
func (t TreeConfig) SortMode() tree.SortMode {
	m, _ := tree.ParseSortMode(t.Sort)
	return m
}

// CacheConfig selects and tunes the report cache backends.
type CacheConfig struct {
	Dir           string        `toml:"dir"`
	RedisURL      string        `toml:"redis_url"`
	TTL           time.Duration `toml:"ttl"`
	MemoryEntries int           `toml:"memory_entries"`
	Disabled      bool          `toml:"disabled"`
}

// ServerConfig configures `codescope serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ByteSize is a byte count that decodes from an integer or from a
// human-readable string such as "500 KiB" or "1.5MB".
type ByteSize int64

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*b = 0
		return nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", s, err)
	}
	*b = ByteSize(n)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(humanize.IBytes(uint64(b))), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Savings: savings.DefaultConfig(),
		Tree:    TreeConfig{MaxDepth: tree.DefaultMaxDepth, Sort: tree.SortName.String()},
		Cache: CacheConfig{
			Dir:           defaultCacheDir(),
			TTL:           DefaultCacheTTL,
			MemoryEntries: DefaultMemoryEntries,
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
	return cfg
}

// Load builds the configuration for the project in dir. When path is
// empty the file is looked up with [Find]; a missing file is not an
// error. An explicit path that does not exist is.
func Load(path, dir string) (*Config, error) {
	if err := loadDotEnv(dir); err != nil {
		return nil, err
	}

	cfg := Default()
	if path == "" {
		path = Find(dir)
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults and validates the result.
// Environment variables are not consulted.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data, "<inline>"); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find returns the first config file for dir, or "" if there is none.
func Find(dir string) string {
	if dir == "" {
		dir = "."
	}
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p
		}
	}
	if base := configHome(); base != "" {
		p := filepath.Join(base, "codescope", "config.toml")
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := c.decode(string(data), path); err != nil {
		return err
	}
	c.Source = path
	return nil
}

func (c *Config) decode(data, source string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return &errors.ConfigError{Field: source, Reason: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return &errors.ConfigError{
			Field:  undecoded[0].String(),
			Reason: "unknown key in " + source,
		}
	}
	c.mergeAlternatives()
	return nil
}

// mergeAlternatives folds the [alternatives] table into the savings
// configuration.
func (c *Config) mergeAlternatives() {
	for name, alt := range c.Alternatives {
		if alt.Replacement == "" {
			delete(c.Savings.Alternatives, name)
			continue
		}
		if c.Savings.Alternatives == nil {
			c.Savings.Alternatives = make(map[string]savings.Alternative)
		}
		c.Savings.Alternatives[name] = alt
	}
	c.Alternatives = nil
}

// Validate checks every section and returns the first *errors.ConfigError.
func (c *Config) Validate() error {
	if err := c.Savings.Validate(); err != nil {
		return err
	}
	switch {
	case c.Check.MaxSavings < 0:
		return &errors.ConfigError{Field: "check.max_savings", Reason: "must not be negative"}
	case c.Tree.MaxDepth < 1:
		return &errors.ConfigError{Field: "tree.max_depth", Reason: fmt.Sprintf("%d is less than 1", c.Tree.MaxDepth)}
	case c.Cache.TTL < 0:
		return &errors.ConfigError{Field: "cache.ttl", Reason: "must not be negative"}
	case c.Cache.MemoryEntries < 0:
		return &errors.ConfigError{Field: "cache.memory_entries", Reason: "must not be negative"}
	}
	if _, err := tree.ParseSortMode(c.Tree.Sort); err != nil {
		return &errors.ConfigError{Field: "tree.sort", Reason: err.Error()}
	}
	return nil
}

func loadDotEnv(dir string) error {
	p := filepath.Join(dir, ".env")
	if !fileExists(p) {
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		return &errors.ConfigError{Field: p, Reason: err.Error()}
	}
	return nil
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "codescope")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "codescope")
	}
	return filepath.Join(home, ".cache", "codescope")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
