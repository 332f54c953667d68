package config

import (
	"strconv"
	"time"

	"github.com/matzehuels/codescope/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CODESCOPE_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envBinding maps one variable onto a config field.
type envBinding struct {
	key   string
	field string
	set   func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"UNDERUTILIZED_THRESHOLD", "savings.underutilized_threshold", func(c *Config, v string) error {
		return parseFloat(v, &c.Savings.UnderutilizedThreshold)
	}},
	{"TREESHAKING_THRESHOLD", "savings.treeshaking_threshold", func(c *Config, v string) error {
		return parseFloat(v, &c.Savings.TreeShakingThreshold)
	}},
	{"TREESHAKING_FACTOR", "savings.treeshaking_factor", func(c *Config, v string) error {
		return parseFloat(v, &c.Savings.TreeShakingFactor)
	}},
	{"MAX_SAVINGS", "check.max_savings", func(c *Config, v string) error {
		return c.Check.MaxSavings.UnmarshalText([]byte(v))
	}},
	{"FAIL_ON_CYCLES", "check.fail_on_cycles", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Check.FailOnCycles = b
		return err
	}},
	{"MAX_DEPTH", "tree.max_depth", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		c.Tree.MaxDepth = n
		return err
	}},
	{"TREE_SORT", "tree.sort", func(c *Config, v string) error {
		c.Tree.Sort = v
		return nil
	}},
	{"CACHE_DIR", "cache.dir", func(c *Config, v string) error {
		c.Cache.Dir = v
		return nil
	}},
	{"REDIS_URL", "cache.redis_url", func(c *Config, v string) error {
		c.Cache.RedisURL = v
		return nil
	}},
	{"CACHE_TTL", "cache.ttl", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		c.Cache.TTL = d
		return err
	}},
	{"NO_CACHE", "cache.disabled", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Cache.Disabled = b
		return err
	}},
	{"ADDR", "server.addr", func(c *Config, v string) error {
		c.Server.Addr = v
		return nil
	}},
}

// EnvKeys returns the names of every recognized environment variable.
func EnvKeys() []string {
	keys := make([]string, len(envBindings))
	for i, b := range envBindings {
		keys[i] = EnvPrefix + b.key
	}
	return keys
}

// ApplyEnv overrides fields from CODESCOPE_* variables found by lookup.
// Empty values are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok || v == "" {
			continue
		}
		if err := b.set(c, v); err != nil {
			return &errors.ConfigError{
				Field:  b.field,
				Reason: EnvPrefix + b.key + ": " + err.Error(),
			}
		}
	}
	return nil
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}
