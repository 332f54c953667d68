package savings

import (
	"fmt"

	"github.com/matzehuels/codescope/pkg/errors"
)

// Default thresholds and estimator constants.
const (
	DefaultUnderutilizedThreshold = 0.20
	DefaultTreeShakingThreshold   = 0.60
	DefaultTreeShakingFactor      = 0.6
)

// Alternative is a lighter replacement for a heavy package.
type Alternative struct {
	Replacement string `toml:"replacement" json:"replacement"`
	Rationale   string `toml:"rationale" json:"rationale"`

	// ReplacementBytes overrides Config.AlternativeReplacementBytes for
	// this entry when set.
	ReplacementBytes *int64 `toml:"replacement_bytes" json:"replacement_bytes,omitempty"`
}

// Config holds the classifier thresholds and estimators.
type Config struct {
	// UnderutilizedThreshold is the utilization below which a package is
	// underutilized.
	UnderutilizedThreshold float64 `toml:"underutilized_threshold"`

	// TreeShakingThreshold is the utilization below which a package that
	// is imported by name only is a tree-shaking candidate.
	TreeShakingThreshold float64 `toml:"treeshaking_threshold"`

	// TreeShakingFactor scales the unused share of a tree-shaking
	// candidate; it keeps tree-shaking estimates at or below the
	// underutilized estimate for the same utilization.
	TreeShakingFactor float64 `toml:"treeshaking_factor"`

	// AlternativeReplacementBytes is the assumed size of a replacement
	// package when the alternative entry does not name one.
	AlternativeReplacementBytes int64 `toml:"alternative_savings_estimate_bytes"`

	// Alternatives is filled from the top-level [alternatives] table by
	// the config loader.
	Alternatives map[string]Alternative `toml:"-"`
}

// DefaultConfig returns the default thresholds with the built-in
// alternatives table.
func DefaultConfig() Config {
	return Config{
		UnderutilizedThreshold: DefaultUnderutilizedThreshold,
		TreeShakingThreshold:   DefaultTreeShakingThreshold,
		TreeShakingFactor:      DefaultTreeShakingFactor,
		Alternatives:           DefaultAlternatives(),
	}
}

func bytesPtr(n int64) *int64 { return &n }

// DefaultAlternatives returns the built-in table of heavy packages with
// lighter replacements.
func DefaultAlternatives() map[string]Alternative {
	return map[string]Alternative{
		"moment":     {Replacement: "dayjs", Rationale: "Day.js is 2KB vs Moment's 67KB", ReplacementBytes: bytesPtr(2 << 10)},
		"lodash":     {Replacement: "lodash-es", Rationale: "Use lodash-es for better tree-shaking, or individual imports"},
		"underscore": {Replacement: "lodash-es", Rationale: "Lodash-es with tree-shaking is more efficient"},
		"axios":      {Replacement: "fetch", Rationale: "Native fetch is built-in and zero-cost", ReplacementBytes: bytesPtr(0)},
		"request":    {Replacement: "node-fetch", Rationale: "request is deprecated; use node-fetch or native fetch"},
		"uuid":       {Replacement: "crypto.randomUUID", Rationale: "Native crypto.randomUUID() works in modern environments", ReplacementBytes: bytesPtr(0)},
		"bluebird":   {Replacement: "native Promise", Rationale: "Native Promises are now performant enough for most cases", ReplacementBytes: bytesPtr(0)},
		"jquery":     {Replacement: "vanilla JS", Rationale: "Modern DOM APIs often eliminate the need for jQuery", ReplacementBytes: bytesPtr(0)},
	}
}

// Validate checks threshold ordering and estimator ranges. It returns an
// *errors.ConfigError for the first violation.
func (c Config) Validate() error {
	switch {
	case c.UnderutilizedThreshold <= 0 || c.UnderutilizedThreshold >= 1:
		return &errors.ConfigError{
			Field:  "savings.underutilized_threshold",
			Reason: fmt.Sprintf("%v is outside (0, 1)", c.UnderutilizedThreshold),
		}
	case c.TreeShakingThreshold <= 0 || c.TreeShakingThreshold >= 1:
		return &errors.ConfigError{
			Field:  "savings.treeshaking_threshold",
			Reason: fmt.Sprintf("%v is outside (0, 1)", c.TreeShakingThreshold),
		}
	case c.TreeShakingThreshold <= c.UnderutilizedThreshold:
		return &errors.ConfigError{
			Field: "savings.treeshaking_threshold",
			Reason: fmt.Sprintf("%v must be greater than underutilized_threshold %v",
				c.TreeShakingThreshold, c.UnderutilizedThreshold),
		}
	case c.TreeShakingFactor <= 0 || c.TreeShakingFactor > 1:
		return &errors.ConfigError{
			Field:  "savings.treeshaking_factor",
			Reason: fmt.Sprintf("%v is outside (0, 1]", c.TreeShakingFactor),
		}
	case c.AlternativeReplacementBytes < 0:
		return &errors.ConfigError{
			Field:  "savings.alternative_savings_estimate_bytes",
			Reason: "must not be negative",
		}
	}
	for name, alt := range c.Alternatives {
		if alt.ReplacementBytes != nil && *alt.ReplacementBytes < 0 {
			return &errors.ConfigError{
				Field:  "alternatives." + name + ".replacement_bytes",
				Reason: "must not be negative",
			}
		}
	}
	return nil
}

// replacementBytes returns the assumed size of the replacement for alt.
func (c Config) replacementBytes(alt Alternative) int64 {
	if alt.ReplacementBytes != nil {
		return *alt.ReplacementBytes
	}
	return c.AlternativeReplacementBytes
}
