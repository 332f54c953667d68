package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codescope/pkg/buildinfo"
	"github.com/matzehuels/codescope/pkg/cache"
	"github.com/matzehuels/codescope/pkg/observability"
	"github.com/matzehuels/codescope/pkg/savings"
)

// DefaultReportTTL is how long cached reports live when Runner.TTL is 0.
const DefaultReportTTL = 24 * time.Hour

// Runner runs analyses through a report cache.
//
// The Runner holds no per-analysis state; one Runner may serve concurrent
// calls as long as its Cache does.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Config savings.Config
	TTL    time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, cfg savings.Config, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Config: cfg,
		TTL:    DefaultReportTTL,
	}
}

// RunOptions tunes one Run.
type RunOptions struct {
	// Refresh skips the cache lookup; the fresh report still replaces the
	// cached one.
	Refresh bool
}

// Outcome is a report with its cache provenance.
type Outcome struct {
	Report   *Report
	CacheKey string
	CacheHit bool

	// Result is set only when the analysis actually ran.
	Result *Result
}

// Key returns the cache key for in under the runner's configuration.
func (r *Runner) Key(in Input) (string, error) {
	inputHash, err := cache.HashJSON(in)
	if err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	configHash, err := cache.HashJSON(r.Config)
	if err != nil {
		return "", fmt.Errorf("hash config: %w", err)
	}
	return r.Keyer.ReportKey(inputHash, cache.ReportKeyOpts{
		ConfigHash: configHash,
		Version:    buildinfo.Version,
	}), nil
}

// Run returns the report for in, from the cache when possible.
func (r *Runner) Run(ctx context.Context, in Input, opts RunOptions) (*Outcome, error) {
	key, err := r.Key(in)
	if err != nil {
		return nil, err
	}

	if !opts.Refresh {
		if rep, ok := r.lookup(ctx, key); ok {
			r.Logger.Debug("report cache hit", "root", rep.Root.Name, "key", key)
			return &Outcome{Report: rep, CacheKey: key, CacheHit: true}, nil
		}
	}

	res, err := Analyze(ctx, in, r.Config, r.Logger)
	if err != nil {
		return nil, err
	}
	rep := NewReport(res)

	if data, err := json.Marshal(rep); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("could not cache report", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "report", len(data))
		}
	}
	return &Outcome{Report: rep, CacheKey: key, Result: res}, nil
}

// Lookup returns a cached report by key.
func (r *Runner) Lookup(ctx context.Context, key string) (*Report, bool) {
	return r.lookup(ctx, key)
}

func (r *Runner) lookup(ctx context.Context, key string) (*Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("report cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		r.Logger.Debug("discarding unreadable cached report", "key", key, "error", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "report")
	return &rep, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
