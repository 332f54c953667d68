// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about analysis
// stages, cache operations and served HTTP requests. Libraries never depend
// on a metrics backend; they call the registered hooks, which default to
// no-ops.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnalysisHooks(&myAnalysisHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Analysis().OnStageStart(ctx, "attribute")
//	// ... attribute sizes ...
//	observability.Analysis().OnStageComplete(ctx, "attribute", duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// AnalysisHooks receives events from the analysis stages.
type AnalysisHooks interface {
	// OnStageStart is called before a stage ("build", "cycles", "attribute",
	// "usage", "classify") runs.
	OnStageStart(ctx context.Context, stage string)

	// OnStageComplete is called after a stage, with its error if it failed.
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)

	// OnAnalysisComplete summarizes one finished manifest analysis.
	OnAnalysisComplete(ctx context.Context, root string, summary AnalysisSummary, duration time.Duration, err error)
}

// AnalysisSummary carries the headline numbers of an analysis.
type AnalysisSummary struct {
	Nodes        int
	Edges        int
	Cycles       int
	TotalSavings int64
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopAnalysisHooks ignores every analysis event.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnStageStart(context.Context, string)                          {}
func (NoopAnalysisHooks) OnStageComplete(context.Context, string, time.Duration, error) {}
func (NoopAnalysisHooks) OnAnalysisComplete(context.Context, string, AnalysisSummary, time.Duration, error) {
}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// registry is the set of hooks in effect. It is replaced as a whole, so a
// caller never observes a half-updated set.
type registry struct {
	analysis AnalysisHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

// update copies the registry, applies fn and publishes the copy.
func update(fn func(*registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetAnalysisHooks registers h for analysis events. A nil h is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	if h != nil {
		update(func(r *registry) { r.analysis = h })
	}
}

// SetCacheHooks registers h for cache events. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers h for HTTP events. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks { return current.Load().analysis }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests call it from t.Cleanup.
func Reset() {
	current.Store(&registry{
		analysis: NoopAnalysisHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
