package analysis

import (
	"context"
	"testing"

	"github.com/matzehuels/codescope/pkg/cache"
	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/savings"
)

func TestRunnerCaches(t *testing.T) {
	ctx := context.Background()
	mem, err := cache.NewMemoryCache(8)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(mem, nil, savings.DefaultConfig(), quiet)
	defer r.Close()

	first, err := r.Run(ctx, fixture(), RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first.CacheHit || first.Result == nil {
		t.Errorf("first run: hit=%v result=%v", first.CacheHit, first.Result != nil)
	}

	second, err := r.Run(ctx, fixture(), RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit || second.Result != nil {
		t.Errorf("second run should be served from cache")
	}
	if second.Report.ID != first.Report.ID || second.Report.Summary != first.Report.Summary {
		t.Errorf("cached report differs: %+v vs %+v", second.Report.Summary, first.Report.Summary)
	}

	fresh, err := r.Run(ctx, fixture(), RunOptions{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheHit || fresh.Report.ID == first.Report.ID {
		t.Error("Refresh should bypass the cache")
	}

	if rep, ok := r.Lookup(ctx, fresh.CacheKey); !ok || rep.ID != fresh.Report.ID {
		t.Error("Lookup should return the refreshed report")
	}
}

func TestRunnerKey(t *testing.T) {
	r := NewRunner(nil, nil, savings.DefaultConfig(), quiet)
	k1, err := r.Key(fixture())
	if err != nil {
		t.Fatal(err)
	}
	k2, _ := r.Key(fixture())
	if k1 != k2 {
		t.Error("equal inputs should share a key")
	}

	in := fixture()
	in.Manifest.Declare(graph.RelationDev, "jest", "^29.0.0")
	if k3, _ := r.Key(in); k3 == k1 {
		t.Error("different inputs should not share a key")
	}

	cfg := savings.DefaultConfig()
	cfg.TreeShakingFactor = 0.5
	r2 := NewRunner(nil, nil, cfg, quiet)
	if k4, _ := r2.Key(fixture()); k4 == k1 {
		t.Error("different configs should not share a key")
	}
}

func TestRunnerDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	mem, _ := cache.NewMemoryCache(8)
	r := NewRunner(mem, nil, savings.DefaultConfig(), quiet)

	in := fixture()
	in.Manifest.Root.Name = ""
	if _, err := r.Run(ctx, in, RunOptions{}); err == nil {
		t.Fatal("expected error")
	}
	if mem.Len() != 0 {
		t.Errorf("cache holds %d entries after a failed run", mem.Len())
	}
}
