// Package analysis runs the codescope stages over one manifest or a whole
// workspace.
//
// # Stages
//
// [Analyze] sequences the stages so that every annotation a later stage
// reads is written first:
//
//  1. build: [graph.Build] turns the manifest into a graph
//  2. cycles: [graph.FindCycles], depths and version conflicts
//  3. attribute: [bundle.Attribute] maps bundled modules to packages
//  4. usage: [usage.Merge] folds the import table into the graph
//  5. classify: [savings.Classifier] estimates savings
//
// Attribution and usage are skipped when their input is absent; the
// affected node fields then stay unknown and the classifier evaluates
// nothing.
//
// # Caching
//
// [Runner] wraps Analyze with a [cache.Cache]: the serialized [Report] is
// stored under a key derived from the inputs, the configuration and the
// build version. Both the CLI and the HTTP server use it.
//
// # Workspaces
//
// [AnalyzeWorkspace] analyzes independent manifests concurrently. A
// failing manifest records its error and does not cancel the others.
package analysis

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/observability"
	"github.com/matzehuels/codescope/pkg/savings"
	"github.com/matzehuels/codescope/pkg/usage"
)

// Stage names reported to hooks and logs.
const (
	StageBuild     = "build"
	StageCycles    = "cycles"
	StageAttribute = "attribute"
	StageUsage     = "usage"
	StageClassify  = "classify"
)

// Input is everything one analysis consumes.
type Input struct {
	Manifest *graph.Manifest `json:"manifest"`

	// Sizes is the bundle's module size table. Nil skips attribution.
	Sizes bundle.SizeTable `json:"sizes,omitempty"`

	// Usage is the source import table. Nil skips the usage merge.
	Usage []usage.Record `json:"usage,omitempty"`

	// Exports holds per-package export counts used for utilization.
	Exports usage.ExportCounts `json:"exports,omitempty"`
}

// Result is a finished analysis: the annotated graph and the outputs of
// each stage.
type Result struct {
	Graph     *graph.Graph
	Cycles    []graph.Cycle
	Conflicts []graph.Conflict

	// Attribution is nil when no size table was given.
	Attribution *bundle.Result
	// Usage is nil when no usage table was given.
	Usage *usage.MergeSummary

	Savings *savings.Report
	Stats   Stats
}

// Stats records graph dimensions and stage timings.
type Stats struct {
	Nodes    int                      `json:"nodes"`
	Edges    int                      `json:"edges"`
	MaxDepth int                      `json:"max_depth"`
	Stages   map[string]time.Duration `json:"stages"`
	Total    time.Duration            `json:"total"`
}

// Analyze runs every stage over in. The configuration is validated before
// any graph work; an invalid one yields an *errors.ConfigError. A malformed
// manifest yields an *errors.ManifestError. Attribution and usage gaps are
// not errors.
func Analyze(ctx context.Context, in Input, cfg savings.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	start := time.Now()
	hooks := observability.Analysis()

	classifier, err := savings.NewClassifier(cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{Stats: Stats{Stages: make(map[string]time.Duration)}}
	run := func(name string, fn func() error) error {
		hooks.OnStageStart(ctx, name)
		t := time.Now()
		err := fn()
		d := time.Since(t)
		res.Stats.Stages[name] = d
		hooks.OnStageComplete(ctx, name, d, err)
		return err
	}
	rootName := ""
	if in.Manifest != nil {
		rootName = in.Manifest.Root.Name
	}
	finish := func(err error) {
		res.Stats.Total = time.Since(start)
		sum := observability.AnalysisSummary{
			Nodes:  res.Stats.Nodes,
			Edges:  res.Stats.Edges,
			Cycles: len(res.Cycles),
		}
		if res.Savings != nil {
			sum.TotalSavings = res.Savings.TotalSavings
		}
		hooks.OnAnalysisComplete(ctx, rootName, sum, res.Stats.Total, err)
	}

	// Stage 1: Build
	err = run(StageBuild, func() error {
		g, err := graph.Build(in.Manifest)
		res.Graph = g
		return err
	})
	if err != nil {
		finish(err)
		return nil, err
	}
	g := res.Graph
	res.Stats.Nodes, res.Stats.Edges = g.Len(), g.EdgeCount()
	logger.Debug("built graph", "root", rootName, "nodes", g.Len(), "edges", g.EdgeCount(),
		"duration", res.Stats.Stages[StageBuild])

	// Stage 2: Structure
	_ = run(StageCycles, func() error {
		graph.ComputeDepths(g)
		res.Cycles = graph.FindCycles(g)
		res.Conflicts = g.Conflicts()
		return nil
	})
	res.Stats.MaxDepth = g.MaxDepth()
	if len(res.Cycles) > 0 {
		logger.Debug("found cycles", "root", rootName, "count", len(res.Cycles))
	}

	// Stage 3: Attribute
	if in.Sizes != nil {
		_ = run(StageAttribute, func() error {
			res.Attribution = bundle.Attribute(g, in.Sizes)
			return nil
		})
		a := res.Attribution
		for _, m := range a.Mismatches {
			logger.Debug("unattributed module", "module", m.Module, "size", m.Size, "reason", m.Reason)
		}
		if len(a.Mismatches) > 0 {
			logger.Warn("some bundled modules could not be attributed",
				"root", rootName,
				"modules", len(a.Mismatches),
				"bytes", bundle.FormatSize(a.TotalBytes-a.AttributedBytes))
		}
	}

	// Stage 4: Usage
	if in.Usage != nil {
		_ = run(StageUsage, func() error {
			a := usage.NewAnalyzer()
			a.Add(in.Usage...)
			var oracle usage.ExportOracle
			if in.Exports != nil {
				oracle = in.Exports
			}
			res.Usage = usage.Merge(g, a, oracle)
			if a.Skipped() > 0 {
				logger.Debug("skipped non-package imports", "count", a.Skipped())
			}
			return nil
		})
		if n := len(res.Usage.Undeclared); n > 0 {
			logger.Warn("imported packages are not declared", "root", rootName, "count", n,
				"packages", res.Usage.Undeclared)
		}
	}

	// Stage 5: Classify
	_ = run(StageClassify, func() error {
		res.Savings = classifier.Classify(g)
		return nil
	})

	finish(nil)
	logger.Info("analyzed dependencies",
		"root", rootName,
		"nodes", res.Stats.Nodes,
		"cycles", len(res.Cycles),
		"savings", bundle.FormatSize(res.Savings.TotalSavings),
		"duration", res.Stats.Total)
	return res, nil
}
