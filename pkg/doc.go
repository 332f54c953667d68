// Package pkg provides the core libraries for codescope dependency analysis.
//
// # Overview
//
// codescope builds the dependency graph of an npm project, finds cycles and
// version conflicts, attributes bundle bytes to packages, merges source
// import usage and estimates how many bytes could be saved by removing or
// replacing packages. The pkg directory is organized into these areas:
//
//  1. [graph] - The package graph arena, cycles, depths and conflicts
//  2. [source/npm] - package.json, lockfile and workspace loading
//  3. [bundle], [usage], [savings] - The annotation passes
//  4. [analysis] - Orchestration and the serializable report
//  5. [report], [tree], [server] - Output: documents, the tree projection, HTTP
//  6. [cache], [config], [errors], [observability], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow through codescope:
//
//	package.json + package-lock.json
//	         ↓
//	    [source/npm] package (normalized manifest)
//	         ↓
//	    [graph] package (build, cycles, depths, conflicts)
//	         ↓
//	    [bundle] → [usage] → [savings] (annotate nodes in place)
//	         ↓
//	    [analysis] package (Result, Report, cached Runner)
//	         ↓
//	    text/JSON/CSV/Markdown/DOT/SVG, tree viewer, HTTP API
//
// # Quick Start
//
// Analyze a project directory:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/codescope/pkg/analysis"
//	    "github.com/matzehuels/codescope/pkg/report"
//	    "github.com/matzehuels/codescope/pkg/savings"
//	    "github.com/matzehuels/codescope/pkg/source/npm"
//	)
//
//	m, _ := npm.Load("./app")
//	res, _ := analysis.Analyze(context.Background(), analysis.Input{Manifest: m}, savings.DefaultConfig(), nil)
//	_ = report.Write(os.Stdout, analysis.NewReport(res), report.FormatText)
//
// # Caching
//
// [analysis.Runner] caches reports keyed by a hash of the inputs, the savings
// configuration and the build version. Backends: [cache.FileCache] for the
// CLI, [cache.RedisCache] for shared deployments, [cache.MemoryCache] as an
// LRU front tier (see [cache.Tiered]) and [cache.NullCache] to disable.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/graph/...    # Specific package
//	go test -run Example       # Examples only
//	go test -short ./pkg/...   # Skip Graphviz rendering
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/graph
// [source/npm]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/source/npm
// [bundle]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/bundle
// [usage]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/usage
// [savings]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/savings
// [analysis]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/analysis
// [analysis.Runner]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/analysis#Runner
// [report]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/report
// [tree]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/tree
// [server]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/cache
// [cache.FileCache]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/cache#FileCache
// [cache.RedisCache]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/cache#RedisCache
// [cache.MemoryCache]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/cache#MemoryCache
// [cache.Tiered]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/cache#Tiered
// [cache.NullCache]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/cache#NullCache
// [config]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/codescope/pkg/buildinfo
package pkg
