// Package graph provides the package dependency graph at the heart of
// codescope: an index-addressed arena of packages built from a normalized
// manifest, annotated in place by the bundle, usage and savings passes.
//
// # Overview
//
// A [Graph] holds one [Node] per unique package name reachable from the
// root manifest, addressed by a stable [NodeID]. The root is always
// NodeID(0). Edges are stored in per-node adjacency lists; there is at most
// one edge per ordered (parent, child) pair, carrying the strongest
// [Relation] under which the child was declared.
//
// # Building
//
// [Build] walks a [Manifest] breadth-first from the root. A manifest lists
// its production, peer, dev and optional declarations and may carry the
// manifests of transitive packages (typically read from a lockfile):
//
//	m := &graph.Manifest{
//	    Root:       graph.PackageID{Name: "app", Version: "1.0.0"},
//	    Production: []graph.Declaration{{Name: "react", Version: "^18.0.0"}},
//	    Dev:        []graph.Declaration{{Name: "jest", Version: "^29.0.0"}},
//	}
//	g, err := graph.Build(m)
//
// A malformed entry (bad package name, empty version range) aborts the
// build with an *errors.ManifestError. Nothing is partially built.
//
// # Relations
//
// Relations are ranked Production > Peer > Dev > Optional. When the same
// pair is declared under several relations the strongest one wins,
// regardless of declaration order. A node's own relation is the strongest
// relation under which it can be reached from the root, where a path is
// only as strong as its weakest edge: a production dependency of a dev
// dependency is a dev package.
//
// # Analysis
//
// [FindCycles] reports strongly connected components with Tarjan's
// algorithm. [ComputeDepths] assigns breadth-first distances from the root.
// [Graph.Conflicts] lists packages required under more than one version
// range.
//
// # Annotations
//
// Node fields for size, usage, utilization and savings start out unknown.
// They are written by the bundle, usage and savings packages. An unknown
// value is never reported as zero: every optional field has a companion
// Has* flag or is a nil pointer.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Once the annotation passes
// have run, concurrent readers are fine.
package graph
