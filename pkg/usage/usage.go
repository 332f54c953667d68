// Package usage aggregates source-level import records into per-package
// usage and merges the result into the dependency graph.
//
// Import records are produced outside codescope (by a bundler plugin, a
// language server, or a regex scan) and arrive as a table; this package
// never parses JavaScript. Each record names the importing file, the module
// specifier and how it was imported:
//
//	import React from "react"            // Default
//	import { map as m } from "lodash"    // Named, Export "map", Alias "m"
//	import * as path from "path-browserify" // Namespace
//	import "core-js/stable"              // SideEffect
//	const fs = require("fs-extra")       // Require
//
// Utilization is the share of a package's exports that are referenced. It
// needs the package's export count, which is supplied by an [ExportOracle];
// without one, utilization stays unknown and is never reported as zero.
package usage

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/codescope/pkg/graph"
)

// Kind is how a module was imported.
type Kind uint8

const (
	KindDefault Kind = iota + 1
	KindNamed
	KindNamespace
	KindSideEffect
	KindRequire
)

var kindNames = map[Kind]string{
	KindDefault:    "default",
	KindNamed:      "named",
	KindNamespace:  "namespace",
	KindSideEffect: "side-effect",
	KindRequire:    "require",
}

// String returns the kind's table name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	s = strings.ReplaceAll(s, "_", "-")
	for kind, name := range kindNames {
		if s == name {
			*k = kind
			return nil
		}
	}
	if s == "sideeffect" {
		*k = KindSideEffect
		return nil
	}
	return fmt.Errorf("unknown import kind %q", string(b))
}

// Record is one import statement in one source file.
type Record struct {
	File    string `json:"file"`
	Package string `json:"package"` // module specifier as written
	Kind    Kind   `json:"kind"`
	Export  string `json:"export,omitempty"`
	Alias   string `json:"alias,omitempty"`
}

// PackageUsage is the aggregated usage of one package across all files.
type PackageUsage struct {
	Name       string
	Default    bool
	Namespace  bool
	SideEffect bool
	Require    bool

	named map[string]struct{}
	files map[string]struct{}
}

func newPackageUsage(name string) *PackageUsage {
	return &PackageUsage{
		Name:  name,
		named: make(map[string]struct{}),
		files: make(map[string]struct{}),
	}
}

// NamedExports returns the referenced named exports, sorted.
func (u *PackageUsage) NamedExports() []string {
	return slices.Sorted(maps.Keys(u.named))
}

// Files returns the referencing files, sorted.
func (u *PackageUsage) Files() []string {
	return slices.Sorted(maps.Keys(u.files))
}

// FileCount returns the number of distinct referencing files.
func (u *PackageUsage) FileCount() int { return len(u.files) }

// Facts summarizes u for storage on a graph node.
func (u *PackageUsage) Facts() graph.UsageFacts {
	return graph.UsageFacts{
		Files:      len(u.files),
		Named:      len(u.named),
		Default:    u.Default,
		Namespace:  u.Namespace,
		Require:    u.Require,
		SideEffect: u.SideEffect,
	}
}

// Utilization returns the fraction of the package's total exports that are
// referenced, in [0, 1]. A default import counts as one referenced export.
//
// The result is unknown (ok == false) when total is not positive, when a
// namespace import or a whole-module require makes the referenced surface
// unknowable, or when the package is only imported for its side effects.
func (u *PackageUsage) Utilization(total int) (float64, bool) {
	if total <= 0 || u.Namespace || u.Require {
		return 0, false
	}
	used := len(u.named)
	if u.Default {
		used++
	}
	if used == 0 && u.SideEffect {
		return 0, false
	}
	return min(float64(used)/float64(total), 1), true
}

// Analyzer aggregates import records by package.
type Analyzer struct {
	packages map[string]*PackageUsage
	skipped  int
}

// NewAnalyzer returns an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{packages: make(map[string]*PackageUsage)}
}

// Add folds records into the aggregate. Local, aliased and builtin
// specifiers are skipped; see [PackageFromSpecifier].
func (a *Analyzer) Add(records ...Record) {
	for _, r := range records {
		name, ok := PackageFromSpecifier(r.Package)
		if !ok {
			a.skipped++
			continue
		}
		u := a.packages[name]
		if u == nil {
			u = newPackageUsage(name)
			a.packages[name] = u
		}
		if r.File != "" {
			u.files[r.File] = struct{}{}
		}
		switch r.Kind {
		case KindDefault:
			u.Default = true
		case KindNamed:
			if r.Export == "default" {
				u.Default = true
			} else if r.Export != "" {
				u.named[r.Export] = struct{}{}
			}
		case KindNamespace:
			u.Namespace = true
		case KindSideEffect:
			u.SideEffect = true
		case KindRequire:
			u.Require = true
		}
	}
}

// Package returns the usage of one package.
func (a *Analyzer) Package(name string) (*PackageUsage, bool) {
	u, ok := a.packages[name]
	return u, ok
}

// Packages returns all imported package names, sorted.
func (a *Analyzer) Packages() []string {
	return slices.Sorted(maps.Keys(a.packages))
}

// Skipped returns the number of records dropped as non-package imports.
func (a *Analyzer) Skipped() int { return a.skipped }

// ExportOracle supplies the total number of exports of a package.
type ExportOracle interface {
	ExportCount(pkg string) (int, bool)
}

// ExportCounts is a map-backed ExportOracle.
type ExportCounts map[string]int

// ExportCount implements ExportOracle.
func (c ExportCounts) ExportCount(pkg string) (int, bool) {
	n, ok := c[pkg]
	return n, ok
}
