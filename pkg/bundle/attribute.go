package bundle

import (
	"fmt"
	"slices"

	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/graph"
)

// Module is one entry of a bundler's size report.
type Module struct {
	Path   string   `json:"path"`
	Size   int64    `json:"size"`
	Chunks []string `json:"chunks,omitempty"`
}

// SizeTable is the module-level size report of a bundle.
type SizeTable []Module

// PackageSize is the attributed size of one package.
type PackageSize struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Modules int    `json:"modules"`
}

// Result summarizes an attribution run.
type Result struct {
	// Packages holds every package found in the bundle, whether or not the
	// graph declares it.
	Packages map[string]*PackageSize

	// Mismatches lists modules whose bytes stayed unattributed.
	Mismatches []*errors.AttributionMismatch

	TotalBytes      int64
	AttributedBytes int64

	Matched []string // graph packages that received bytes
	Missing []string // graph packages with no bundled modules
	Extra   []string // bundled packages the graph does not know
}

// MatchPercentage is the share of graph packages (root excluded) that were
// found in the bundle, in percent. It is 0 for a graph with no dependencies.
func (r *Result) MatchPercentage() float64 {
	total := len(r.Matched) + len(r.Missing)
	if total == 0 {
		return 0
	}
	return float64(len(r.Matched)) / float64(total) * 100
}

// Attribute maps every module in table to its owning package and writes
// the per-package totals onto g. Sizes from earlier runs are cleared first,
// so applying the same table twice leaves g unchanged.
func Attribute(g *graph.Graph, table SizeTable) *Result {
	res := &Result{Packages: make(map[string]*PackageSize)}
	for _, n := range g.All() {
		n.Size, n.HasSize, n.ModuleCount = 0, false, 0
	}

	seen := make(map[string]bool, len(table))
	for _, m := range table {
		if seen[m.Path] {
			continue
		}
		seen[m.Path] = true
		size := max(m.Size, 0)
		res.TotalBytes += size

		name, ok := PackageName(m.Path)
		if !ok {
			res.Mismatches = append(res.Mismatches, &errors.AttributionMismatch{
				Module: m.Path,
				Size:   size,
				Reason: "outside any node_modules directory",
			})
			continue
		}

		ps := res.Packages[name]
		if ps == nil {
			ps = &PackageSize{Name: name}
			res.Packages[name] = ps
		}
		ps.Size += size
		ps.Modules++

		id, ok := g.Lookup(name)
		if !ok {
			res.Mismatches = append(res.Mismatches, &errors.AttributionMismatch{
				Module: m.Path,
				Size:   size,
				Reason: fmt.Sprintf("package %s is not in the dependency graph", name),
			})
			continue
		}
		n := g.Node(id)
		n.Size += size
		n.HasSize = true
		n.ModuleCount++
		res.AttributedBytes += size
	}

	for id, n := range g.All() {
		if id == graph.Root {
			continue
		}
		if n.HasSize {
			res.Matched = append(res.Matched, n.ID.Name)
		} else {
			res.Missing = append(res.Missing, n.ID.Name)
		}
	}
	for name := range res.Packages {
		if _, ok := g.Lookup(name); !ok {
			res.Extra = append(res.Extra, name)
		}
	}
	slices.Sort(res.Matched)
	slices.Sort(res.Missing)
	slices.Sort(res.Extra)
	return res
}

// TransitiveSizes returns, for every node, its own size plus the sizes of
// all distinct packages reachable from it. Nodes whose closure contains no
// sized package are absent from the map.
func TransitiveSizes(g *graph.Graph) map[graph.NodeID]int64 {
	out := make(map[graph.NodeID]int64)
	for id := range g.All() {
		var total int64
		sized := false
		seen := map[graph.NodeID]bool{id: true}
		stack := []graph.NodeID{id}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if node := g.Node(n); node.HasSize {
				total += node.Size
				sized = true
			}
			for _, e := range g.Children(n) {
				if !seen[e.To] {
					seen[e.To] = true
					stack = append(stack, e.To)
				}
			}
		}
		if sized {
			out[id] = total
		}
	}
	return out
}
