package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/codescope/pkg/buildinfo"
	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/savings"
)

// Report is the serializable outcome of an analysis. It is what the cache
// stores, what the HTTP API returns and what the text, CSV and Markdown
// emitters render. Optional numbers are pointers: nil means unknown.
type Report struct {
	ID        string          `json:"id"`
	Root      graph.PackageID `json:"root"`
	Generated time.Time       `json:"generated"`
	Build     buildinfo.Info  `json:"build"`

	Summary     Summary             `json:"summary"`
	Packages    []PackageRow        `json:"packages"`
	Cycles      [][]string          `json:"cycles"`
	Conflicts   []graph.Conflict    `json:"conflicts"`
	Savings     *savings.Report     `json:"savings"`
	Attribution *AttributionSummary `json:"attribution,omitempty"`
	Usage       *UsageSummary       `json:"usage,omitempty"`
	Stats       Stats               `json:"stats"`
}

// Summary holds the headline numbers.
type Summary struct {
	Packages       int     `json:"packages"`
	Direct         int     `json:"direct"`
	Edges          int     `json:"edges"`
	MaxDepth       int     `json:"max_depth"`
	Cycles         int     `json:"cycles"`
	Conflicts      int     `json:"conflicts"`
	TotalSize      int64   `json:"total_size"`
	TotalSavings   int64   `json:"total_savings"`
	SavingsPercent float64 `json:"savings_percent"`
}

// PackageRow is one non-root package.
type PackageRow struct {
	Name           string         `json:"name"`
	Version        string         `json:"version"`
	Relation       graph.Relation `json:"relation"`
	Depth          int            `json:"depth"`
	Direct         bool           `json:"direct"`
	InCycle        bool           `json:"in_cycle,omitempty"`
	Size           *int64         `json:"size,omitempty"`
	TransitiveSize *int64         `json:"transitive_size,omitempty"`
	Modules        int            `json:"modules,omitempty"`
	Files          *int           `json:"files,omitempty"`
	Utilization    *float64       `json:"utilization,omitempty"`
	PossiblyUnused bool           `json:"possibly_unused,omitempty"`
	Category       graph.Category `json:"category"`
	Savings        int64          `json:"savings"`
}

// AttributionSummary describes how well the bundle matched the graph.
type AttributionSummary struct {
	TotalBytes      int64      `json:"total_bytes"`
	AttributedBytes int64      `json:"attributed_bytes"`
	MatchPercentage float64    `json:"match_percentage"`
	Matched         []string   `json:"matched"`
	Missing         []string   `json:"missing"`
	Extra           []string   `json:"extra"`
	Mismatches      []Mismatch `json:"mismatches"`
}

// Mismatch is a module whose bytes stayed unattributed.
type Mismatch struct {
	Module string `json:"module"`
	Size   int64  `json:"size"`
	Reason string `json:"reason"`
}

// UsageSummary describes the usage merge.
type UsageSummary struct {
	Merged         int      `json:"merged"`
	Utilized       int      `json:"utilized"`
	PossiblyUnused []string `json:"possibly_unused"`
	Undeclared     []string `json:"undeclared"`
}

// NewReport serializes res. Every call assigns a fresh report ID.
func NewReport(res *Result) *Report {
	g := res.Graph
	root := g.Node(graph.Root)
	rep := &Report{
		ID:        uuid.NewString(),
		Root:      root.ID,
		Generated: time.Now().UTC(),
		Build:     buildinfo.Get(),
		Summary: Summary{
			Packages:  g.Len() - 1,
			Direct:    len(g.Direct()),
			Edges:     g.EdgeCount(),
			MaxDepth:  g.MaxDepth(),
			Cycles:    len(res.Cycles),
			Conflicts: len(res.Conflicts),
		},
		Conflicts: res.Conflicts,
		Savings:   res.Savings,
		Stats:     res.Stats,
	}
	if res.Savings != nil {
		rep.Summary.TotalSize = res.Savings.TotalSize
		rep.Summary.TotalSavings = res.Savings.TotalSavings
		rep.Summary.SavingsPercent = res.Savings.Percentage()
	}

	membership := graph.CycleMembership(res.Cycles)
	for _, c := range res.Cycles {
		rep.Cycles = append(rep.Cycles, c.Names(g))
	}

	transitive := bundle.TransitiveSizes(g)
	for id, n := range g.All() {
		if id == graph.Root {
			continue
		}
		row := PackageRow{
			Name:           n.ID.Name,
			Version:        n.ID.Version,
			Relation:       n.Relation,
			Depth:          n.Depth,
			Direct:         g.IsDirect(id),
			PossiblyUnused: n.PossiblyUnused,
			Category:       n.Category,
			Savings:        n.Savings,
			Modules:        n.ModuleCount,
		}
		if _, ok := membership[id]; ok {
			row.InCycle = true
		}
		if n.HasSize {
			row.Size = ptr(n.Size)
		}
		if t, ok := transitive[id]; ok {
			row.TransitiveSize = ptr(t)
		}
		if n.Usage != nil {
			row.Files = ptr(n.Usage.Files)
		}
		if n.HasUtilization {
			row.Utilization = ptr(n.Utilization)
		}
		rep.Packages = append(rep.Packages, row)
	}

	if a := res.Attribution; a != nil {
		sum := &AttributionSummary{
			TotalBytes:      a.TotalBytes,
			AttributedBytes: a.AttributedBytes,
			MatchPercentage: a.MatchPercentage(),
			Matched:         a.Matched,
			Missing:         a.Missing,
			Extra:           a.Extra,
		}
		for _, m := range a.Mismatches {
			sum.Mismatches = append(sum.Mismatches, Mismatch{Module: m.Module, Size: m.Size, Reason: m.Reason})
		}
		rep.Attribution = sum
	}
	if u := res.Usage; u != nil {
		rep.Usage = &UsageSummary{
			Merged:         u.Merged,
			Utilized:       u.Utilized,
			PossiblyUnused: u.PossiblyUnused,
			Undeclared:     u.Undeclared,
		}
	}
	return rep
}

// Package returns the row for name.
func (r *Report) Package(name string) (PackageRow, bool) {
	for _, p := range r.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return PackageRow{}, false
}

func ptr[T any](v T) *T { return &v }
