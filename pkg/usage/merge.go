package usage

import (
	"slices"

	"github.com/matzehuels/codescope/pkg/graph"
)

// MergeSummary reports what a merge wrote into the graph.
type MergeSummary struct {
	Merged         int      // nodes that received usage facts
	Utilized       int      // nodes with a known utilization
	PossiblyUnused []string // root-declared packages nobody imports
	Undeclared     []string // imported packages missing from the graph
}

// Merge writes the analyzer's aggregates onto g.
//
// Every package declared by the root receives usage facts, with zero files
// when nothing imports it; transitive packages receive facts only when
// source files import them directly. Utilization is set when oracle knows
// the package's export count. A root-declared production or dev package
// with no referencing files that is not side-effect-only is flagged
// possibly unused. Previous usage annotations are cleared first.
func Merge(g *graph.Graph, a *Analyzer, oracle ExportOracle) *MergeSummary {
	sum := &MergeSummary{}
	for id, n := range g.All() {
		n.Usage = nil
		n.Utilization, n.HasUtilization = 0, false
		n.PossiblyUnused = false
		if id == graph.Root {
			continue
		}

		u, imported := a.Package(n.ID.Name)
		if !imported {
			if !g.IsDirect(id) {
				continue
			}
			u = newPackageUsage(n.ID.Name)
		}
		facts := u.Facts()
		n.Usage = &facts
		sum.Merged++

		if oracle != nil {
			if total, ok := oracle.ExportCount(n.ID.Name); ok {
				if util, ok := u.Utilization(total); ok {
					n.Utilization, n.HasUtilization = util, true
					sum.Utilized++
				}
			}
		}

		if declared, ok := g.EdgeBetween(graph.Root, id); ok &&
			facts.Files == 0 && !facts.SideEffectOnly() &&
			(declared.Relation == graph.RelationProduction || declared.Relation == graph.RelationDev) {
			n.PossiblyUnused = true
			sum.PossiblyUnused = append(sum.PossiblyUnused, n.ID.Name)
		}
	}

	slices.Sort(sum.PossiblyUnused)
	for _, name := range a.Packages() {
		if _, ok := g.Lookup(name); !ok {
			sum.Undeclared = append(sum.Undeclared, name)
		}
	}
	return sum
}
