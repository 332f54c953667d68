package graph

import (
	"slices"
	"strings"
)

// Requirement is one declaration of a package: the range asked for and the
// package that asked.
type Requirement struct {
	Range      string   `json:"range"`
	RequiredBy string   `json:"required_by"`
	Relation   Relation `json:"relation"`
}

// Conflict is a package requested under more than one distinct version range.
type Conflict struct {
	Package      string        `json:"package"`
	Ranges       []string      `json:"ranges"`
	Requirements []Requirement `json:"requirements"`
}

// Requirements returns every recorded declaration of name.
func (g *Graph) Requirements(name string) []Requirement {
	return g.requirements[name]
}

// Conflicts lists packages whose declarations disagree on the version range,
// ordered by package name. Ranges are de-duplicated and sorted.
func (g *Graph) Conflicts() []Conflict {
	var out []Conflict
	for name, reqs := range g.requirements {
		var ranges []string
		for _, r := range reqs {
			ranges = append(ranges, r.Range)
		}
		slices.Sort(ranges)
		ranges = slices.Compact(ranges)
		if len(ranges) < 2 {
			continue
		}
		sorted := slices.Clone(reqs)
		slices.SortFunc(sorted, func(a, b Requirement) int {
			if c := strings.Compare(a.Range, b.Range); c != 0 {
				return c
			}
			return strings.Compare(a.RequiredBy, b.RequiredBy)
		})
		out = append(out, Conflict{Package: name, Ranges: ranges, Requirements: sorted})
	}
	slices.SortFunc(out, func(a, b Conflict) int { return strings.Compare(a.Package, b.Package) })
	return out
}
