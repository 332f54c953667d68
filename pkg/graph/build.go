package graph

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/codescope/pkg/errors"
)

// versionPick tracks which declaration currently supplies a node's version.
type versionPick struct {
	depth    int
	relation Relation
	version  string
}

func (p versionPick) better(o versionPick) bool {
	if p.depth != o.depth {
		return p.depth < o.depth
	}
	if p.relation != o.relation {
		return p.relation.Stronger(o.relation)
	}
	return p.version < o.version
}

// Build constructs the dependency graph reachable from m.Root.
//
// Declarations are processed strongest relation first and by name within a
// relation, so node ids and edge relations do not depend on the order of
// the input lists. Any malformed entry aborts the build with an
// *errors.ManifestError.
func Build(m *Manifest) (*Graph, error) {
	if m == nil {
		return nil, &errors.ManifestError{Reason: "manifest is nil"}
	}
	if err := errors.ValidateNpmPackageName(m.Root.Name); err != nil {
		return nil, &errors.ManifestError{
			Manifest: m.Root.Name,
			Entry:    m.Root.Name,
			Reason:   errors.UserMessage(err),
		}
	}

	g := newGraph(m.Root)
	picks := map[NodeID]versionPick{}
	depth := map[NodeID]int{Root: 0}
	manifests := map[NodeID]*Manifest{Root: m}

	queue := []NodeID{Root}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		mf := manifests[parent]
		if mf == nil {
			continue
		}
		for _, rel := range Relations {
			decls, err := sortedDeclarations(mf, rel)
			if err != nil {
				return nil, err
			}
			for _, d := range decls {
				child, seen := g.Lookup(d.Name)
				if !seen {
					child = g.addNode(PackageID{Name: d.Name, Version: d.Version})
					depth[child] = depth[parent] + 1
					if sub, ok := m.Packages[d.Name]; ok {
						manifests[child] = sub
					}
					queue = append(queue, child)
				}

				pick := versionPick{depth: depth[parent], relation: rel, version: d.Version}
				if cur, ok := picks[child]; !ok || pick.better(cur) {
					picks[child] = pick
				}

				g.requirements[d.Name] = append(g.requirements[d.Name], Requirement{
					Range:      d.Version,
					RequiredBy: g.Name(parent),
					Relation:   rel,
				})
				g.setEdge(parent, child, rel)
			}
		}
	}

	for id, pick := range picks {
		if id == Root {
			continue
		}
		version := pick.version
		if sub := manifests[id]; sub != nil && sub.Root.Version != "" {
			version = sub.Root.Version
		}
		g.nodes[id].ID.Version = version
	}

	g.seal()
	g.assignRelations()
	return g, nil
}

// sortedDeclarations validates the entries of one relation list and
// returns them ordered by name, then version.
func sortedDeclarations(m *Manifest, rel Relation) ([]Declaration, error) {
	src := m.Declarations(rel)
	if len(src) == 0 {
		return nil, nil
	}
	decls := make([]Declaration, len(src))
	for i, d := range src {
		d.Name = strings.TrimSpace(d.Name)
		d.Version = strings.TrimSpace(d.Version)
		if err := errors.ValidateNpmPackageName(d.Name); err != nil {
			return nil, &errors.ManifestError{
				Manifest: m.Root.Name,
				Relation: rel.String(),
				Entry:    d.Name,
				Reason:   errors.UserMessage(err),
			}
		}
		if d.Version == "" {
			return nil, &errors.ManifestError{
				Manifest: m.Root.Name,
				Relation: rel.String(),
				Entry:    d.Name,
				Reason:   "empty version range",
			}
		}
		decls[i] = d
	}
	slices.SortFunc(decls, func(a, b Declaration) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Version, b.Version))
	})
	return decls, nil
}

// assignRelations gives every non-root node the strongest relation under
// which it is reachable, a path counting only as strong as its weakest edge.
// One breadth-first pass per relation level, strongest first.
func (g *Graph) assignRelations() {
	for _, level := range Relations {
		visited := make([]bool, len(g.nodes))
		visited[Root] = true
		queue := []NodeID{Root}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			for _, e := range g.out[n] {
				if e.Relation < level || visited[e.To] {
					continue
				}
				visited[e.To] = true
				if g.nodes[e.To].Relation == RelationNone && e.To != Root {
					g.nodes[e.To].Relation = level
				}
				queue = append(queue, e.To)
			}
		}
	}
}
