// Package tree projects a dependency graph into an expandable tree and
// flattens the visible part of it into rows for display.
//
// The projection is materialized lazily: a [Node]'s children are created
// the first time they are needed, so the cost of a view is bounded by what
// is on screen rather than by the number of root-to-leaf paths. A package
// reachable along several paths appears once per path. Recursion is
// bounded two ways: a package that already appears on the current path is
// shown as a cyclic leaf, and nodes at the depth cap are shown as
// truncated leaves.
//
// Which nodes are open is held in an [ExpandState] keyed by [Path], the
// sequence of package names from the root. The state lives outside the
// tree and is passed to [Flatten], which recomputes the full row list on
// every call.
package tree

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/codescope/pkg/graph"
)

// DefaultMaxDepth caps the projection when Options.MaxDepth is unset.
const DefaultMaxDepth = 32

// pathSep joins package names in a Path. npm names cannot contain spaces
// or '>', so the separator is unambiguous.
const pathSep = " > "

// Path addresses a position in the projection by the package names from
// the root down to the node.
type Path string

// Child returns the path of the child named name.
func (p Path) Child(name string) Path {
	if p == "" {
		return Path(name)
	}
	return p + pathSep + Path(name)
}

// Names splits the path into package names.
func (p Path) Names() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), pathSep)
}

// SortMode orders siblings.
type SortMode uint8

const (
	SortName SortMode = iota
	SortSize
	SortSavings
	SortRelation
)

var sortNames = []string{"name", "size", "savings", "relation"}

// String returns the mode's name.
func (m SortMode) String() string {
	if int(m) < len(sortNames) {
		return sortNames[m]
	}
	return fmt.Sprintf("SortMode(%d)", m)
}

// Next cycles to the following mode.
func (m SortMode) Next() SortMode { return (m + 1) % SortMode(len(sortNames)) }

// ParseSortMode parses a mode name.
func ParseSortMode(s string) (SortMode, error) {
	if i := slices.Index(sortNames, strings.ToLower(s)); i >= 0 {
		return SortMode(i), nil
	}
	return SortName, fmt.Errorf("unknown sort mode %q (want one of %s)", s, strings.Join(sortNames, ", "))
}

// Options configures a projection.
type Options struct {
	MaxDepth int
	Sort     SortMode
}

// Node is one position in the projection.
type Node struct {
	Package  graph.NodeID
	Path     Path
	Depth    int
	Relation graph.Relation // relation of the edge from the parent

	// Cyclic is set when Package already appears above this node.
	Cyclic bool
	// Truncated is set when the node sits at the depth cap and has
	// dependencies that are not shown.
	Truncated bool

	parent   *Node
	children []*Node
	loaded   bool
}

// Parent returns the node above n, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Tree is a lazily materialized projection of a graph.
type Tree struct {
	g    *graph.Graph
	root *Node
	opts Options
}

// New returns the projection of g rooted at the graph root.
func New(g *graph.Graph, opts Options) *Tree {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Tree{
		g:    g,
		opts: opts,
		root: &Node{Package: graph.Root, Path: Path(g.Name(graph.Root))},
	}
}

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Graph returns the projected graph.
func (t *Tree) Graph() *graph.Graph { return t.g }

// Sort returns the current sibling order.
func (t *Tree) Sort() SortMode { return t.opts.Sort }

// MaxDepth returns the depth cap.
func (t *Tree) MaxDepth() int { return t.opts.MaxDepth }

// Expandable reports whether n can show children.
func (t *Tree) Expandable(n *Node) bool {
	return !n.Cyclic && !n.Truncated && len(t.g.Children(n.Package)) > 0
}

// Children returns n's children in the current sort order, creating them
// on first use.
func (t *Tree) Children(n *Node) []*Node {
	if n.loaded || !t.Expandable(n) {
		return n.children
	}
	n.loaded = true
	edges := t.g.Children(n.Package)
	n.children = make([]*Node, 0, len(edges))
	for _, e := range edges {
		c := &Node{
			Package:  e.To,
			Path:     n.Path.Child(t.g.Name(e.To)),
			Depth:    n.Depth + 1,
			Relation: e.Relation,
			parent:   n,
		}
		switch {
		case onPath(n, e.To):
			c.Cyclic = true
		case c.Depth >= t.opts.MaxDepth && len(t.g.Children(e.To)) > 0:
			c.Truncated = true
		}
		n.children = append(n.children, c)
	}
	t.sortChildren(n.children)
	return n.children
}

// onPath reports whether id appears on the path from the root to n.
func onPath(n *Node, id graph.NodeID) bool {
	for ; n != nil; n = n.parent {
		if n.Package == id {
			return true
		}
	}
	return false
}

// Find returns the node at p, materializing the nodes along the way.
func (t *Tree) Find(p Path) (*Node, bool) {
	names := p.Names()
	if len(names) == 0 || names[0] != t.g.Name(graph.Root) {
		return nil, false
	}
	n := t.root
	for _, name := range names[1:] {
		var next *Node
		for _, c := range t.Children(n) {
			if t.g.Name(c.Package) == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil, false
		}
		n = next
	}
	return n, true
}

// SetSort changes the sibling order of every materialized node.
func (t *Tree) SetSort(mode SortMode) {
	t.opts.Sort = mode
	var walk func(n *Node)
	walk = func(n *Node) {
		t.sortChildren(n.children)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
}

func (t *Tree) sortChildren(nodes []*Node) {
	name := func(a, b *Node) int { return cmp.Compare(t.g.Name(a.Package), t.g.Name(b.Package)) }
	var by func(a, b *Node) int
	switch t.opts.Sort {
	case SortSize:
		by = func(a, b *Node) int {
			x, y := t.g.Node(a.Package), t.g.Node(b.Package)
			if x.HasSize != y.HasSize {
				if x.HasSize {
					return -1
				}
				return 1
			}
			return cmp.Compare(y.Size, x.Size)
		}
	case SortSavings:
		by = func(a, b *Node) int {
			return cmp.Compare(t.g.Node(b.Package).Savings, t.g.Node(a.Package).Savings)
		}
	case SortRelation:
		by = func(a, b *Node) int { return cmp.Compare(b.Relation, a.Relation) }
	default:
		slices.SortStableFunc(nodes, name)
		return
	}
	slices.SortStableFunc(nodes, func(a, b *Node) int { return cmp.Or(by(a, b), name(a, b)) })
}

// Count returns the number of nodes in the full projection, as bounded by
// the depth cap and cycle detection. It materializes every node.
func Count(t *Tree) int {
	var count func(n *Node) int
	count = func(n *Node) int {
		total := 1
		for _, c := range t.Children(n) {
			total += count(c)
		}
		return total
	}
	return count(t.root)
}
