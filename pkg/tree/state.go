package tree

import (
	"maps"
	"slices"
)

// ExpandState is the set of open paths. The zero value is not usable; use
// [NewExpandState].
//
// Collapsing a node keeps the state of its descendants, so re-expanding it
// restores the previous view.
type ExpandState struct {
	open map[Path]struct{}
}

// NewExpandState returns a state with the given paths open.
func NewExpandState(paths ...Path) *ExpandState {
	s := &ExpandState{open: make(map[Path]struct{}, len(paths))}
	for _, p := range paths {
		s.Expand(p)
	}
	return s
}

// IsExpanded reports whether p is open.
func (s *ExpandState) IsExpanded(p Path) bool {
	_, ok := s.open[p]
	return ok
}

// Expand opens p.
func (s *ExpandState) Expand(p Path) { s.open[p] = struct{}{} }

// Collapse closes p.
func (s *ExpandState) Collapse(p Path) { delete(s.open, p) }

// Toggle flips p and returns whether it is now open.
func (s *ExpandState) Toggle(p Path) bool {
	if s.IsExpanded(p) {
		s.Collapse(p)
		return false
	}
	s.Expand(p)
	return true
}

// Len returns the number of open paths.
func (s *ExpandState) Len() int { return len(s.open) }

// Paths returns the open paths in lexical order.
func (s *ExpandState) Paths() []Path {
	return slices.Sorted(maps.Keys(s.open))
}

// Clone returns an independent copy.
func (s *ExpandState) Clone() *ExpandState {
	return &ExpandState{open: maps.Clone(s.open)}
}

// Reset closes every path.
func (s *ExpandState) Reset() { clear(s.open) }

// ExpandDepth opens every expandable node above depth d, so that nodes down
// to depth d become visible. The root is depth 0.
func (s *ExpandState) ExpandDepth(t *Tree, d int) {
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Depth >= d || !t.Expandable(n) {
			return
		}
		s.Expand(n.Path)
		for _, c := range t.Children(n) {
			walk(c)
		}
	}
	walk(t.root)
}

// ExpandAll opens the whole projection. On dense graphs this can
// materialize a very large number of nodes; prefer [ExpandState.ExpandDepth]
// for interactive use.
func (s *ExpandState) ExpandAll(t *Tree) { s.ExpandDepth(t, t.opts.MaxDepth) }

// Reveal opens every ancestor of p so that p becomes visible.
func (s *ExpandState) Reveal(p Path) {
	names := p.Names()
	var cur Path
	for _, name := range names[:max(len(names)-1, 0)] {
		cur = cur.Child(name)
		s.Expand(cur)
	}
}
