package tree

import (
	"slices"
	"strings"
)

// Row is one visible line of the tree.
type Row struct {
	Node   *Node
	Depth  int
	IsLast bool // last child of its parent

	// AncestorLast holds IsLast for the ancestors at depths 1..Depth-1,
	// which decides whether each guide column draws a vertical bar.
	AncestorLast []bool
}

// Guide glyphs.
const (
	guideBar   = "│   "
	guideBlank = "    "
	guideTee   = "├── "
	guideElbow = "└── "
)

// Prefix returns the guide drawn before the row's label. The root has
// none.
func (r Row) Prefix() string {
	if r.Depth == 0 {
		return ""
	}
	var b strings.Builder
	for _, last := range r.AncestorLast {
		if last {
			b.WriteString(guideBlank)
		} else {
			b.WriteString(guideBar)
		}
	}
	if r.IsLast {
		b.WriteString(guideElbow)
	} else {
		b.WriteString(guideTee)
	}
	return b.String()
}

// Flatten returns the visible rows in display order: a pre-order walk
// that descends only into expanded nodes. The root row is always present.
func Flatten(t *Tree, s *ExpandState) []Row {
	var rows []Row
	var walk func(n *Node, isLast bool, ancestors []bool)
	walk = func(n *Node, isLast bool, ancestors []bool) {
		rows = append(rows, Row{Node: n, Depth: n.Depth, IsLast: isLast, AncestorLast: ancestors})
		if !s.IsExpanded(n.Path) || !t.Expandable(n) {
			return
		}
		var next []bool
		if n.Depth > 0 {
			next = append(slices.Clone(ancestors), isLast)
		}
		kids := t.Children(n)
		for i, c := range kids {
			walk(c, i == len(kids)-1, next)
		}
	}
	walk(t.root, true, nil)
	return rows
}

// Indicator returns the expansion marker for n: ▶ collapsed, ▼ expanded,
// ↻ cyclic, … truncated and blank for leaves. Every marker has the same
// display width.
func (t *Tree) Indicator(n *Node, s *ExpandState) string {
	switch {
	case n.Cyclic:
		return "↻ "
	case n.Truncated:
		return "… "
	case !t.Expandable(n):
		return "  "
	case s.IsExpanded(n.Path):
		return "▼ "
	default:
		return "▶ "
	}
}
