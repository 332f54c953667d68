package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/tree"
)

// Tree view styles
var (
	treeCursorStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("237"))
	treeGuideStyle  = lipgloss.NewStyle().Foreground(colorDim)
	treeHitStyle    = lipgloss.NewStyle().Underline(true)
	treeHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

const treeHelp = "j/k move  enter toggle  h/l collapse/expand  e/c all  / search  n/N next/prev  s sort  q quit"

// treeModel is the bubbletea model of the interactive tree viewer.
type treeModel struct {
	tree  *tree.Tree
	state *tree.ExpandState
	rows  []tree.Row

	cursor int
	offset int
	height int

	searching bool
	query     string
	hits      []int
}

// newTreeModel opens t with every node above depth expanded.
func newTreeModel(t *tree.Tree, depth int) treeModel {
	m := treeModel{
		tree:   t,
		state:  tree.NewExpandState(),
		height: 20,
	}
	m.state.ExpandDepth(t, depth)
	m.refresh()
	return m
}

// runTreeView runs the viewer until the user quits or ctx is done.
func runTreeView(ctx context.Context, t *tree.Tree, depth int) error {
	p := tea.NewProgram(newTreeModel(t, depth), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (m treeModel) Init() tea.Cmd {
	return nil
}

// current returns the node under the cursor.
func (m treeModel) current() *tree.Node {
	return m.rows[m.cursor].Node
}

// refresh recomputes the rows, keeping the cursor on the same path when
// that path is still visible.
func (m *treeModel) refresh() {
	var keep tree.Path
	if m.cursor < len(m.rows) {
		keep = m.current().Path
	}
	m.rows = tree.Flatten(m.tree, m.state)
	m.cursor = min(m.cursor, len(m.rows)-1)
	for i, r := range m.rows {
		if r.Node.Path == keep {
			m.cursor = i
			break
		}
	}
	m.hits = tree.Search(m.tree, m.rows, m.query)
	m.scroll()
}

// moveTo puts the cursor on the row at path, if visible.
func (m *treeModel) moveTo(p tree.Path) {
	for i, r := range m.rows {
		if r.Node.Path == p {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m *treeModel) move(delta int) {
	m.cursor = max(0, min(len(m.rows)-1, m.cursor+delta))
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *treeModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// jump moves to the next (dir 1) or previous (dir -1) search hit,
// wrapping around.
func (m *treeModel) jump(dir int) {
	if len(m.hits) == 0 {
		return
	}
	if dir > 0 {
		for _, h := range m.hits {
			if h > m.cursor {
				m.cursor = h
				m.scroll()
				return
			}
		}
		m.cursor = m.hits[0]
	} else {
		for i := len(m.hits) - 1; i >= 0; i-- {
			if m.hits[i] < m.cursor {
				m.cursor = m.hits[i]
				m.scroll()
				return
			}
		}
		m.cursor = m.hits[len(m.hits)-1]
	}
	m.scroll()
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-4, 3)
		m.scroll()
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m treeModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.searching = false
		if len(m.hits) > 0 && !m.isHit(m.cursor) {
			m.jump(1)
		}
	case tea.KeyEsc:
		m.searching = false
		m.query = ""
		m.hits = nil
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
			m.hits = tree.Search(m.tree, m.rows, m.query)
		}
	case tea.KeyRunes:
		m.query += string(msg.Runes)
		m.hits = tree.Search(m.tree, m.rows, m.query)
	}
	return m, nil
}

func (m treeModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-m.height)
	case "pgdown":
		m.move(m.height)
	case "g", "home":
		m.move(-len(m.rows))
	case "G", "end":
		m.move(len(m.rows))
	case "enter", " ":
		if n := m.current(); m.tree.Expandable(n) {
			m.state.Toggle(n.Path)
			m.refresh()
		}
	case "l", "right":
		n := m.current()
		switch {
		case !m.tree.Expandable(n):
		case m.state.IsExpanded(n.Path):
			m.move(1)
		default:
			m.state.Expand(n.Path)
			m.refresh()
		}
	case "h", "left":
		n := m.current()
		if m.tree.Expandable(n) && m.state.IsExpanded(n.Path) {
			m.state.Collapse(n.Path)
			m.refresh()
		} else if p := n.Parent(); p != nil {
			m.moveTo(p.Path)
		}
	case "e":
		m.state.ExpandAll(m.tree)
		m.refresh()
	case "c":
		m.state.Reset()
		m.state.Expand(m.tree.Root().Path)
		m.refresh()
	case "s":
		m.tree.SetSort(m.tree.Sort().Next())
		m.refresh()
	case "/":
		m.searching = true
		m.query = ""
		m.hits = nil
	case "n":
		m.jump(1)
	case "N":
		m.jump(-1)
	case "esc":
		m.query = ""
		m.hits = nil
	}
	return m, nil
}

func (m treeModel) isHit(i int) bool {
	for _, h := range m.hits {
		if h == i {
			return true
		}
	}
	return false
}

func (m treeModel) View() string {
	var b strings.Builder

	root := m.tree.Graph().Node(graph.Root)
	b.WriteString(StyleTitle.Render(root.ID.String()))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  sort: %s", m.tree.Sort())))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.viewRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(StyleHighlight.Render("/" + m.query))
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %d match(es)", len(m.hits))))
	case m.query != "":
		b.WriteString(StyleDim.Render(fmt.Sprintf("/%s  %d match(es)  [%d/%d]", m.query, len(m.hits), m.cursor+1, len(m.rows))))
	default:
		b.WriteString(treeHelpStyle.Render(fmt.Sprintf("%s  [%d/%d]", treeHelp, m.cursor+1, len(m.rows))))
	}
	return b.String()
}

func (m treeModel) viewRow(i int) string {
	r := m.rows[i]
	n := m.tree.Graph().Node(r.Node.Package)

	nameStyle := StyleTitle
	if r.Depth > 0 {
		nameStyle = relationStyles[r.Node.Relation]
	}
	if m.isHit(i) {
		nameStyle = nameStyle.Inherit(treeHitStyle)
	}

	line := treeGuideStyle.Render(r.Prefix()+m.tree.Indicator(r.Node, m.state)) + nameStyle.Render(n.ID.Name)
	if n.ID.Version != "" {
		line += " " + StyleDim.Render(n.ID.Version)
	}
	if n.HasSize {
		line += " " + StyleNumber.Render(bundle.FormatSize(n.Size))
	}
	if st, ok := categoryStyles[n.Category]; ok {
		line += " " + st.Render(fmt.Sprintf("%s -%s", n.Category, bundle.FormatSize(n.Savings)))
	}
	if i == m.cursor {
		return treeCursorStyle.Render(line)
	}
	return line
}
