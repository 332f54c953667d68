package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError     = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// categoryStyles colour savings categories in tables and the tree viewer.
var categoryStyles = map[graph.Category]lipgloss.Style{
	graph.CategoryUnused:         lipgloss.NewStyle().Foreground(colorRed),
	graph.CategoryHasAlternative: lipgloss.NewStyle().Foreground(colorYellow),
	graph.CategoryUnderutilized:  lipgloss.NewStyle().Foreground(colorCyan),
	graph.CategoryTreeShaking:    lipgloss.NewStyle().Foreground(colorBlue),
}

// relationStyles colour package names by dependency type.
var relationStyles = map[graph.Relation]lipgloss.Style{
	graph.RelationProduction: lipgloss.NewStyle().Foreground(colorWhite),
	graph.RelationPeer:       lipgloss.NewStyle().Foreground(colorBlue),
	graph.RelationDev:        lipgloss.NewStyle().Foreground(colorGray),
	graph.RelationOptional:   lipgloss.NewStyle().Foreground(colorDim).Italic(true),
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// ui writes styled status lines to w.
type ui struct {
	w io.Writer
}

func (c *CLI) ui() ui { return ui{w: c.Out} }

func (u ui) success(format string, args ...any) {
	fmt.Fprintln(u.w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (u ui) failure(format string, args ...any) {
	fmt.Fprintln(u.w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func (u ui) warning(format string, args ...any) {
	fmt.Fprintln(u.w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (u ui) info(format string, args ...any) {
	fmt.Fprintln(u.w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (u ui) detail(format string, args ...any) {
	fmt.Fprintln(u.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a file output line.
func (u ui) file(path string) {
	fmt.Fprintln(u.w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// keyValue prints a labeled value.
func (u ui) keyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Fprintln(u.w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// stats prints graph statistics on a single line.
func (u ui) stats(nodeCount, edgeCount int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d packages", nodeCount),
		fmt.Sprintf("%d edges", edgeCount),
	}
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	rendered := make([]string, len(parts))
	for i, p := range parts {
		rendered[i] = StyleDim.Render(p)
	}
	fmt.Fprintln(u.w, "  "+strings.Join(append(rendered, statusStyle.Render(status)), StyleDim.Render(" · ")))
}

// nextStep prints a suggested next command.
func (u ui) nextStep(description, cmd string) {
	fmt.Fprintln(u.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func (u ui) newline() { fmt.Fprintln(u.w) }

// =============================================================================
// Report Display
// =============================================================================

// report prints a styled summary of rep: headline numbers, the savings
// table and any cycles.
func (u ui) report(rep *analysis.Report, cached bool) {
	s := rep.Summary
	fmt.Fprintln(u.w, StyleTitle.Render(rep.Root.String()))
	u.stats(s.Packages, s.Edges, cached)
	u.newline()

	u.keyValue("Direct", fmt.Sprint(s.Direct))
	u.keyValue("Max depth", fmt.Sprint(s.MaxDepth))
	if rep.Savings != nil && s.TotalSize > 0 {
		u.keyValue("Bundle", bundle.FormatSize(s.TotalSize))
		u.keyValue("Savings", fmt.Sprintf("%s (%.1f%%)", bundle.FormatSize(s.TotalSavings), s.SavingsPercent))
	}
	if a := rep.Attribution; a != nil {
		u.keyValue("Bundle match", fmt.Sprintf("%.1f%%", a.MatchPercentage))
	}

	if rep.Savings != nil && len(rep.Savings.Entries) > 0 {
		u.newline()
		u.savingsTable(rep)
	}

	if len(rep.Cycles) > 0 {
		u.newline()
		u.warning("%d dependency cycle(s)", len(rep.Cycles))
		for _, c := range rep.Cycles {
			u.detail("%s", cycleLine(c))
		}
	}
	if len(rep.Conflicts) > 0 {
		u.newline()
		u.warning("%d package(s) requested under several version ranges", len(rep.Conflicts))
		for _, c := range rep.Conflicts {
			u.detail("%s: %s", c.Package, strings.Join(c.Ranges, ", "))
		}
	}
	if rep.Usage != nil && len(rep.Usage.Undeclared) > 0 {
		u.newline()
		u.warning("imported but not declared: %s", strings.Join(rep.Usage.Undeclared, ", "))
	}
}

func (u ui) savingsTable(rep *analysis.Report) {
	entries := rep.Savings.Entries
	rows := make([][]string, len(entries))
	for i, e := range entries {
		util := ""
		if e.Utilization != nil {
			util = fmt.Sprintf("%.0f%%", *e.Utilization*100)
		}
		rows[i] = []string{e.Package.Name, e.Category.String(), bundle.FormatSize(e.Size), bundle.FormatSize(e.Savings), util}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Category", "Size", "Savings", "Used").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				if st, ok := categoryStyles[entries[row].Category]; ok {
					return st.Padding(0, 1)
				}
			}
			if col == 3 {
				return cell.Foreground(colorCyan)
			}
			return cell
		})
	fmt.Fprintln(u.w, t.Render())
}

func cycleLine(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, " → ") + " → " + names[0]
}
