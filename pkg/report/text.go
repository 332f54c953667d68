package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/bundle"
)

// WriteText renders a plain-text summary followed by savings, cycle and
// conflict tables. No colour codes are emitted.
func WriteText(w io.Writer, rep *analysis.Report) error {
	bw := bufio.NewWriter(w)
	s := rep.Summary

	fmt.Fprintln(bw, rep.Root.String())
	fmt.Fprintf(bw, "  %s (%d direct), %s, max depth %d\n",
		plural(s.Packages, "package"), s.Direct, plural(s.Edges, "edge"), s.MaxDepth)
	fmt.Fprintf(bw, "  %s, %s\n", plural(s.Cycles, "cycle"), plural(s.Conflicts, "version conflict"))
	if rep.Savings != nil {
		fmt.Fprintf(bw, "  bundle %s, potential savings %s (%.1f%%)\n",
			bundle.FormatSize(s.TotalSize), bundle.FormatSize(s.TotalSavings), s.SavingsPercent)
	}
	if a := rep.Attribution; a != nil && len(a.Mismatches) > 0 {
		fmt.Fprintf(bw, "  %s unattributed\n", plural(len(a.Mismatches), "module"))
	}

	if rep.Savings != nil && len(rep.Savings.Entries) > 0 {
		rows := make([][]string, 0, len(rep.Savings.Entries))
		for _, e := range rep.Savings.Entries {
			rows = append(rows, []string{
				e.Package.Name,
				e.Category.String(),
				bundle.FormatSize(e.Size),
				bundle.FormatSize(e.Savings),
				percentText(e.Utilization),
			})
		}
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "Savings")
		fmt.Fprintln(bw, plainTable("Package", "Category", "Size", "Savings", "Utilization").Rows(rows...).String())
	}

	if len(rep.Cycles) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "Cycles")
		for i, c := range rep.Cycles {
			fmt.Fprintf(bw, "  %d. %s\n", i+1, cyclePath(c))
		}
	}

	if len(rep.Conflicts) > 0 {
		rows := make([][]string, 0, len(rep.Conflicts))
		for _, c := range rep.Conflicts {
			rows = append(rows, []string{c.Package, fmt.Sprint(c.Ranges), plural(len(c.Requirements), "requirement")})
		}
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "Version conflicts")
		fmt.Fprintln(bw, plainTable("Package", "Ranges", "Declared").Rows(rows...).String())
	}
	return bw.Flush()
}

func plainTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
