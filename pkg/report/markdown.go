package report

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/bundle"
)

// WriteMarkdown renders rep as a Markdown document with summary, savings,
// cycle and conflict sections.
func WriteMarkdown(w io.Writer, rep *analysis.Report) error {
	bw := bufio.NewWriter(w)
	s := rep.Summary

	fmt.Fprintf(bw, "# Dependency report: %s\n\n", mdEscape(rep.Root.String()))
	fmt.Fprintf(bw, "- Packages: %d (%d direct)\n", s.Packages, s.Direct)
	fmt.Fprintf(bw, "- Edges: %d\n", s.Edges)
	fmt.Fprintf(bw, "- Max depth: %d\n", s.MaxDepth)
	fmt.Fprintf(bw, "- Cycles: %d\n", s.Cycles)
	fmt.Fprintf(bw, "- Version conflicts: %d\n", s.Conflicts)
	if rep.Savings != nil {
		fmt.Fprintf(bw, "- Bundle size: %s\n", bundle.FormatSize(s.TotalSize))
		fmt.Fprintf(bw, "- Potential savings: %s (%.1f%%)\n", bundle.FormatSize(s.TotalSavings), s.SavingsPercent)
	}
	if a := rep.Attribution; a != nil {
		fmt.Fprintf(bw, "- Bundle match: %.1f%% (%d matched, %d missing, %d extra)\n",
			a.MatchPercentage, len(a.Matched), len(a.Missing), len(a.Extra))
	}

	bw.WriteString("\n## Savings\n\n")
	if rep.Savings == nil || len(rep.Savings.Entries) == 0 {
		bw.WriteString("_No savings opportunities found._\n")
	} else {
		bw.WriteString("| Package | Category | Size | Savings | Suggestion |\n")
		bw.WriteString("|---|---|---:|---:|---|\n")
		for _, e := range rep.Savings.Entries {
			fmt.Fprintf(bw, "| %s | %s | %s | %s | %s |\n",
				mdEscape(e.Package.Name), e.Category, bundle.FormatSize(e.Size),
				bundle.FormatSize(e.Savings), mdEscape(e.Suggestion))
		}
	}

	bw.WriteString("\n## Cycles\n\n")
	if len(rep.Cycles) == 0 {
		bw.WriteString("_No dependency cycles._\n")
	} else {
		for i, c := range rep.Cycles {
			fmt.Fprintf(bw, "%d. `%s`\n", i+1, cyclePath(c))
		}
	}

	bw.WriteString("\n## Version conflicts\n\n")
	if len(rep.Conflicts) == 0 {
		bw.WriteString("_No version conflicts._\n")
	} else {
		bw.WriteString("| Package | Ranges | Required by |\n")
		bw.WriteString("|---|---|---|\n")
		for _, c := range rep.Conflicts {
			by := make([]string, len(c.Requirements))
			for i, r := range c.Requirements {
				by[i] = fmt.Sprintf("%s (%s)", r.RequiredBy, r.Range)
			}
			fmt.Fprintf(bw, "| %s | %s | %s |\n",
				mdEscape(c.Package), mdEscape(strings.Join(c.Ranges, ", ")), mdEscape(strings.Join(by, ", ")))
		}
	}

	if u := rep.Usage; u != nil && len(u.Undeclared) > 0 {
		bw.WriteString("\n## Undeclared imports\n\n")
		for _, name := range u.Undeclared {
			fmt.Fprintf(bw, "- `%s`\n", name)
		}
	}
	return bw.Flush()
}

func cyclePath(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(append(slices.Clip(names), names[0]), " -> ")
}

var mdReplacer = strings.NewReplacer("|", `\|`, "\n", " ")

func mdEscape(s string) string { return mdReplacer.Replace(s) }
