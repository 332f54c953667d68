package report

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/codescope/pkg/analysis"
	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/graph"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatDOT      Format = "dot"
	FormatSVG      Format = "svg"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown, FormatDOT, FormatSVG}

// ParseFormat parses a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "md":
		return FormatMarkdown, nil
	case "txt", "":
		return FormatText, nil
	default:
		if slices.Contains(Formats, f) {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// NeedsGraph reports whether f renders the dependency graph rather than a
// report.
func (f Format) NeedsGraph() bool { return f == FormatDOT || f == FormatSVG }

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatMarkdown:
		return ".md"
	}
	return "." + string(f)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "text/plain; charset=utf-8"
}

// Write renders rep to w in format f. Graph formats are rejected; use
// [WriteGraph] for those.
func Write(w io.Writer, rep *analysis.Report, f Format) error {
	switch f {
	case FormatText:
		return WriteText(w, rep)
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatCSV:
		return WriteCSV(w, rep)
	case FormatMarkdown:
		return WriteMarkdown(w, rep)
	case FormatDOT, FormatSVG:
		return errors.New(errors.ErrCodeUnsupported, "format %s needs the dependency graph", f)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
}

// WriteGraph renders g to w as DOT or SVG.
func WriteGraph(ctx context.Context, w io.Writer, g *graph.Graph, cycles []graph.Cycle, f Format, opts DOTOptions) error {
	dot := ToDOT(g, cycles, opts)
	switch f {
	case FormatDOT:
		_, err := io.WriteString(w, dot)
		return err
	case FormatSVG:
		svg, err := RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	}
	return errors.New(errors.ErrCodeUnsupported, "format %s is not a graph format", f)
}

// Render writes res in any format, building the report on demand for the
// document formats.
func Render(ctx context.Context, w io.Writer, res *analysis.Result, rep *analysis.Report, f Format, opts DOTOptions) error {
	if f.NeedsGraph() {
		if res == nil || res.Graph == nil {
			return fmt.Errorf("render %s: no graph", f)
		}
		return WriteGraph(ctx, w, res.Graph, res.Cycles, f, opts)
	}
	if rep == nil {
		rep = analysis.NewReport(res)
	}
	return Write(w, rep, f)
}
