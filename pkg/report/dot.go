package report

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/graph"
)

// DOTOptions configures graph rendering.
type DOTOptions struct {
	// Sizes adds version, size and savings lines to node labels.
	// When false, only the package name is shown.
	Sizes bool

	// HideDev drops packages reachable only through dev or optional
	// declarations.
	HideDev bool
}

var categoryFill = map[graph.Category]string{
	graph.CategoryUnused:         "#fca5a5",
	graph.CategoryHasAlternative: "#fdba74",
	graph.CategoryUnderutilized:  "#fde68a",
	graph.CategoryTreeShaking:    "#bfdbfe",
}

const cycleColor = "#dc2626"

// ToDOT converts g to Graphviz DOT. Edges that lie inside one of cycles
// are drawn red; dev edges are dashed and optional edges dotted. Nodes are
// filled by savings category.
func ToDOT(g *graph.Graph, cycles []graph.Cycle, opts DOTOptions) string {
	membership := graph.CycleMembership(cycles)
	keep := func(id graph.NodeID) bool {
		if !opts.HideDev || id == graph.Root {
			return true
		}
		r := g.Node(id).Relation
		return r == graph.RelationProduction || r == graph.RelationPeer
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#6b7280\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for id, n := range g.All() {
		if !keep(id) {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, opts.Sizes))}
		if fill, ok := categoryFill[n.Category]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		}
		if id == graph.Root {
			attrs = append(attrs, "penwidth=2")
		}
		if _, ok := membership[id]; ok {
			attrs = append(attrs, fmt.Sprintf("color=%q", cycleColor))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for e := range g.Edges() {
		if !keep(e.From) || !keep(e.To) {
			continue
		}
		var attrs []string
		switch e.Relation {
		case graph.RelationDev:
			attrs = append(attrs, "style=dashed")
		case graph.RelationOptional:
			attrs = append(attrs, "style=dotted")
		case graph.RelationPeer:
			attrs = append(attrs, "arrowhead=empty")
		}
		if graph.InCycle(membership, e.From, e.To) {
			attrs = append(attrs, fmt.Sprintf("color=%q", cycleColor), "penwidth=2")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", g.Name(e.From), g.Name(e.To))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", g.Name(e.From), g.Name(e.To), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n *graph.Node, sizes bool) string {
	if !sizes {
		return n.ID.Name
	}
	lines := []string{n.ID.Name}
	if n.ID.Version != "" {
		lines = append(lines, n.ID.Version)
	}
	if n.HasSize {
		lines = append(lines, bundle.FormatSize(n.Size))
	}
	if n.Savings > 0 {
		lines = append(lines, "-"+bundle.FormatSize(n.Savings))
	}
	return strings.Join(lines, "\n")
}

// RenderSVG lays out a DOT graph and renders it to SVG with the embedded
// Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag with one whose viewBox starts
// at the origin and whose width and height match it, so the image scales
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
