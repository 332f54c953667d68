// Package report renders analysis results for people and machines.
//
// # Tabular Formats
//
// [Write] dispatches a [analysis.Report] to one of the document formats:
//
//   - [FormatText]: summary and savings tables for the terminal
//   - [FormatJSON]: the report itself, indented; re-readable with [ReadJSON]
//   - [FormatCSV]: one row per package, for spreadsheets
//   - [FormatMarkdown]: summary, savings, cycles and conflicts sections
//
// Unknown values (a package with no measured size, a utilization that
// could not be computed) are written as empty cells or "unknown", never
// as zero.
//
// # Graph Formats
//
// [FormatDOT] and [FormatSVG] need the graph itself, which a report does
// not carry. [ToDOT] converts an annotated [graph.Graph] to Graphviz DOT,
// drawing edges inside a dependency cycle in red and filling nodes by
// savings category. [RenderSVG] lays the DOT out with the embedded
// Graphviz (no system install needed):
//
//	dot := report.ToDOT(res.Graph, res.Cycles, report.DOTOptions{Sizes: true})
//	svg, err := report.RenderSVG(ctx, dot)
//
// [WriteGraph] does both and dispatches on format.
package report
