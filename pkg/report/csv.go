package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/matzehuels/codescope/pkg/analysis"
)

var csvHeader = []string{
	"name", "version", "relation", "depth", "direct", "in_cycle",
	"size", "transitive_size", "modules", "files", "utilization",
	"possibly_unused", "category", "savings",
}

// WriteCSV writes one row per package. Unknown numbers are empty cells.
func WriteCSV(w io.Writer, rep *analysis.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range rep.Packages {
		rec := []string{
			p.Name,
			p.Version,
			p.Relation.String(),
			strconv.Itoa(p.Depth),
			strconv.FormatBool(p.Direct),
			strconv.FormatBool(p.InCycle),
			optInt(p.Size),
			optInt(p.TransitiveSize),
			strconv.Itoa(p.Modules),
			optInt(p.Files),
			optFloat(p.Utilization),
			strconv.FormatBool(p.PossiblyUnused),
			categoryCell(p),
			strconv.FormatInt(p.Savings, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func optInt[T int | int64](v *T) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(int64(*v), 10)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}

func categoryCell(p analysis.PackageRow) string {
	if p.Category == 0 {
		return ""
	}
	return p.Category.String()
}
