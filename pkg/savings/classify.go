package savings

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/codescope/pkg/graph"
)

// Classifier applies the rule table with a validated configuration.
type Classifier struct {
	cfg   Config
	rules []Rule
}

// NewClassifier validates cfg and returns a classifier using [Rules].
func NewClassifier(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{cfg: cfg, rules: Rules()}, nil
}

// Evaluate returns the category and estimated savings for c. Unmatched
// candidates get CategoryNone and zero.
func (cl *Classifier) Evaluate(c Candidate) (graph.Category, int64) {
	for _, r := range cl.rules {
		if r.Match(c, &cl.cfg) {
			return r.Category, max(r.Estimate(c, &cl.cfg), 0)
		}
	}
	return graph.CategoryNone, 0
}

// Classify evaluates every node that has both a measured size and usage
// facts, writes the outcome onto the node and returns the aggregate report.
// Earlier classifications are cleared first.
func (cl *Classifier) Classify(g *graph.Graph) *Report {
	rep := newReport()
	for id, n := range g.All() {
		n.Category, n.Savings = graph.CategoryNone, 0
		if n.HasSize {
			rep.TotalSize += n.Size
		}
		if !n.HasSize || n.Usage == nil {
			continue
		}
		rep.Evaluated++

		c := Candidate{
			Name:           n.ID.Name,
			Size:           n.Size,
			Usage:          *n.Usage,
			Utilization:    n.Utilization,
			HasUtilization: n.HasUtilization,
		}
		if e, ok := g.EdgeBetween(graph.Root, id); ok {
			c.Declared = e.Relation
		}

		cat, saved := cl.Evaluate(c)
		if cat == graph.CategoryNone {
			continue
		}
		n.Category, n.Savings = cat, saved
		rep.add(cl.entry(n, cat, saved))
	}
	rep.sort()
	return rep
}

func (cl *Classifier) entry(n *graph.Node, cat graph.Category, saved int64) Entry {
	e := Entry{
		Package:  n.ID,
		Category: cat,
		Size:     n.Size,
		Savings:  saved,
	}
	if n.HasUtilization {
		u := n.Utilization
		e.Utilization = &u
	}
	switch cat {
	case graph.CategoryUnused:
		e.Suggestion = "Consider removing this unused dependency"
	case graph.CategoryHasAlternative:
		alt := cl.cfg.Alternatives[n.ID.Name]
		e.Alternative = &alt
		e.Suggestion = fmt.Sprintf("Consider replacing with %s", alt.Replacement)
	case graph.CategoryUnderutilized:
		e.Suggestion = fmt.Sprintf("Only %.1f%% of exports used - consider modular imports or a smaller package", n.Utilization*100)
	case graph.CategoryTreeShaking:
		e.Suggestion = "Good tree-shaking candidate - ensure the bundler drops unused exports"
	}
	return e
}

// Entry is one classified package in a report.
type Entry struct {
	Package     graph.PackageID `json:"package"`
	Category    graph.Category  `json:"category"`
	Size        int64           `json:"size"`
	Savings     int64           `json:"savings"`
	Utilization *float64        `json:"utilization,omitempty"`
	Alternative *Alternative    `json:"alternative,omitempty"`
	Suggestion  string          `json:"suggestion"`
}

// Report aggregates classification results.
type Report struct {
	Entries      []Entry                  `json:"entries"`
	Totals       map[graph.Category]int64 `json:"totals"`
	Counts       map[graph.Category]int   `json:"counts"`
	TotalSavings int64                    `json:"total_savings"`
	TotalSize    int64                    `json:"total_size"`
	Evaluated    int                      `json:"evaluated"`
}

func newReport() *Report {
	return &Report{
		Totals: make(map[graph.Category]int64),
		Counts: make(map[graph.Category]int),
	}
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
	r.Totals[e.Category] += e.Savings
	r.Counts[e.Category]++
	r.TotalSavings += e.Savings
}

// sort orders entries by savings, largest first, then by name.
func (r *Report) sort() {
	slices.SortFunc(r.Entries, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(b.Savings, a.Savings), cmp.Compare(a.Package.Name, b.Package.Name))
	})
}

// ByCategory returns the entries of one category in report order.
func (r *Report) ByCategory(c graph.Category) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// Percentage returns total savings as a percentage of the attributed
// bundle size, or 0 when nothing was attributed.
func (r *Report) Percentage() float64 {
	if r.TotalSize == 0 {
		return 0
	}
	return float64(r.TotalSavings) / float64(r.TotalSize) * 100
}

// Exceeds reports whether total savings are above limit. A non-positive
// limit never trips.
func (r *Report) Exceeds(limit int64) bool {
	return limit > 0 && r.TotalSavings > limit
}
