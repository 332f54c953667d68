package analysis

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/codescope/pkg/bundle"
	"github.com/matzehuels/codescope/pkg/errors"
	"github.com/matzehuels/codescope/pkg/graph"
	"github.com/matzehuels/codescope/pkg/observability"
	"github.com/matzehuels/codescope/pkg/savings"
	"github.com/matzehuels/codescope/pkg/usage"
)

const kb = 1024

var quiet = log.New(io.Discard)

func fixture() Input {
	return Input{
		Manifest: &graph.Manifest{
			Root: graph.PackageID{Name: "app", Version: "1.0.0"},
			Production: []graph.Declaration{
				{Name: "left-pad", Version: "^1.3.0"},
				{Name: "moment", Version: "^2.29.0"},
				{Name: "date-fns", Version: "^3.0.0"},
				{Name: "react", Version: "^18.0.0"},
			},
			Packages: map[string]*graph.Manifest{
				"react":        {Production: []graph.Declaration{{Name: "loose-envify", Version: "^1.1.0"}}},
				"loose-envify": {Production: []graph.Declaration{{Name: "js-tokens", Version: "^4.0.0"}}},
				"js-tokens":    {Production: []graph.Declaration{{Name: "loose-envify", Version: "^1.0.0"}}},
			},
		},
		Sizes: bundle.SizeTable{
			{Path: "./node_modules/left-pad/index.js", Size: 300 * kb},
			{Path: "./node_modules/moment/moment.js", Size: 67 * kb},
			{Path: "./node_modules/date-fns/index.js", Size: 100 * kb},
			{Path: "./node_modules/react/index.js", Size: 10 * kb},
			{Path: "./src/index.js", Size: 5 * kb},
		},
		Usage: []usage.Record{
			{File: "src/a.ts", Package: "moment", Kind: usage.KindDefault},
			{File: "src/a.ts", Package: "date-fns", Kind: usage.KindNamed, Export: "format"},
			{File: "src/a.ts", Package: "date-fns", Kind: usage.KindNamed, Export: "addDays"},
			{File: "src/a.ts", Package: "react", Kind: usage.KindDefault},
			{File: "src/b.ts", Package: "react", Kind: usage.KindDefault},
		},
		Exports: usage.ExportCounts{"date-fns": 20},
	}
}

func TestAnalyze(t *testing.T) {
	res, err := Analyze(context.Background(), fixture(), savings.DefaultConfig(), quiet)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Stats.Nodes != 7 {
		t.Errorf("Nodes = %d, want 7", res.Stats.Nodes)
	}
	if len(res.Cycles) != 1 {
		t.Fatalf("Cycles = %d, want 1", len(res.Cycles))
	}
	if got := res.Cycles[0].Names(res.Graph); !slices.Equal(got, []string{"loose-envify", "js-tokens"}) {
		t.Errorf("cycle = %v", got)
	}
	if res.Attribution == nil || len(res.Attribution.Mismatches) != 1 {
		t.Errorf("attribution = %+v", res.Attribution)
	}
	if res.Usage == nil || !slices.Equal(res.Usage.PossiblyUnused, []string{"left-pad"}) {
		t.Errorf("usage = %+v", res.Usage)
	}

	s := res.Savings
	if s.TotalSavings != 455*kb || s.TotalSize != 477*kb {
		t.Errorf("savings = %d of %d", s.TotalSavings, s.TotalSize)
	}
	want := map[string]graph.Category{
		"left-pad": graph.CategoryUnused,
		"date-fns": graph.CategoryUnderutilized,
		"moment":   graph.CategoryHasAlternative,
		"react":    graph.CategoryNone,
	}
	for name, cat := range want {
		id, _ := res.Graph.Lookup(name)
		if got := res.Graph.Node(id).Category; got != cat {
			t.Errorf("%s category = %s, want %s", name, got, cat)
		}
	}
	for _, stage := range []string{StageBuild, StageCycles, StageAttribute, StageUsage, StageClassify} {
		if _, ok := res.Stats.Stages[stage]; !ok {
			t.Errorf("stage %s not timed", stage)
		}
	}
}

func TestAnalyzeWithoutOptionalInputs(t *testing.T) {
	in := fixture()
	in.Sizes, in.Usage, in.Exports = nil, nil, nil
	res, err := Analyze(context.Background(), in, savings.DefaultConfig(), quiet)
	if err != nil {
		t.Fatal(err)
	}
	if res.Attribution != nil || res.Usage != nil {
		t.Error("skipped stages should leave their results nil")
	}
	if res.Savings.Evaluated != 0 || len(res.Savings.Entries) != 0 {
		t.Errorf("savings = %+v", res.Savings)
	}
	for _, n := range res.Graph.All() {
		if n.HasSize || n.Usage != nil {
			t.Errorf("%s has annotations without inputs", n.ID.Name)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		cfg := savings.DefaultConfig()
		cfg.UnderutilizedThreshold = 0.9
		_, err := Analyze(context.Background(), fixture(), cfg, quiet)
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("err = %v", err)
		}
	})
	t.Run("manifest", func(t *testing.T) {
		in := fixture()
		in.Manifest.Dev = []graph.Declaration{{Name: "Not A Name", Version: "1"}}
		_, err := Analyze(context.Background(), in, savings.DefaultConfig(), quiet)
		if !errors.Is(err, errors.ErrCodeInvalidManifest) {
			t.Errorf("err = %v", err)
		}
	})
}

type recordingHooks struct {
	observability.NoopAnalysisHooks
	mu     sync.Mutex
	stages []string
	done   int
}

func (h *recordingHooks) OnStageStart(_ context.Context, stage string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, stage)
}

func (h *recordingHooks) OnAnalysisComplete(context.Context, string, observability.AnalysisSummary, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done++
}

func TestAnalyzeStageOrder(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetAnalysisHooks(hooks)
	t.Cleanup(observability.Reset)

	if _, err := Analyze(context.Background(), fixture(), savings.DefaultConfig(), quiet); err != nil {
		t.Fatal(err)
	}
	want := []string{StageBuild, StageCycles, StageAttribute, StageUsage, StageClassify}
	if !slices.Equal(hooks.stages, want) {
		t.Errorf("stages = %v, want %v", hooks.stages, want)
	}
	if hooks.done != 1 {
		t.Errorf("OnAnalysisComplete called %d times", hooks.done)
	}
}

func TestNewReport(t *testing.T) {
	res, err := Analyze(context.Background(), fixture(), savings.DefaultConfig(), quiet)
	if err != nil {
		t.Fatal(err)
	}
	rep := NewReport(res)

	if rep.ID == "" || rep.Root.Name != "app" {
		t.Errorf("header = %q %+v", rep.ID, rep.Root)
	}
	if rep.Summary.Packages != 6 || rep.Summary.Direct != 4 || rep.Summary.Cycles != 1 {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if len(rep.Packages) != 6 {
		t.Fatalf("rows = %d", len(rep.Packages))
	}

	react, _ := rep.Package("react")
	if react.Size == nil || *react.Size != 10*kb || react.TransitiveSize == nil || *react.TransitiveSize != 10*kb {
		t.Errorf("react row = %+v", react)
	}
	if react.Files == nil || *react.Files != 2 || react.Utilization != nil {
		t.Errorf("react usage = files %v, utilization %v", react.Files, react.Utilization)
	}
	tokens, _ := rep.Package("js-tokens")
	if !tokens.InCycle || tokens.Size != nil || tokens.Direct {
		t.Errorf("js-tokens row = %+v", tokens)
	}
	pad, _ := rep.Package("left-pad")
	if pad.Category != graph.CategoryUnused || !pad.PossiblyUnused {
		t.Errorf("left-pad row = %+v", pad)
	}
	if rep.Attribution == nil || rep.Attribution.Mismatches[0].Module != "./src/index.js" {
		t.Errorf("attribution = %+v", rep.Attribution)
	}
}

func TestReportJSONRoundTrip(t *testing.T) {
	res, err := Analyze(context.Background(), fixture(), savings.DefaultConfig(), quiet)
	if err != nil {
		t.Fatal(err)
	}
	rep := NewReport(res)
	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatal(err)
	}
	var back Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Savings.Totals[graph.CategoryUnused] != 300*kb {
		t.Errorf("totals = %v", back.Savings.Totals)
	}
	if p, _ := back.Package("moment"); p.Category != graph.CategoryHasAlternative || p.Relation != graph.RelationProduction {
		t.Errorf("moment = %+v", p)
	}
}
