package analysis

import (
	"context"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/codescope/pkg/savings"
)

// Member is the outcome for one workspace manifest.
type Member struct {
	Name   string
	Result *Result
	Err    error
}

// AnalyzeWorkspace analyzes every input concurrently, at most GOMAXPROCS
// at a time. Results are returned in input order. A member's error is
// recorded in its Member and never stops the others; the returned error
// is non-nil only for an invalid configuration or a cancelled context.
func AnalyzeWorkspace(ctx context.Context, inputs []Input, cfg savings.Config, logger *log.Logger) ([]Member, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	members := make([]Member, len(inputs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, in := range inputs {
		if in.Manifest != nil {
			members[i].Name = in.Manifest.Root.Name
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				members[i].Err = err
				return nil
			}
			res, err := Analyze(ctx, in, cfg, logger.With("member", members[i].Name))
			members[i].Result, members[i].Err = res, err
			if err != nil {
				logger.Warn("workspace member failed", "member", members[i].Name, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return members, ctx.Err()
}
