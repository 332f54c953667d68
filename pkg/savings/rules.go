// Package savings classifies annotated graph nodes into savings
// categories and estimates the bytes each could save.
//
// Classification is an ordered rule table. Each [Rule] pairs a predicate
// with an estimator; the first rule whose predicate matches decides the
// category, and a node that matches no rule stays uncategorized:
//
//  1. Unused: declared production or dev, no referencing files, not a
//     side-effect import. Saves the full size.
//  2. HasAlternative: listed in the alternatives table, regardless of
//     usage. Saves the size minus the replacement's assumed size.
//  3. Underutilized: utilization below UnderutilizedThreshold. Saves
//     floor(size * (1 - u)).
//  4. TreeShaking: utilization below TreeShakingThreshold with named
//     imports only. Saves floor(size * (1 - u) * TreeShakingFactor).
//
// Estimates never go below zero, and for any utilization the tree-shaking
// estimate does not exceed the underutilized one.
package savings

import (
	"math"

	"github.com/matzehuels/codescope/pkg/graph"
)

// Candidate is the classifier's view of one sized, usage-annotated node.
type Candidate struct {
	Name string
	Size int64

	// Declared is the relation under which the root declares the package,
	// or RelationNone for transitive packages.
	Declared graph.Relation

	Usage          graph.UsageFacts
	Utilization    float64
	HasUtilization bool
}

// Rule is one row of the classification table.
type Rule struct {
	Category graph.Category
	Match    func(c Candidate, cfg *Config) bool
	Estimate func(c Candidate, cfg *Config) int64
}

// Rules returns the classification table in priority order.
func Rules() []Rule {
	return []Rule{
		{Category: graph.CategoryUnused, Match: matchUnused, Estimate: estimateUnused},
		{Category: graph.CategoryHasAlternative, Match: matchAlternative, Estimate: estimateAlternative},
		{Category: graph.CategoryUnderutilized, Match: matchUnderutilized, Estimate: estimateUnderutilized},
		{Category: graph.CategoryTreeShaking, Match: matchTreeShaking, Estimate: estimateTreeShaking},
	}
}

// matchUnused only considers Production and Dev declarations. Peer and
// optional packages are supplied or skipped by the host, so an unimported
// one is not removable by the project.
func matchUnused(c Candidate, _ *Config) bool {
	declared := c.Declared == graph.RelationProduction || c.Declared == graph.RelationDev
	return declared && c.Usage.Files == 0 && !c.Usage.SideEffectOnly()
}

func estimateUnused(c Candidate, _ *Config) int64 { return c.Size }

func matchAlternative(c Candidate, cfg *Config) bool {
	_, ok := cfg.Alternatives[c.Name]
	return ok
}

func estimateAlternative(c Candidate, cfg *Config) int64 {
	return c.Size - cfg.replacementBytes(cfg.Alternatives[c.Name])
}

func matchUnderutilized(c Candidate, cfg *Config) bool {
	return c.HasUtilization && c.Utilization < cfg.UnderutilizedThreshold
}

func estimateUnderutilized(c Candidate, _ *Config) int64 {
	return int64(math.Floor(float64(c.Size) * (1 - c.Utilization)))
}

func matchTreeShaking(c Candidate, cfg *Config) bool {
	return c.HasUtilization &&
		c.Utilization >= cfg.UnderutilizedThreshold &&
		c.Utilization < cfg.TreeShakingThreshold &&
		c.Usage.NamedOnly()
}

func estimateTreeShaking(c Candidate, cfg *Config) int64 {
	return int64(math.Floor(float64(c.Size) * (1 - c.Utilization) * cfg.TreeShakingFactor))
}
