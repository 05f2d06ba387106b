package prune

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/rvsdg/errors"
	"github.com/wippyai/rvsdg/ir"
	"github.com/wippyai/rvsdg/prune/internal/analysis"
	"github.com/wippyai/rvsdg/prune/internal/engine"
)

// DefaultMaxRounds bounds Fixpoint when Config.MaxRounds is zero.
const DefaultMaxRounds = 64

// Mapping records that output port Out of a branch forwards the branch
// region's operand Src unchanged.
type Mapping = analysis.Mapping

// SkipReason explains why an IfElse occurrence was left unchanged.
type SkipReason = analysis.SkipReason

// Skip reasons reported in Occurrence.Skip.
const (
	SkipNone            = analysis.SkipNone
	SkipNotRegionEnd    = analysis.SkipNotRegionEnd
	SkipOpaqueUse       = analysis.SkipOpaqueUse
	SkipNoPassthrough   = analysis.SkipNoPassthrough
	SkipProjectionRange = analysis.SkipProjectionRange
)

// Config configures the pruning pass.
type Config struct {
	Logger *zap.Logger
	// Workers bounds concurrent occurrence analysis. Zero means
	// runtime.GOMAXPROCS(0); one analyzes sequentially.
	Workers int
	// MaxRounds bounds Fixpoint. Zero means DefaultMaxRounds.
	MaxRounds int
	// ParallelBranches scans the two branches of an occurrence concurrently.
	ParallelBranches bool
}

// Occurrence is the analysis record of one IfElse in one round.
type Occurrence struct {
	// Then and Else are the passthrough mappings of each branch; Common
	// is their exact intersection.
	Then   []Mapping
	Else   []Mapping
	Common []Mapping
	// Eliminated lists the removed output indices in original numbering.
	Eliminated []int
	Skip       SkipReason
	Round      int
	IfElse     ir.TermID
	// Replacement is the rebuilt IfElse, or ir.NoTerm when skipped.
	Replacement ir.TermID
	Redirected  int
	Shifted     int
}

// Rewritten reports whether the occurrence was replaced.
func (o *Occurrence) Rewritten() bool {
	return o.Replacement != ir.NoTerm
}

// Result summarizes a pass.
type Result struct {
	Occurrences []Occurrence
	Rounds      int
	// Rewritten counts replaced IfElse terms.
	Rewritten int
	Skipped   int
	// Eliminated counts removed output ports over all occurrences.
	Eliminated int
	// Redirected counts projections now reading an operand directly.
	Redirected int
}

// Run prunes common passthrough outputs of every IfElse reachable from
// the roots of g, in a single round.
//
// All occurrences are analyzed against the graph as it is on entry;
// rewrites are then published through g.Union. A passthrough exposed by
// another occurrence's rewrite is left for the next call, see Fixpoint.
// Run returns an error only for a nil graph or a cancelled context; in the
// latter case the occurrences rewritten before cancellation are reported.
func Run(ctx context.Context, g *ir.Graph, cfg Config) (*Result, error) {
	if g == nil {
		return nil, errors.InvalidInput(errors.PhaseTransform, "graph is nil")
	}
	res := &Result{}
	_, err := round(ctx, g, newEngine(cfg), res)
	return res, err
}

// Fixpoint runs rounds until one rewrites nothing or MaxRounds is reached.
// This picks up passthroughs created by earlier rewrites, such as an inner
// IfElse whose redirected output makes an enclosing branch a passthrough.
func Fixpoint(ctx context.Context, g *ir.Graph, cfg Config) (*Result, error) {
	if g == nil {
		return nil, errors.InvalidInput(errors.PhaseTransform, "graph is nil")
	}
	limit := cfg.MaxRounds
	if limit <= 0 {
		limit = DefaultMaxRounds
	}
	eng := newEngine(cfg)
	res := &Result{}
	for res.Rounds < limit {
		changed, err := round(ctx, g, eng, res)
		if err != nil {
			return res, err
		}
		if !changed {
			return res, nil
		}
	}
	loggerFor(cfg).Warn("fixpoint round limit reached", zap.Int("rounds", limit))
	return res, nil
}

func newEngine(cfg Config) *engine.Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return engine.New(engine.Config{
		Logger:           cfg.Logger,
		Workers:          workers,
		ParallelBranches: cfg.ParallelBranches,
	})
}

func loggerFor(cfg Config) *zap.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return Logger()
}

// round runs one engine round and folds it into res. It reports whether
// any occurrence was rewritten.
func round(ctx context.Context, g *ir.Graph, eng *engine.Engine, res *Result) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.Cancelled(err)
	}
	res.Rounds++
	outcomes, err := eng.Round(ctx, g)
	changed := false
	for _, o := range outcomes {
		occ := record(res.Rounds, o)
		if occ.Rewritten() {
			changed = true
			res.Rewritten++
			res.Eliminated += len(occ.Eliminated)
			res.Redirected += occ.Redirected
		} else {
			res.Skipped++
		}
		res.Occurrences = append(res.Occurrences, occ)
	}
	if err != nil {
		if ctx.Err() != nil {
			return changed, errors.Cancelled(err)
		}
		return changed, errors.Wrap(errors.PhaseTransform, errors.KindInvalidInput, err, fmt.Sprintf("round %d", res.Rounds))
	}
	return changed, nil
}

func record(n int, o engine.Outcome) Occurrence {
	p := o.Plan
	occ := Occurrence{
		Round:       n,
		IfElse:      p.IfElse,
		Replacement: o.Replacement,
		Skip:        p.Skip,
		Then:        p.ThenMappings.Sorted(),
		Else:        p.ElseMappings.Sorted(),
		Common:      p.Common.Sorted(),
	}
	if o.Applied() {
		occ.Eliminated = p.Mask.Eliminated()
		occ.Redirected = len(p.Redirects)
		occ.Shifted = len(p.Shifts)
	}
	return occ
}
