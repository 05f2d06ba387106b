package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/rvsdg/ir"
	"github.com/wippyai/rvsdg/prune/internal/analysis"
)

// Config configures the pruning engine.
type Config struct {
	Registry *Registry
	Logger   *zap.Logger
	// Workers bounds how many occurrences are analyzed concurrently.
	// Values below 2 analyze on the calling goroutine.
	Workers          int
	ParallelBranches bool
}

// Engine runs pruning rounds over a graph.
//
// The engine is stateless between rounds. Each round takes a fresh
// snapshot of the graph's uses.
type Engine struct {
	registry         *Registry
	logger           *zap.Logger
	workers          int
	parallelBranches bool
}

// New creates an engine with the given config.
func New(cfg Config) *Engine {
	reg := cfg.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	return &Engine{
		registry:         reg,
		logger:           log,
		workers:          cfg.Workers,
		parallelBranches: cfg.ParallelBranches,
	}
}

// Outcome is the result of one occurrence in a round.
type Outcome struct {
	Plan *analysis.Plan
	// Replacement is the rebuilt IfElse, or ir.NoTerm when the occurrence
	// was skipped.
	Replacement ir.TermID
}

// Applied reports whether the occurrence was rewritten.
func (o Outcome) Applied() bool {
	return o.Replacement != ir.NoTerm
}

// Round analyzes every reachable IfElse and then applies the resulting
// plans in occurrence order, innermost first. On cancellation it returns
// the outcomes applied so far together with the context's error; every
// returned outcome was applied whole.
func (e *Engine) Round(ctx context.Context, g *ir.Graph) ([]Outcome, error) {
	plans, err := e.Analyze(ctx, g)
	if err != nil {
		return nil, err
	}
	out := make([]Outcome, 0, len(plans))
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, Outcome{Plan: p, Replacement: e.Apply(g, p)})
	}
	return out, nil
}

// Analyze builds one plan per reachable IfElse against the graph as it is
// now. The graph is only read, so plans may be computed concurrently.
func (e *Engine) Analyze(ctx context.Context, g *ir.Graph) ([]*analysis.Plan, error) {
	occurrences := g.IfElses()
	uses := ir.BuildUses(g)
	plans := make([]*analysis.Plan, len(occurrences))

	analyze := func(i int) error {
		st := &State{
			Graph:            g,
			Uses:             uses,
			Plan:             analysis.NewPlan(g, occurrences[i]),
			Logger:           e.logger,
			ParallelBranches: e.parallelBranches,
		}
		if err := e.registry.run(st); err != nil {
			return err
		}
		plans[i] = st.Plan
		return nil
	}

	if e.workers < 2 || len(occurrences) < 2 {
		for i := range occurrences {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := analyze(i); err != nil {
				return nil, err
			}
		}
		return plans, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	jobs := make(chan int)
	for range min(e.workers, len(occurrences)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := analyze(i); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
feed:
	for i := range occurrences {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return plans, nil
}

// Apply publishes a plan: it builds the pruned branches and the rebuilt
// IfElse, redirects projections of eliminated outputs to their operands,
// and moves projections of surviving outputs to their compacted index.
// It returns the rebuilt IfElse, or ir.NoTerm if the plan was skipped or
// its IfElse has since been replaced.
func (e *Engine) Apply(g *ir.Graph, p *analysis.Plan) ir.TermID {
	if p.Skipped() {
		return ir.NoTerm
	}
	if g.Find(p.IfElse) != p.IfElse {
		e.logger.Debug("ifelse replaced before apply", zap.Int("ifelse", int(p.IfElse)))
		return ir.NoTerm
	}

	then := g.RegionEnd(p.Then.Region, p.ThenPorts)
	orelse := g.RegionEnd(p.Else.Region, p.ElsePorts)
	replacement := g.IfElse(p.Cond, then, orelse, p.Operands)

	for _, r := range p.Redirects {
		g.Union(r.Projection, r.Operand)
	}
	for _, s := range p.Shifts {
		g.Union(s.Projection, g.Unpack(replacement, s.To))
	}

	e.logger.Debug("ifelse pruned",
		zap.Int("ifelse", int(p.IfElse)),
		zap.Int("replacement", int(replacement)),
		zap.Ints("eliminated", p.Mask.Eliminated()),
		zap.Int("redirected", len(p.Redirects)))
	return replacement
}
