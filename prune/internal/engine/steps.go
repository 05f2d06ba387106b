package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/rvsdg/prune/internal/analysis"
)

// Step names of the default registry, in execution order.
const (
	StepMatch    = "match"
	StepDetect   = "detect"
	StepResolve  = "resolve"
	StepMask     = "mask"
	StepPrune    = "prune"
	StepRedirect = "redirect"
)

// DefaultRegistry returns the registry holding the six pruning steps.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterFunc(StepMatch, matchStep)
	r.RegisterFunc(StepDetect, detectStep)
	r.RegisterFunc(StepResolve, resolveStep)
	r.RegisterFunc(StepMask, maskStep)
	r.RegisterFunc(StepPrune, pruneStep)
	r.RegisterFunc(StepRedirect, redirectStep)
	return r
}

func outOfOrder(missing string) error {
	return fmt.Errorf("%s not computed by an earlier step", missing)
}

// matchStep requires both branches to be RegionEnd terms and every user
// of the IfElse to be a projection of an existing output.
func matchStep(s *State) error {
	p := s.Plan
	t := s.Graph.Term(p.IfElse)

	then, ok := analysis.BranchOf(s.Graph, t.Then())
	if !ok {
		p.Skip = analysis.SkipNotRegionEnd
		return nil
	}
	orelse, ok := analysis.BranchOf(s.Graph, t.Else())
	if !ok {
		p.Skip = analysis.SkipNotRegionEnd
		return nil
	}
	p.Then, p.Else = then, orelse

	if opaque := s.Uses.OpaqueUsers(p.IfElse); len(opaque) > 0 {
		s.Logger.Debug("ifelse has non-projection users",
			zap.Int("ifelse", int(p.IfElse)),
			zap.Int("users", len(opaque)))
		p.Skip = analysis.SkipOpaqueUse
		return nil
	}
	p.Projections = s.Uses.Projections(p.IfElse)
	for idx := range p.Projections {
		if idx < 0 || idx >= p.PortCount() {
			s.Logger.Debug("ifelse projected outside its ports",
				zap.Int("ifelse", int(p.IfElse)),
				zap.Int("index", idx),
				zap.Int("ports", p.PortCount()))
			p.Skip = analysis.SkipProjectionRange
			return nil
		}
	}
	return nil
}

func detectStep(s *State) error {
	p := s.Plan
	if p.Projections == nil {
		return outOfOrder("branches")
	}
	if !s.ParallelBranches {
		p.ThenMappings = analysis.Detect(s.Graph, p.Then)
		p.ElseMappings = analysis.Detect(s.Graph, p.Else)
		return nil
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.ThenMappings = analysis.Detect(s.Graph, p.Then)
	}()
	p.ElseMappings = analysis.Detect(s.Graph, p.Else)
	wg.Wait()
	return nil
}

func resolveStep(s *State) error {
	p := s.Plan
	if p.ThenMappings == nil || p.ElseMappings == nil {
		return outOfOrder("branch mappings")
	}
	p.Common = analysis.Resolve(p.ThenMappings, p.ElseMappings, len(p.Operands))
	if p.Common.Len() == 0 {
		p.Skip = analysis.SkipNoPassthrough
	}
	return nil
}

func maskStep(s *State) error {
	p := s.Plan
	if p.Common == nil {
		return outOfOrder("common mappings")
	}
	p.Mask = analysis.NewMask(p.Common, p.PortCount())
	return nil
}

func pruneStep(s *State) error {
	p := s.Plan
	if p.Mask == nil {
		return outOfOrder("mask")
	}
	p.ThenPorts = analysis.PrunePorts(p.Then.Ports, p.Mask)
	p.ElsePorts = analysis.PrunePorts(p.Else.Ports, p.Mask)
	return nil
}

func redirectStep(s *State) error {
	p := s.Plan
	if p.Mask == nil || p.ThenPorts == nil || p.ElsePorts == nil {
		return outOfOrder("pruned ports")
	}
	p.Redirects = analysis.Redirects(p.Projections, p.Operands, p.Common)
	p.Shifts = analysis.Shifts(p.Projections, p.Mask)
	return nil
}
