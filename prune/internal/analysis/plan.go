package analysis

import "github.com/wippyai/rvsdg/ir"

// SkipReason explains why an IfElse occurrence is left unchanged.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipNotRegionEnd    SkipReason = "branch-not-region-end"
	SkipOpaqueUse       SkipReason = "opaque-use"
	SkipNoPassthrough   SkipReason = "no-common-passthrough"
	// SkipProjectionRange marks an IfElse projected at an index outside
	// its branch port lists.
	SkipProjectionRange SkipReason = "projection-out-of-range"
)

// Plan carries everything computed for one IfElse occurrence. Each field
// is filled by one step and read by the steps after it; a Plan is never
// shared between occurrences.
type Plan struct {
	Then         Branch
	Else         Branch
	ThenMappings MappingSet
	ElseMappings MappingSet
	Common       MappingSet
	Mask         *Mask
	Projections  map[int][]ir.TermID
	Operands     []ir.TermID
	ThenPorts    []ir.Port
	ElsePorts    []ir.Port
	Redirects    []Redirect
	Shifts       []Shift
	Skip         SkipReason
	IfElse       ir.TermID
	Cond         ir.TermID
}

// NewPlan seeds a plan for the canonical IfElse id.
func NewPlan(g *ir.Graph, id ir.TermID) *Plan {
	t := g.Term(id)
	return &Plan{
		IfElse:   id,
		Cond:     t.Cond(),
		Operands: t.Operands(),
	}
}

// Skipped reports whether the occurrence stopped before producing rewrites.
func (p *Plan) Skipped() bool {
	return p.Skip != SkipNone
}

// PortCount returns the output count the mask must cover: the longer of
// the two branch port lists.
func (p *Plan) PortCount() int {
	return max(len(p.Then.Ports), len(p.Else.Ports))
}
