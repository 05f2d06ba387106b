package analysis

import "github.com/wippyai/rvsdg/ir"

// Branch is one arm of an IfElse: the RegionEnd closing it, the region it
// closes, and the region's output ports.
type Branch struct {
	Ports  []ir.Port
	End    ir.TermID
	Region ir.TermID
}

// BranchOf matches id against RegionEnd(region, ports).
func BranchOf(g *ir.Graph, id ir.TermID) (Branch, bool) {
	end := g.Find(id)
	t := g.Term(end)
	if t.Kind != ir.KindRegionEnd {
		return Branch{}, false
	}
	region := g.Find(t.Region())
	if g.Term(region).Kind != ir.KindRegion {
		return Branch{}, false
	}
	return Branch{End: end, Region: region, Ports: t.Ports}, true
}

// Detect returns every passthrough mapping of a branch: (i, j) for each
// port i whose value is operand j of the branch region. Ports holding a
// computed value contribute nothing; several ports may forward the same
// operand. The scan covers all ports, so the result is always complete.
func Detect(g *ir.Graph, b Branch) MappingSet {
	set := NewMappingSet()
	arity := g.Term(b.Region).Arity()
	for i, p := range b.Ports {
		if j, ok := operandIndex(g, b.Region, p.Value, arity); ok {
			set.Add(Mapping{Out: i, Src: j})
		}
	}
	return set
}

// operandIndex reports which operand of region v is, if any.
func operandIndex(g *ir.Graph, region, v ir.TermID, arity int) (int, bool) {
	t := g.Term(g.Find(v))
	if t.Kind != ir.KindUnpack || g.Find(t.Source()) != region {
		return 0, false
	}
	j := t.Index()
	if j < 0 || j >= arity {
		return 0, false
	}
	return j, true
}
