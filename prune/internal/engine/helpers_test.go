package engine

import (
	"fmt"

	"github.com/wippyai/rvsdg/ir"
)

// fixture is a single IfElse whose every output is projected into a root
// tuple.
type fixture struct {
	g        *ir.Graph
	ifelse   ir.TermID
	operands []ir.TermID
	outputs  []ir.TermID
}

// branch builds a RegionEnd over a fresh region with arity operands.
// layout[i] >= 0 forwards that operand; -1 computes a value.
func branch(g *ir.Graph, layout []int, arity int) ir.TermID {
	names := make([]string, arity)
	for j := range names {
		names[j] = fmt.Sprintf("x%d", j)
	}
	r := g.Region(names...)
	ports := make([]ir.Port, len(layout))
	for i, s := range layout {
		v := g.Apply(fmt.Sprintf("compute%d", i))
		if s >= 0 {
			v = g.Arg(r, s)
		}
		ports[i] = ir.Port{Name: fmt.Sprintf("p%d", i), Value: v}
	}
	return g.RegionEnd(r, ports)
}

func newFixture(then, orelse []int, operands int) *fixture {
	g := ir.New()
	f := &fixture{g: g}
	for j := 0; j < operands; j++ {
		f.operands = append(f.operands, g.Literal(int64(100+j)))
	}
	cond := g.Apply("cond")
	f.ifelse = g.IfElse(cond, branch(g, then, operands), branch(g, orelse, operands), f.operands)
	for i := range then {
		f.outputs = append(f.outputs, g.Unpack(f.ifelse, i))
	}
	g.AddRoot(g.Tuple(f.outputs...))
	return f
}
