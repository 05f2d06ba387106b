package analysis

import (
	"fmt"

	"github.com/wippyai/rvsdg/ir"
)

// newBranch builds a RegionEnd over a fresh region with arity operands.
// layout[i] >= 0 forwards that operand; -1 computes a value.
func newBranch(g *ir.Graph, layout []int, arity int) Branch {
	names := make([]string, arity)
	for j := range names {
		names[j] = fmt.Sprintf("x%d", j)
	}
	r := g.Region(names...)
	ports := make([]ir.Port, len(layout))
	for i, s := range layout {
		v := g.Apply("compute", g.Literal(int64(i)))
		if s >= 0 {
			v = g.Arg(r, s)
		}
		ports[i] = ir.Port{Name: fmt.Sprintf("p%d", i), Value: v}
	}
	end := g.RegionEnd(r, ports)
	b, ok := BranchOf(g, end)
	if !ok {
		panic("newBranch: not a region end")
	}
	return b
}

func ports(n int) []ir.Port {
	out := make([]ir.Port, n)
	for i := range out {
		out[i] = ir.Port{Name: fmt.Sprintf("p%d", i), Value: ir.TermID(i)}
	}
	return out
}

func names(ps []ir.Port) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}
