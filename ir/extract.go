package ir

import (
	"strconv"

	"github.com/wippyai/rvsdg/errors"
)

// Extract materializes the canonical graph: a fresh Graph holding one term
// per reachable equivalence class, every reference resolved through Find,
// and the same roots. The returned map translates canonical ids of g to ids
// in the new graph.
//
// Each class has exactly one representative, so no cost model is involved:
// the representative chosen by Union is the term extracted.
func (g *Graph) Extract() (*Graph, map[TermID]TermID, error) {
	out := New()
	remap := make(map[TermID]TermID)

	resolve := func(owner, id TermID) (TermID, error) {
		n, ok := remap[g.Find(id)]
		if !ok {
			return NoTerm, errors.New(errors.PhaseExtract, errors.KindCycle).
				Term(int(owner)).
				Detail("reference to %%%d does not precede its user", g.Find(id)).
				Build()
		}
		return n, nil
	}

	for _, id := range g.Reachable() {
		t := g.terms[id]
		if t.Kind == KindRegion {
			remap[id] = out.Region(t.Names...)
			continue
		}
		nt := Term{Kind: t.Kind, Name: t.Name, Value: t.Value}
		if len(t.Args) > 0 {
			nt.Args = make([]TermID, len(t.Args))
			for i, a := range t.Args {
				n, err := resolve(id, a)
				if err != nil {
					return nil, nil, err
				}
				nt.Args[i] = n
			}
		}
		if len(t.Ports) > 0 {
			nt.Ports = make([]Port, len(t.Ports))
			for i, p := range t.Ports {
				n, err := resolve(id, p.Value)
				if err != nil {
					return nil, nil, err
				}
				nt.Ports[i] = Port{Name: p.Name, Value: n}
			}
		}
		remap[id] = out.add(nt)
	}

	for _, r := range g.Roots() {
		n, ok := remap[r]
		if !ok {
			return nil, nil, errors.NotFound(errors.PhaseExtract, "root", "%"+strconv.Itoa(int(r)))
		}
		out.AddRoot(n)
	}
	return out, remap, nil
}
