package ir

import (
	"strconv"

	"github.com/wippyai/rvsdg/errors"
)

// Validate checks the structural well-formedness the pruning pass relies on
// and returns the first violation found:
//   - every reference addresses a term in the arena
//   - the reachable graph is acyclic
//   - RegionEnd closes a Region
//   - IfElse has cond/then/else, and each branch region binds exactly the
//     IfElse operands
//   - Unpack indices are within the outputs of their source
func Validate(g *Graph) error {
	for i := range g.terms {
		slot := 0
		var bad error
		g.terms[i].children(func(c TermID) {
			if bad == nil && !g.Valid(c) {
				bad = errors.New(errors.PhaseValidate, errors.KindNotFound).
					Term(i, strconv.Itoa(slot)).
					Detail("reference to missing term %%%d", c).
					Build()
			}
			slot++
		})
		if bad != nil {
			return bad
		}
	}
	for _, r := range g.roots {
		if !g.Valid(r) {
			return errors.NotFound(errors.PhaseValidate, "root", "%"+strconv.Itoa(int(r)))
		}
	}

	order := g.Reachable()
	pos := make(map[TermID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for i, id := range order {
		var cyc error
		g.terms[id].children(func(c TermID) {
			if cyc == nil && pos[g.Find(c)] >= i {
				cyc = errors.New(errors.PhaseValidate, errors.KindCycle).
					Term(int(id)).
					Detail("reference to %%%d closes a cycle", g.Find(c)).
					Build()
			}
		})
		if cyc != nil {
			return cyc
		}
		if err := g.validateTerm(id); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) validateTerm(id TermID) error {
	t := &g.terms[id]
	switch t.Kind {
	case KindRegionEnd:
		if len(t.Args) != 1 {
			return errors.Arity(errors.PhaseValidate, int(id), 1, len(t.Args))
		}
		if k := g.kindOf(t.Region()); k != KindRegion {
			return errors.KindMismatch(errors.PhaseValidate, int(id), KindRegion.String(), k.String())
		}

	case KindIfElse:
		if len(t.Args) < 3 {
			return errors.New(errors.PhaseValidate, errors.KindArity).
				Term(int(id)).
				Detail("ifelse needs cond, then and else").
				Build()
		}
		for _, branch := range []TermID{t.Then(), t.Else()} {
			b := g.Term(g.Find(branch))
			if b.Kind != KindRegionEnd {
				continue
			}
			region := g.Term(g.Find(b.Region()))
			if region.Arity() != len(t.Operands()) {
				return errors.Arity(errors.PhaseValidate, int(g.Find(b.Region())), len(t.Operands()), region.Arity())
			}
		}

	case KindUnpack:
		if len(t.Args) != 1 {
			return errors.Arity(errors.PhaseValidate, int(id), 1, len(t.Args))
		}
		if t.Index() < 0 {
			return errors.OutOfBounds(errors.PhaseValidate, int(id), t.Index(), 0)
		}
		n, ok := g.OutputCount(t.Source())
		if !ok {
			if g.kindOf(t.Source()) == KindIfElse {
				// outputs of an IfElse with an opaque branch are unknown here
				return nil
			}
			return errors.KindMismatch(errors.PhaseValidate, int(id), "multi-output source", g.kindOf(t.Source()).String())
		}
		if t.Index() >= n {
			return errors.OutOfBounds(errors.PhaseValidate, int(id), t.Index(), n)
		}
	}
	return nil
}

// OutputCount returns how many outputs an Unpack may project from id:
// the operand count of a Region, the element count of a Tuple, or the
// longer branch port list of an IfElse whose branches are both RegionEnd
// terms. The count is unknown for an IfElse with any other branch.
func (g *Graph) OutputCount(id TermID) (int, bool) {
	t := &g.terms[g.Find(id)]
	switch t.Kind {
	case KindRegion:
		return t.Arity(), true
	case KindIfElse:
		if len(t.Args) < 3 {
			return 0, false
		}
		then := &g.terms[g.Find(t.Then())]
		orelse := &g.terms[g.Find(t.Else())]
		if then.Kind != KindRegionEnd || orelse.Kind != KindRegionEnd {
			return 0, false
		}
		return max(len(then.Ports), len(orelse.Ports)), true
	case KindTuple:
		return len(t.Args), true
	}
	return 0, false
}

func (g *Graph) kindOf(id TermID) Kind {
	return g.terms[g.Find(id)].Kind
}
