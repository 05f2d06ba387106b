package analysis

import (
	"slices"

	"github.com/wippyai/rvsdg/ir"
)

// Redirect replaces a projection of an eliminated output with the operand
// that both branches forwarded through it.
type Redirect struct {
	Projection ir.TermID
	Operand    ir.TermID
	Index      int
}

// Shift moves a projection of a surviving output to its compacted index.
type Shift struct {
	Projection ir.TermID
	From       int
	To         int
}

// Redirects lists, in original index order, every projection of an output
// eliminated by common. Indices are those of the original, unpruned
// IfElse. projections is keyed by output index as returned by
// ir.Uses.Projections.
func Redirects(projections map[int][]ir.TermID, operands []ir.TermID, common MappingSet) []Redirect {
	var out []Redirect
	for _, idx := range sortedKeys(projections) {
		j, ok := common.Source(idx)
		if !ok {
			continue
		}
		for _, p := range projections[idx] {
			out = append(out, Redirect{Projection: p, Operand: operands[j], Index: idx})
		}
	}
	return out
}

// Shifts lists every projection of a surviving output together with its
// index after the eliminated outputs are removed. Projections outside the
// mask's range are not listed.
func Shifts(projections map[int][]ir.TermID, mask *Mask) []Shift {
	renumber := mask.Renumber()
	var out []Shift
	for _, idx := range sortedKeys(projections) {
		if idx < 0 || idx >= len(renumber) || renumber[idx] < 0 {
			continue
		}
		for _, p := range projections[idx] {
			out = append(out, Shift{Projection: p, From: idx, To: renumber[idx]})
		}
	}
	return out
}

func sortedKeys(m map[int][]ir.TermID) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
