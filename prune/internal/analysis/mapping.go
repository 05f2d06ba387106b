package analysis

import (
	"slices"
	"strconv"
	"strings"
)

// Mapping records that output port Out of a branch forwards the branch
// region's operand Src unchanged.
type Mapping struct {
	Out int
	Src int
}

func (m Mapping) String() string {
	return "(" + strconv.Itoa(m.Out) + "," + strconv.Itoa(m.Src) + ")"
}

// MappingSet is a set of passthrough mappings. The zero value is an empty,
// read-only set; use NewMappingSet for one that accepts Add.
type MappingSet map[Mapping]struct{}

// NewMappingSet creates a set holding ms.
func NewMappingSet(ms ...Mapping) MappingSet {
	s := make(MappingSet, len(ms))
	for _, m := range ms {
		s[m] = struct{}{}
	}
	return s
}

// Add inserts m. Adding an existing mapping is a no-op.
func (s MappingSet) Add(m Mapping) {
	s[m] = struct{}{}
}

// Has reports whether m is in the set.
func (s MappingSet) Has(m Mapping) bool {
	_, ok := s[m]
	return ok
}

// Len returns the number of mappings.
func (s MappingSet) Len() int {
	return len(s)
}

// Union returns a new set with the mappings of both s and o.
func (s MappingSet) Union(o MappingSet) MappingSet {
	out := make(MappingSet, len(s)+len(o))
	for m := range s {
		out[m] = struct{}{}
	}
	for m := range o {
		out[m] = struct{}{}
	}
	return out
}

// Intersect returns the mappings present in both s and o with identical
// Out and identical Src. An output forwarded in only one set, or forwarded
// from different operands, is not in the result.
func (s MappingSet) Intersect(o MappingSet) MappingSet {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(MappingSet)
	for m := range small {
		if large.Has(m) {
			out[m] = struct{}{}
		}
	}
	return out
}

// Source returns the operand forwarded through output out.
// In a set produced by Detect an output maps to at most one operand;
// if several are present the smallest is returned.
func (s MappingSet) Source(out int) (int, bool) {
	src, found := 0, false
	for m := range s {
		if m.Out == out && (!found || m.Src < src) {
			src, found = m.Src, true
		}
	}
	return src, found
}

// Sorted returns the mappings ordered by Out, then Src.
func (s MappingSet) Sorted() []Mapping {
	out := make([]Mapping, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Mapping) int {
		if a.Out != b.Out {
			return a.Out - b.Out
		}
		return a.Src - b.Src
	})
	return out
}

func (s MappingSet) String() string {
	parts := make([]string, 0, len(s))
	for _, m := range s.Sorted() {
		parts = append(parts, m.String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}
