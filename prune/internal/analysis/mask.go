package analysis

// Mask marks the output indices of one IfElse that are eliminated.
// It is built in one step from a resolved mapping set and never changes.
type Mask struct {
	bits *bitset
	n    int
}

// NewMask builds the mask over [0, portCount): index i is marked iff set
// holds a mapping with Out == i. Mappings outside the range are ignored.
func NewMask(set MappingSet, portCount int) *Mask {
	if portCount < 0 {
		portCount = 0
	}
	m := &Mask{bits: newBitset(portCount), n: portCount}
	for mp := range set {
		if mp.Out >= 0 && mp.Out < portCount {
			m.bits.set(mp.Out)
		}
	}
	return m
}

// ShouldEliminate reports whether output idx is removed. It is false for
// every index outside [0, Len()).
func (m *Mask) ShouldEliminate(idx int) bool {
	return idx >= 0 && idx < m.n && m.bits.has(idx)
}

// Len returns the port count the mask covers.
func (m *Mask) Len() int { return m.n }

// Count returns how many indices are eliminated.
func (m *Mask) Count() int { return m.bits.count() }

// Eliminated returns the eliminated indices in ascending order.
func (m *Mask) Eliminated() []int { return m.bits.members() }

// Renumber maps every original output index to its position after
// pruning, or -1 if the index is eliminated.
func (m *Mask) Renumber() []int {
	out := make([]int, m.n)
	next := 0
	for i := range out {
		if m.ShouldEliminate(i) {
			out[i] = -1
			continue
		}
		out[i] = next
		next++
	}
	return out
}
