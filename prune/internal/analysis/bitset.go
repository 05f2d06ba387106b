package analysis

import "math/bits"

// bitset is a fixed-capacity set of small non-negative ints.
type bitset struct {
	words []uint64
}

func newBitset(n int) *bitset {
	return &bitset{words: make([]uint64, (n+63)/64)}
}

// set adds v. Values beyond the capacity given to newBitset are ignored.
func (b *bitset) set(v int) {
	if w := v / 64; v >= 0 && w < len(b.words) {
		b.words[w] |= 1 << (uint(v) % 64)
	}
}

func (b *bitset) has(v int) bool {
	w := v / 64
	if v < 0 || w >= len(b.words) {
		return false
	}
	return b.words[w]&(1<<(uint(v)%64)) != 0
}

func (b *bitset) count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// members returns the values in ascending order.
func (b *bitset) members() []int {
	var out []int
	for i, w := range b.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			out = append(out, i*64+bit)
			w &= w - 1
		}
	}
	return out
}
