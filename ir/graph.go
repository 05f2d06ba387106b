package ir

import (
	"strconv"
	"strings"
)

// Graph is a flat arena of terms with an equivalence relation over them.
//
// Terms are immutable once added. Rewrites are published with Union,
// which merges two equivalence classes; readers observe them through Find.
// Structurally identical terms (other than regions) are shared: adding the
// same term twice returns the first id.
//
// A Graph is safe for concurrent readers as long as no goroutine adds
// terms or calls Union at the same time.
type Graph struct {
	memo   map[string]TermID
	terms  []Term
	parent []TermID
	roots  []TermID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{memo: make(map[string]TermID)}
}

// Len returns the number of terms in the arena, including replaced ones.
func (g *Graph) Len() int {
	return len(g.terms)
}

// Term returns the term stored under id.
// The returned term must not be modified.
func (g *Graph) Term(id TermID) *Term {
	return &g.terms[id]
}

// Valid reports whether id addresses a term in the arena.
func (g *Graph) Valid(id TermID) bool {
	return id >= 0 && int(id) < len(g.terms)
}

// Literal adds an integer constant.
func (g *Graph) Literal(v int64) TermID {
	return g.add(Term{Kind: KindLiteral, Value: v})
}

// Region adds a region entry with the given operand names.
// Every call creates a distinct region, even for identical names.
func (g *Graph) Region(names ...string) TermID {
	id := TermID(len(g.terms))
	g.terms = append(g.terms, Term{Kind: KindRegion, Names: append([]string(nil), names...)})
	g.parent = append(g.parent, id)
	return id
}

// Arg returns the projection reading operand j of region.
func (g *Graph) Arg(region TermID, j int) TermID {
	return g.Unpack(region, j)
}

// Unpack adds a projection of output index of source.
func (g *Graph) Unpack(source TermID, index int) TermID {
	return g.add(Term{Kind: KindUnpack, Args: []TermID{source}, Value: int64(index)})
}

// RegionEnd adds a region exit carrying ports.
func (g *Graph) RegionEnd(region TermID, ports []Port) TermID {
	return g.add(Term{Kind: KindRegionEnd, Args: []TermID{region}, Ports: append([]Port(nil), ports...)})
}

// IfElse adds a two-branch conditional. then and orelse are normally
// RegionEnd terms whose regions bind len(operands) operands.
func (g *Graph) IfElse(cond, then, orelse TermID, operands []TermID) TermID {
	args := make([]TermID, 0, 3+len(operands))
	args = append(args, cond, then, orelse)
	args = append(args, operands...)
	return g.add(Term{Kind: KindIfElse, Args: args})
}

// Apply adds a computed value.
func (g *Graph) Apply(op string, args ...TermID) TermID {
	return g.add(Term{Kind: KindApply, Name: op, Args: append([]TermID(nil), args...)})
}

// Tuple adds an aggregate of values.
func (g *Graph) Tuple(elems ...TermID) TermID {
	return g.add(Term{Kind: KindTuple, Args: append([]TermID(nil), elems...)})
}

// AddRoot marks id as externally observed. Queries and extraction only
// consider terms reachable from roots.
func (g *Graph) AddRoot(id TermID) {
	g.roots = append(g.roots, id)
}

// Roots returns the canonical root terms.
func (g *Graph) Roots() []TermID {
	out := make([]TermID, len(g.roots))
	for i, r := range g.roots {
		out[i] = g.Find(r)
	}
	return out
}

// Find returns the representative of id's equivalence class.
// Find never mutates the graph.
func (g *Graph) Find(id TermID) TermID {
	for g.parent[id] != id {
		id = g.parent[id]
	}
	return id
}

// Equivalent reports whether a and b are in the same class.
func (g *Graph) Equivalent(a, b TermID) bool {
	return g.Find(a) == g.Find(b)
}

// Union asserts that a and b are interchangeable. b's representative
// becomes the representative of the merged class, so every reader of a
// observes b afterwards. Returns false when they were already equivalent.
func (g *Graph) Union(a, b TermID) bool {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return false
	}
	g.parent[ra] = rb
	// shorten the chain from a so later Finds stay cheap
	for a != rb && g.parent[a] != rb {
		next := g.parent[a]
		g.parent[a] = rb
		a = next
	}
	return true
}

func (g *Graph) add(t Term) TermID {
	key := g.key(&t)
	if id, ok := g.memo[key]; ok {
		return id
	}
	id := TermID(len(g.terms))
	g.terms = append(g.terms, t)
	g.parent = append(g.parent, id)
	g.memo[key] = id
	return id
}

// key identifies t structurally, with references taken up to equivalence.
func (g *Graph) key(t *Term) string {
	var b strings.Builder
	b.WriteString(t.Kind.String())
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(t.Value, 10))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(t.Name))
	for _, a := range t.Args {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(g.canon(a))))
	}
	for _, p := range t.Ports {
		b.WriteByte(';')
		b.WriteString(strconv.Quote(p.Name))
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(int(g.canon(p.Value))))
	}
	return b.String()
}

// canon is Find tolerating dangling ids, which Validate reports later.
func (g *Graph) canon(id TermID) TermID {
	if !g.Valid(id) {
		return id
	}
	return g.Find(id)
}
