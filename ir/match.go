package ir

// Reachable returns the canonical terms reachable from the roots, children
// before parents. References are followed through Find, so replaced terms
// never appear. The order is deterministic for a given graph.
func (g *Graph) Reachable() []TermID {
	const (
		unseen = iota
		open
		done
	)
	state := make([]uint8, len(g.terms))
	var order []TermID

	type frame struct {
		id   TermID
		next int
	}
	var stack []frame

	for _, root := range g.roots {
		r := g.Find(root)
		if state[r] != unseen {
			continue
		}
		state[r] = open
		stack = append(stack, frame{id: r})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := g.childList(top.id)
			if top.next < len(kids) {
				c := g.Find(kids[top.next])
				top.next++
				if state[c] == unseen {
					state[c] = open
					stack = append(stack, frame{id: c})
				}
				continue
			}
			state[top.id] = done
			order = append(order, top.id)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

// IfElses returns the reachable canonical IfElse terms, innermost first.
func (g *Graph) IfElses() []TermID {
	var out []TermID
	for _, id := range g.Reachable() {
		if g.terms[id].Kind == KindIfElse {
			out = append(out, id)
		}
	}
	return out
}

func (g *Graph) childList(id TermID) []TermID {
	t := &g.terms[id]
	if len(t.Ports) == 0 {
		return t.Args
	}
	kids := make([]TermID, 0, len(t.Args)+len(t.Ports))
	t.children(func(c TermID) { kids = append(kids, c) })
	return kids
}

// Use records one reference from User to a term. User is NoTerm when the
// term is a graph root.
type Use struct {
	User TermID
	// Slot is the operand position within User, counting Args first and
	// then Ports.
	Slot int
}

// Uses is a reverse reference index over the reachable part of a graph.
// It is a snapshot: terms added or unions made after BuildUses are not
// reflected.
type Uses struct {
	g     *Graph
	users map[TermID][]Use
}

// BuildUses indexes every reference between reachable canonical terms.
func BuildUses(g *Graph) *Uses {
	u := &Uses{g: g, users: make(map[TermID][]Use)}
	for _, id := range g.Reachable() {
		slot := 0
		g.terms[id].children(func(c TermID) {
			c = g.Find(c)
			u.users[c] = append(u.users[c], Use{User: id, Slot: slot})
			slot++
		})
	}
	for i, r := range g.roots {
		r = g.Find(r)
		u.users[r] = append(u.users[r], Use{User: NoTerm, Slot: i})
	}
	return u
}

// Of returns the uses of id's class.
func (u *Uses) Of(id TermID) []Use {
	return u.users[u.g.Find(id)]
}

// Projections groups the reachable Unpack terms reading from source by
// output index. Every term in the result is canonical.
func (u *Uses) Projections(source TermID) map[int][]TermID {
	out := make(map[int][]TermID)
	for _, use := range u.Of(source) {
		if use.User == NoTerm {
			continue
		}
		t := &u.g.terms[use.User]
		if t.Kind == KindUnpack && use.Slot == 0 {
			out[t.Index()] = append(out[t.Index()], use.User)
		}
	}
	return out
}

// OpaqueUsers returns the reachable users of source that read it other
// than through an Unpack projection. A root reference is reported as NoTerm.
func (u *Uses) OpaqueUsers(source TermID) []TermID {
	var out []TermID
	for _, use := range u.Of(source) {
		if use.User == NoTerm || u.g.terms[use.User].Kind != KindUnpack {
			out = append(out, use.User)
		}
	}
	return out
}
