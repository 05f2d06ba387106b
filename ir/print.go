package ir

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Print writes the reachable canonical graph in the text form read by
// Parse. Each term is bound to $tN, where N is its canonical id, in
// dependency order, followed by one root form per root.
func Print(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	for _, id := range g.Reachable() {
		bw.WriteString("(let ")
		bw.WriteString(ref(id))
		bw.WriteByte(' ')
		g.writeTerm(bw, id, func(c TermID) string { return ref(g.Find(c)) })
		bw.WriteString(")\n")
	}
	for _, r := range g.Roots() {
		bw.WriteString("(root ")
		bw.WriteString(ref(r))
		bw.WriteString(")\n")
	}
	return bw.Flush()
}

// Format renders the canonical term id as a single expression with every
// reference expanded inline. Regions render as their operand list, so two
// regions with equal names are indistinguishable in the output.
func Format(g *Graph, id TermID) string {
	var b strings.Builder
	var expand func(TermID) string
	expand = func(c TermID) string {
		var sb strings.Builder
		g.writeTerm(&sb, g.Find(c), expand)
		return sb.String()
	}
	g.writeTerm(&b, g.Find(id), expand)
	return b.String()
}

func ref(id TermID) string {
	return "$t" + strconv.Itoa(int(id))
}

type stringWriter interface {
	WriteString(string) (int, error)
	WriteByte(byte) error
}

func (g *Graph) writeTerm(w stringWriter, id TermID, child func(TermID) string) {
	t := &g.terms[id]
	w.WriteByte('(')
	w.WriteString(t.Kind.String())
	switch t.Kind {
	case KindLiteral:
		w.WriteByte(' ')
		w.WriteString(strconv.FormatInt(t.Value, 10))
	case KindRegion:
		for _, n := range t.Names {
			w.WriteByte(' ')
			w.WriteString(strconv.Quote(n))
		}
	case KindUnpack:
		w.WriteByte(' ')
		w.WriteString(child(t.Source()))
		w.WriteByte(' ')
		w.WriteString(strconv.Itoa(t.Index()))
	case KindRegionEnd:
		w.WriteByte(' ')
		w.WriteString(child(t.Region()))
		for _, p := range t.Ports {
			w.WriteString(" (port ")
			w.WriteString(strconv.Quote(p.Name))
			w.WriteByte(' ')
			w.WriteString(child(p.Value))
			w.WriteByte(')')
		}
	case KindIfElse:
		for _, a := range t.Args[:3] {
			w.WriteByte(' ')
			w.WriteString(child(a))
		}
		w.WriteString(" (operands")
		for _, a := range t.Operands() {
			w.WriteByte(' ')
			w.WriteString(child(a))
		}
		w.WriteByte(')')
	case KindApply:
		w.WriteByte(' ')
		w.WriteString(strconv.Quote(t.Name))
		for _, a := range t.Args {
			w.WriteByte(' ')
			w.WriteString(child(a))
		}
	case KindTuple:
		for _, a := range t.Args {
			w.WriteByte(' ')
			w.WriteString(child(a))
		}
	}
	w.WriteByte(')')
}
