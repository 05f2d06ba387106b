package prune

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	rverrors "github.com/wippyai/rvsdg/errors"
	"github.com/wippyai/rvsdg/ir"
)

// portLayout builds the port list of one branch over region: '_' computes
// a value, 'A'..'C' forwards that operand. Indices in drop are omitted,
// which renders the expected pruned form.
func portLayout(region, layout string, drop ...int) string {
	var parts []string
	for i, c := range layout {
		if contains(drop, i) {
			continue
		}
		v := fmt.Sprintf(`(apply "f" (int %d))`, i)
		if c != '_' {
			v = fmt.Sprintf("(unpack %s %d)", region, c-'A')
		}
		parts = append(parts, fmt.Sprintf(`(port "p%d" %s)`, i, v))
	}
	return strings.Join(parts, " ")
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func graphText(thenPorts, elsePorts, outputs string) string {
	return `;; operands A B C
(let $a (int 1))
(let $b (int 2))
(let $c (int 3))
(let $rt (region "a" "b" "c"))
(let $then (end $rt ` + thenPorts + `))
(let $re (region "a" "b" "c"))
(let $else (end $re ` + elsePorts + `))
(let $ie (ifelse (apply "cond") $then $else (operands $a $b $c)))
(root (tuple ` + outputs + `))
`
}

func allOutputs(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("(unpack $ie %d)", i)
	}
	return strings.Join(parts, " ")
}

func render(t *testing.T, g *ir.Graph) string {
	t.Helper()
	x, _, err := g.Extract()
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	var sb strings.Builder
	if err := ir.Print(&sb, x); err != nil {
		t.Fatalf("Print failed: %v", err)
	}
	return sb.String()
}

func mustParse(t *testing.T, src string) *ir.Graph {
	t.Helper()
	g, err := ir.Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v\n%s", err, src)
	}
	return g
}

func TestRun_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		then       string
		orelse     string
		drop       []int
		outputs    string
		eliminated []int
	}{
		{
			name:       "one index agrees",
			then:       "__AB",
			orelse:     "__AC",
			drop:       []int{2},
			outputs:    "(unpack $ie 0) (unpack $ie 1) $a (unpack $ie 2)",
			eliminated: []int{2},
		},
		{
			name:       "two indices agree",
			then:       "__AB",
			orelse:     "__AB",
			drop:       []int{2, 3},
			outputs:    "(unpack $ie 0) (unpack $ie 1) $a $b",
			eliminated: []int{2, 3},
		},
		{
			name:    "no passthrough",
			then:    "____",
			orelse:  "____",
			outputs: allOutputs(4),
		},
		{
			name:    "same index different operand",
			then:    "__A_",
			orelse:  "__B_",
			outputs: allOutputs(4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustParse(t, graphText(portLayout("$rt", tt.then), portLayout("$re", tt.orelse), allOutputs(4)))
			res, err := Run(context.Background(), g, Config{Workers: 1})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			want := mustParse(t, graphText(
				portLayout("$rt", tt.then, tt.drop...),
				portLayout("$re", tt.orelse, tt.drop...),
				tt.outputs))
			if diff := cmp.Diff(render(t, want), render(t, g)); diff != "" {
				t.Errorf("pruned graph mismatch (-want +got):\n%s", diff)
			}

			if len(res.Occurrences) != 1 {
				t.Fatalf("got %d occurrences, want 1", len(res.Occurrences))
			}
			occ := res.Occurrences[0]
			if diff := cmp.Diff(tt.eliminated, occ.Eliminated); diff != "" {
				t.Errorf("eliminated mismatch (-want +got):\n%s", diff)
			}
			if res.Eliminated != len(tt.eliminated) {
				t.Errorf("Result.Eliminated = %d, want %d", res.Eliminated, len(tt.eliminated))
			}
			if len(tt.eliminated) == 0 && occ.Skip != SkipNoPassthrough {
				t.Errorf("Skip = %q, want %q", occ.Skip, SkipNoPassthrough)
			}
		})
	}
}

// Ports hold either an operand index or -1 for a constant defined outside
// the branch region. Expected outputs use "int N" for an output
// redirected to the operand literal N and "port K" for an output read
// from index K of the rebuilt IfElse.
func TestRun_PortLayouts(t *testing.T) {
	tests := []struct {
		then   []int
		orelse []int
		want   []string
	}{
		{[]int{-1, -1, 0, 1}, []int{-1, -1, 0, 2}, []string{"port 0", "port 1", "int 1", "port 2"}},
		{[]int{-1, -1, 0, 1}, []int{-1, -1, 0, 1}, []string{"port 0", "port 1", "int 1", "int 2"}},
		{[]int{2, -1, 0, 1}, []int{2, -1, 0, 1}, []string{"int 3", "port 0", "int 1", "int 2"}},
		{[]int{-1, -1, -1, -1}, []int{-1, -1, -1, -1}, []string{"port 0", "port 1", "port 2", "port 3"}},
		{[]int{2, -1, -1, 1}, []int{2, -1, -1, 1}, []string{"int 3", "port 0", "port 1", "int 2"}},
		{[]int{0, 1, 2, -1}, []int{0, 1, 2, -1}, []string{"int 1", "int 2", "int 3", "port 0"}},
		{[]int{-1, 0, -1, 1}, []int{-1, 0, -1, 1}, []string{"port 0", "int 1", "port 1", "int 2"}},
		// only index 2 forwards the same operand in both branches
		{[]int{0, 1, 2, 0}, []int{1, 0, 2, 1}, []string{"port 0", "port 1", "int 3", "port 2"}},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("case_%d", i+1), func(t *testing.T) {
			g := ir.New()
			constants := []ir.TermID{g.Literal(1), g.Literal(2), g.Literal(3), g.Literal(4)}
			operands := constants[:3]

			branch := func(layout []int) ir.TermID {
				r := g.Region("a", "b", "c")
				ports := make([]ir.Port, len(layout))
				for i, s := range layout {
					v := constants[i]
					if s >= 0 {
						v = g.Arg(r, s)
					}
					ports[i] = ir.Port{Name: fmt.Sprintf("p%d", i), Value: v}
				}
				return g.RegionEnd(r, ports)
			}
			ie := g.IfElse(g.Literal(1), branch(tt.then), branch(tt.orelse), operands)
			outs := make([]ir.TermID, len(tt.then))
			for i := range outs {
				outs[i] = g.Unpack(ie, i)
			}
			g.AddRoot(g.Tuple(outs...))

			res, err := Run(context.Background(), g, Config{})
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			occ := res.Occurrences[0]

			got := make([]string, len(outs))
			for i, o := range outs {
				term := g.Term(g.Find(o))
				switch {
				case term.Kind == ir.KindLiteral:
					got[i] = fmt.Sprintf("int %d", term.Value)
				case term.Kind == ir.KindUnpack && occ.Rewritten() && g.Find(term.Source()) == occ.Replacement:
					got[i] = fmt.Sprintf("port %d", term.Index())
				case term.Kind == ir.KindUnpack && !occ.Rewritten() && g.Find(term.Source()) == ie:
					got[i] = fmt.Sprintf("port %d", term.Index())
				default:
					got[i] = ir.Format(g, o)
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outputs mismatch (-want +got):\n%s", diff)
			}

			if occ.Rewritten() {
				repl := g.Term(occ.Replacement)
				then := g.Term(g.Find(repl.Then()))
				orelse := g.Term(g.Find(repl.Else()))
				if len(then.Ports) != len(orelse.Ports) {
					t.Errorf("pruned arity differs: then %d, else %d", len(then.Ports), len(orelse.Ports))
				}
				if len(then.Ports)+len(occ.Eliminated) != len(tt.then) {
					t.Errorf("pruned arity %d, eliminated %d, original %d", len(then.Ports), len(occ.Eliminated), len(tt.then))
				}
			}
		})
	}
}

func TestRun_OrderPreserved(t *testing.T) {
	g := mustParse(t, graphText(portLayout("$rt", "_A_B"), portLayout("$re", "_A_B"), allOutputs(4)))
	res, err := Run(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	repl := g.Term(res.Occurrences[0].Replacement)
	for _, b := range []ir.TermID{repl.Then(), repl.Else()} {
		var names []string
		for _, p := range g.Term(g.Find(b)).Ports {
			names = append(names, p.Name)
		}
		if diff := cmp.Diff([]string{"p0", "p2"}, names); diff != "" {
			t.Errorf("port order mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	g := mustParse(t, graphText(portLayout("$rt", "__AB"), portLayout("$re", "__AC"), allOutputs(4)))
	if _, err := Run(context.Background(), g, Config{}); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	once := render(t, g)

	res, err := Run(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if res.Rewritten != 0 {
		t.Errorf("second Run rewrote %d occurrences", res.Rewritten)
	}
	if diff := cmp.Diff(once, render(t, g)); diff != "" {
		t.Errorf("second Run changed the graph (-first +second):\n%s", diff)
	}
}

func TestRun_Record(t *testing.T) {
	g := mustParse(t, graphText(portLayout("$rt", "_AAB"), portLayout("$re", "_ACB"), allOutputs(4)))
	res, err := Run(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	occ := res.Occurrences[0]
	want := Occurrence{
		Then:        []Mapping{{Out: 1, Src: 0}, {Out: 2, Src: 0}, {Out: 3, Src: 1}},
		Else:        []Mapping{{Out: 1, Src: 0}, {Out: 2, Src: 2}, {Out: 3, Src: 1}},
		Common:      []Mapping{{Out: 1, Src: 0}, {Out: 3, Src: 1}},
		Eliminated:  []int{1, 3},
		Round:       1,
		IfElse:      occ.IfElse,
		Replacement: occ.Replacement,
		Redirected:  2,
		Shifted:     2,
	}
	if diff := cmp.Diff(want, occ); diff != "" {
		t.Errorf("occurrence mismatch (-want +got):\n%s", diff)
	}
	if res.Rounds != 1 || res.Rewritten != 1 || res.Redirected != 2 {
		t.Errorf("result = %+v", res)
	}
}

// cascade builds an outer IfElse whose then branch forwards the output of
// an inner IfElse. The inner IfElse forwards its operand, so once it is
// pruned the outer then branch becomes a passthrough too.
func cascade() (*ir.Graph, ir.TermID, ir.TermID) {
	g := ir.New()
	a := g.Literal(7)

	rt := g.Region("x")
	innerThen := g.Region("y")
	innerElse := g.Region("y")
	inner := g.IfElse(g.Apply("c2"),
		g.RegionEnd(innerThen, []ir.Port{{Name: "v", Value: g.Arg(innerThen, 0)}}),
		g.RegionEnd(innerElse, []ir.Port{{Name: "v", Value: g.Arg(innerElse, 0)}}),
		[]ir.TermID{g.Arg(rt, 0)})
	outerThen := g.RegionEnd(rt, []ir.Port{{Name: "v", Value: g.Unpack(inner, 0)}})

	re := g.Region("x")
	outerElse := g.RegionEnd(re, []ir.Port{{Name: "v", Value: g.Arg(re, 0)}})

	outer := g.IfElse(g.Apply("c1"), outerThen, outerElse, []ir.TermID{a})
	out := g.Unpack(outer, 0)
	g.AddRoot(g.Tuple(out))
	return g, out, a
}

func TestRun_NoCascadeWithinOneRun(t *testing.T) {
	g, out, a := cascade()
	res, err := Run(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Rewritten != 1 || res.Skipped != 1 {
		t.Errorf("Rewritten=%d Skipped=%d, want 1 and 1", res.Rewritten, res.Skipped)
	}
	if g.Equivalent(out, a) {
		t.Error("outer IfElse should not be pruned in the same run")
	}
}

func TestFixpoint_Cascade(t *testing.T) {
	g, out, a := cascade()
	res, err := Fixpoint(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("Fixpoint failed: %v", err)
	}
	if !g.Equivalent(out, a) {
		t.Errorf("output = %s, want the outer operand", ir.Format(g, out))
	}
	if res.Rounds != 3 || res.Rewritten != 2 {
		t.Errorf("Rounds=%d Rewritten=%d, want 3 and 2", res.Rounds, res.Rewritten)
	}
	if n := len(g.IfElses()); n != 0 {
		t.Errorf("%d IfElse terms still reachable", n)
	}
}

func TestFixpoint_MaxRounds(t *testing.T) {
	g, out, a := cascade()
	res, err := Fixpoint(context.Background(), g, Config{MaxRounds: 1})
	if err != nil {
		t.Fatalf("Fixpoint failed: %v", err)
	}
	if res.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", res.Rounds)
	}
	if g.Equivalent(out, a) {
		t.Error("round limit should stop before the outer IfElse")
	}
}

func TestRun_Errors(t *testing.T) {
	_, err := Run(context.Background(), nil, Config{})
	if !errors.Is(err, &rverrors.Error{Phase: rverrors.PhaseTransform, Kind: rverrors.KindInvalidInput}) {
		t.Errorf("nil graph: err = %v", err)
	}
	if _, err := Fixpoint(context.Background(), nil, Config{}); err == nil {
		t.Error("Fixpoint with nil graph should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, _, _ := cascade()
	_, err = Fixpoint(ctx, g, Config{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: err = %v, want context.Canceled", err)
	}
	if !errors.Is(err, &rverrors.Error{Phase: rverrors.PhaseTransform, Kind: rverrors.KindCancelled}) {
		t.Errorf("cancelled: err = %v, want cancelled kind", err)
	}
}

func TestRun_UnevenBranches(t *testing.T) {
	src := `(let $a (int 1))
(let $rt (region "a"))
(let $re (region "a"))
(let $then (end $rt (port "x" (unpack $rt 0)) (port "f" (apply "f"))))
(let $else (end $re (port "x" (unpack $re 0)) (port "g" (apply "g")) (port "h" (apply "h"))))
(let $ie (ifelse (apply "cond") $then $else (operands $a)))
(root (tuple (unpack $ie 0) (unpack $ie 1) (unpack $ie 2)))
`
	g := mustParse(t, src)
	ie := g.IfElses()[0]
	outs := []ir.TermID{g.Unpack(ie, 0), g.Unpack(ie, 1), g.Unpack(ie, 2)}

	res, err := Run(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	occ := res.Occurrences[0]
	if diff := cmp.Diff([]int{0}, occ.Eliminated); diff != "" {
		t.Fatalf("eliminated mismatch (-want +got):\n%s", diff)
	}

	repl := g.Term(occ.Replacement)
	var got [2][]string
	for i, b := range []ir.TermID{repl.Then(), repl.Else()} {
		for _, p := range g.Term(g.Find(b)).Ports {
			got[i] = append(got[i], p.Name)
		}
	}
	if diff := cmp.Diff([2][]string{{"f"}, {"g", "h"}}, got); diff != "" {
		t.Errorf("pruned ports mismatch (-want +got):\n%s", diff)
	}

	a := g.Term(ie).Operands()[0]
	if !g.Equivalent(outs[0], a) {
		t.Errorf("output 0 = %s, want the operand", ir.Format(g, outs[0]))
	}
	for i, k := range map[int]int{1: 0, 2: 1} {
		p := g.Term(g.Find(outs[i]))
		if p.Kind != ir.KindUnpack || g.Find(p.Source()) != occ.Replacement || p.Index() != k {
			t.Errorf("output %d = %s, want unpack %d of the replacement", i, ir.Format(g, outs[i]), k)
		}
	}

	again, err := Fixpoint(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("Fixpoint failed: %v", err)
	}
	if again.Rewritten != 0 {
		t.Errorf("pruned graph rewritten again %d times", again.Rewritten)
	}
}

func TestFixpoint_ProjectionOutOfRange(t *testing.T) {
	g := ir.New()
	a := g.Literal(1)
	rt := g.Region("a")
	re := g.Region("a")
	ie := g.IfElse(g.Apply("cond"),
		g.RegionEnd(rt, []ir.Port{{Name: "x", Value: g.Arg(rt, 0)}, {Name: "y", Value: g.Apply("f")}}),
		g.RegionEnd(re, []ir.Port{{Name: "x", Value: g.Arg(re, 0)}, {Name: "y", Value: g.Apply("g")}}),
		[]ir.TermID{a})
	g.AddRoot(g.Tuple(g.Unpack(ie, 0), g.Unpack(ie, 1), g.Unpack(ie, 5)))

	res, err := Fixpoint(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("Fixpoint failed: %v", err)
	}
	if res.Rounds != 1 || res.Rewritten != 0 || res.Eliminated != 0 {
		t.Errorf("Rounds=%d Rewritten=%d Eliminated=%d, want 1, 0 and 0", res.Rounds, res.Rewritten, res.Eliminated)
	}
	if got := res.Occurrences[0].Skip; got != SkipProjectionRange {
		t.Errorf("Skip = %q, want %q", got, SkipProjectionRange)
	}
	if g.Equivalent(g.Unpack(ie, 0), a) {
		t.Error("skipped occurrence should leave its projections alone")
	}
}
