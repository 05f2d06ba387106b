// Package rvsdg provides a Go implementation of IfElse output pruning for
// region-based IR graphs.
//
// Graphs hold structured control flow as regions with ordered operands
// and ordered output ports. The pruning pass removes outputs of two-branch
// IfElse terms that both branches forward unchanged from the same operand,
// and points their readers at the operand instead.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	rvsdg/             Root package with the one-call Transform entry point
//	├── ir/            Term graph: arena, equivalence, queries, text form
//	├── prune/         The pruning pass: Run, Fixpoint, analysis records
//	├── errors/        Structured error types for debugging
//	└── cmd/rvsdg-prune  Command line driver and interactive browser
//
// # Quick Start
//
// Transform a graph in text form:
//
//	out, err := rvsdg.Transform(ctx, src, rvsdg.Config{Fixpoint: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("eliminated %d outputs\n", out.Result.Eliminated)
//	out.WriteText(os.Stdout)
//
// Or drive the packages directly:
//
//	g, err := ir.Parse(string(src))
//	res, err := prune.Run(ctx, g, prune.Config{})
//	x, _, err := g.Extract()
//	ir.Print(os.Stdout, x)
//
// # Text Form
//
//	(let $a (int 1))
//	(let $r (region "x"))
//	(let $e (end $r (port "p" (unpack $r 0))))
//	(let $ie (ifelse (apply "cond") $e $e (operands $a)))
//	(root (unpack $ie 0))
//
// See ir.Parse for the full grammar.
//
// # Error Handling
//
// Errors from parsing, validation and the pass are *errors.Error values
// carrying a phase, a kind and, where known, the line or term involved:
//
//	var rerr *errors.Error
//	if errors.As(err, &rerr) {
//	    fmt.Println(rerr.Phase, rerr.Kind, rerr.Line)
//	}
package rvsdg
