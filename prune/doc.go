// Package prune removes common passthrough outputs of IfElse terms.
//
// # Overview
//
// An output port of an IfElse branch is a passthrough when its value is
// one of the branch region's operands, forwarded unchanged. When both
// branches forward the same operand through the same output index, that
// index carries no information the caller did not already have: the
// output is removed from both branches and every projection of it reads
// the IfElse operand directly.
//
// # How It Works
//
// Each reachable IfElse is processed by six ordered steps:
//
//  1. match: both branches must be RegionEnd terms and every user of the
//     IfElse a projection
//  2. detect: collect (output, operand) passthrough pairs for each branch
//  3. resolve: keep the pairs present in both branches
//  4. mask: mark the output indices of the kept pairs
//  5. prune: drop the marked ports from both branches, preserving order
//  6. redirect: point projections of dropped outputs at the operand and
//     renumber the projections of surviving outputs
//
// All occurrences are analyzed before any is rewritten. Rewrites are
// published through ir.Graph.Union, so the replaced IfElse simply becomes
// unreachable.
//
// # Usage
//
//	g, err := ir.Parse(src)
//	if err != nil {
//	    return err
//	}
//	res, err := prune.Fixpoint(ctx, g, prune.Config{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	out, _, err := g.Extract()
//
// Run performs a single round. Fixpoint repeats rounds until nothing
// changes, which also removes passthroughs exposed by earlier rewrites.
package prune
