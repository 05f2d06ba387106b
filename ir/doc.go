// Package ir provides the term graph the region port pruning pass runs on.
//
// A Graph is a flat arena of immutable terms addressed by TermID.
// Structured control flow is expressed with regions: a Region term binds an
// ordered list of operands, Unpack(region, j) reads operand j inside the
// region, and a RegionEnd term closes the region with an ordered list of
// named output ports. An IfElse term selects between two RegionEnd branches
// over one shared operand list; Unpack(ifelse, i) reads its i-th output.
//
// Rewrites never mutate terms. They are published as equivalences with
// Graph.Union and observed through Graph.Find, and Graph.Extract
// materializes the resulting canonical graph.
//
// # Text Form
//
// Graphs can be read with Parse and written with Print:
//
//	(let $r (region "a" "b"))
//	(let $then (end $r (port "x" (unpack $r 0)) (port "y" (apply "neg" (unpack $r 1)))))
//	(let $else (end $r (port "x" (unpack $r 0)) (port "y" (unpack $r 1))))
//	(let $ie (ifelse (int 1) $then $else (operands (int 10) (int 20))))
//	(root (tuple (unpack $ie 0) (unpack $ie 1)))
package ir
