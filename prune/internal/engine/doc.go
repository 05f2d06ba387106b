// Package engine orchestrates IfElse output port pruning.
//
// A round analyzes every reachable IfElse against an unchanging graph,
// running the registered steps in order for each occurrence, and then
// applies the finished plans one at a time. Analysis may run on several
// goroutines; application is sequential, so a reader never observes a
// half-rewritten occurrence.
package engine
