// Package analysis implements the per-occurrence steps of IfElse output
// port pruning: passthrough detection, cross-branch resolution, the
// elimination mask, port list pruning, and usage redirection.
//
// Every function here reads the graph and returns a value; none of them
// publishes rewrites. The engine applies a finished Plan in one step.
package analysis
