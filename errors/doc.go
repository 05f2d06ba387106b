// Package errors provides structured error types for the rvsdg module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the term path, source line for text input, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindOutOfBounds).
//		Term(7, "ports", "2").
//		Detail("unpack index %d exceeds region operands", 3).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Syntax(12, "expected %s", "')'")
//	err := errors.OutOfBounds(errors.PhaseValidate, 7, 3, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
