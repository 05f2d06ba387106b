package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse     Phase = "parse"     // text format decoding
	PhaseValidate  Phase = "validate"  // graph well-formedness
	PhaseExtract   Phase = "extract"   // canonical graph materialization
	PhaseTransform Phase = "transform" // port pruning pass
	PhaseLoad      Phase = "load"      // reading graph sources
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax       Kind = "syntax"
	KindUnknownName  Kind = "unknown_name"
	KindDuplicate    Kind = "duplicate"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindKindMismatch Kind = "kind_mismatch"
	KindArity        Kind = "arity"
	KindCycle        Kind = "cycle"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindCancelled    Kind = "cancelled"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Line   int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		b.WriteString(" line ")
		b.WriteString(strconv.Itoa(e.Line))
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Term sets the path to the offending term, e.g. Term(3, "ports", "1")
func (b *Builder) Term(id int, rest ...string) *Builder {
	b.err.Path = TermPath(id, rest...)
	return b
}

// Line sets the source line for text format errors
func (b *Builder) Line(line int) *Builder {
	b.err.Line = line
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// TermPath formats a path rooted at a term id
func TermPath(id int, rest ...string) []string {
	return append([]string{"%" + strconv.Itoa(id)}, rest...)
}

// Convenience constructors for common error patterns

// Syntax creates a text format syntax error
func Syntax(line int, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Line:   line,
		Detail: fmt.Sprintf(format, args...),
	}
}

// UnknownName creates an error for a reference to an unbound name
func UnknownName(line int, name string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnknownName,
		Line:   line,
		Detail: fmt.Sprintf("name %q is not bound", name),
		Value:  name,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, term int, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   TermPath(term),
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// KindMismatch creates an error for a term of the wrong kind in a typed position
func KindMismatch(phase Phase, term int, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindKindMismatch,
		Path:   TermPath(term),
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// Arity creates an error for mismatched operand counts
func Arity(phase Phase, term int, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArity,
		Path:   TermPath(term),
		Detail: fmt.Sprintf("expected %d operands, got %d", want, got),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Cancelled wraps a context error raised between pass rounds
func Cancelled(cause error) *Error {
	return &Error{
		Phase:  PhaseTransform,
		Kind:   KindCancelled,
		Detail: "pass interrupted",
		Cause:  cause,
	}
}

// Load creates a graph loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
