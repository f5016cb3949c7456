// Package mqerr defines the error kinds raised across the mq language
// implementation: lexing, parsing, module resolution, and evaluation.
package mqerr

import "fmt"

// Kind identifies the category of an mq error. Kinds are part of the
// contract (spec §7); message wording is not.
type Kind string

const (
	KindLex            Kind = "LexError"
	KindParse          Kind = "ParseError"
	KindType           Kind = "TypeError"
	KindArity          Kind = "ArityError"
	KindName           Kind = "NameError"
	KindDivByZero      Kind = "DivByZero"
	KindIndexRange     Kind = "IndexOutOfRange"
	KindRegex          Kind = "RegexError"
	KindAssertion      Kind = "AssertionFailed"
	KindRecursionLimit Kind = "RecursionLimit"
	KindIterationLimit Kind = "IterationLimit"
	KindModuleNotFound Kind = "ModuleNotFound"
	KindCycle          Kind = "CycleError"
	// KindIO marks a failure ingesting raw input text into a value
	// (mq.Engine.ingestOne): a markdown/mdx/html document that fails to
	// parse. There is no `read_file` built-in — spec §9's non-goal "no
	// file I/O beyond include/--rawfile" rules one out — so this is
	// IoError's only producer; see DESIGN.md for the disclosed drop.
	KindIO Kind = "IoError"
	// KindHalt is raised by the `halt` builtin: an intentional,
	// non-catchable termination of the current input's evaluation.
	KindHalt Kind = "Halt"
)

// Span is a source location: 1-based line/column, column counted in code
// points, plus a byte offset used for update-mode splicing.
type Span struct {
	Line   int
	Column int
	Offset int
}

// Error is the concrete error type returned by every layer of mq. It
// carries a kind, a span, a call stack (populated by the evaluator) and
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Span    Span
	Stack   []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Span.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d, column %d)", e.Kind, e.Message, e.Span.Line, e.Span.Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Catchable reports whether this error kind may be caught by try/catch or
// suppressed by a safe-call (`?`). LexError, ParseError, ModuleNotFound,
// and CycleError are fatal for the query and are never catchable.
func (e *Error) Catchable() bool {
	switch e.Kind {
	case KindLex, KindParse, KindModuleNotFound, KindCycle, KindHalt:
		return false
	default:
		return true
	}
}

// New builds an Error with the given kind and formatted message.
func New(kind Kind, span Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

// Wrap builds an Error that carries a wrapped cause, mirroring the
// teacher's exec.Command error-wrapping idiom in internal/latex/render.go.
func Wrap(kind Kind, span Span, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span, Cause: cause}
}

// WithStackFrame prepends a call-stack frame, used by the evaluator as an
// error propagates out of nested function calls.
func (e *Error) WithStackFrame(frame string) *Error {
	cp := *e
	cp.Stack = append([]string{frame}, e.Stack...)
	return &cp
}
