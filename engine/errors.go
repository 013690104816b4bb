package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies where in the pipeline an engine error was raised.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	ResolveError
	TypeError
	EntryPointError
	DependencyError
	RuntimeError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax"
	case ResolveError:
		return "resolve"
	case TypeError:
		return "type"
	case EntryPointError:
		return "entry point"
	case DependencyError:
		return "dependency"
	case RuntimeError:
		return "runtime"
	default:
		return "unknown"
	}
}

var (
	ErrMalformedQubitCount = errors.New("malformed qubit count")
	ErrQubitNotReleasable  = errors.New("released qubit not in zero state")
)

/*
Error is a single compile-time or runtime diagnostic produced by the engine.
Span is meaningful only when HasSpan reports true; runtime errors raised in
debug mode also carry a rendered call stack.
*/
type Error struct {
	Kind    ErrorKind
	Message string
	Span    Span
	spanned bool
	trace   string
	cause   error
}

func newError(kind ErrorKind, span Span, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		spanned: true,
	}
}

func newUnspannedError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) HasSpan() bool {
	return e.spanned
}

// StackTrace returns the call stack captured when the error was raised.
func (e *Error) StackTrace() (string, bool) {
	return e.trace, e.trace != ""
}
