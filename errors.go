package qrun

import (
	"errors"
	"fmt"

	"github.com/theapemachine/qrun/engine"
)

// ErrorKind separates failures while building a context from failures
// while evaluating it.
type ErrorKind int

const (
	ContextError ErrorKind = iota + 1
	ExecutionError
)

func (k ErrorKind) String() string {
	switch k {
	case ContextError:
		return "context error"
	case ExecutionError:
		return "execution error"
	default:
		return "unknown error"
	}
}

var (
	ErrContext   = errors.New("context error")
	ErrExecution = errors.New("execution error")
)

// SourceSpan locates a diagnostic in the virtual source file.
type SourceSpan struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Lo     int    `json:"lo" yaml:"lo"`
	Hi     int    `json:"hi" yaml:"hi"`
}

// Diagnostic is one engine error, kept after it has been reported.
type Diagnostic struct {
	Kind       string      `json:"kind" yaml:"kind"`
	Message    string      `json:"message" yaml:"message"`
	Span       *SourceSpan `json:"span,omitempty" yaml:"span,omitempty"`
	StackTrace string      `json:"stack_trace,omitempty" yaml:"stack_trace,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Span == nil {
		return fmt.Sprintf("%s error: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s error: %s", d.Span.File, d.Span.Line, d.Span.Column, d.Kind, d.Message)
}

func newDiagnostic(sources *engine.SourceMap, err *engine.Error) Diagnostic {
	diag := Diagnostic{
		Kind:    err.Kind.String(),
		Message: err.Message,
	}

	if src, ok := sources.FindByDiagnostic(err); ok {
		line, column := src.Position(err.Span.Lo)
		diag.Span = &SourceSpan{
			File:   sources.DisplayName(src),
			Line:   line,
			Column: column,
			Lo:     err.Span.Lo - src.Offset,
			Hi:     err.Span.Hi - src.Offset,
		}
	}

	if trace, ok := err.StackTrace(); ok {
		diag.StackTrace = trace
	}

	return diag
}

/*
RunError is the single error a run returns. Kind says which phase failed;
Diagnostics keeps every engine error behind it, in the order reported.
*/
type RunError struct {
	Kind        ErrorKind
	RunID       string
	Diagnostics []Diagnostic
	causes      []error
}

func newRunError(kind ErrorKind, runID string, diags []Diagnostic, errs []*engine.Error) *RunError {
	causes := make([]error, 0, len(errs))
	for _, err := range errs {
		causes = append(causes, err)
	}
	return &RunError{Kind: kind, RunID: runID, Diagnostics: diags, causes: causes}
}

func (e *RunError) Error() string {
	if len(e.Diagnostics) == 0 {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Diagnostics[0].Message
}

func (e *RunError) Is(target error) bool {
	switch target {
	case ErrContext:
		return e.Kind == ContextError
	case ErrExecution:
		return e.Kind == ExecutionError
	}
	return false
}

// Unwrap exposes the engine errors behind the run.
func (e *RunError) Unwrap() []error {
	return e.causes
}

func IsContextError(err error) bool {
	return errors.Is(err, ErrContext)
}

func IsExecutionError(err error) bool {
	return errors.Is(err, ErrExecution)
}
