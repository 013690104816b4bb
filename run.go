package qrun

import (
	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qrun/engine"
)

// Run executes source with a default Harness.
func Run(source string) (*ExecutionResult, error) {
	return New().Run(source)
}

/*
Run compiles and evaluates source once. It returns either a populated
ExecutionResult or a *RunError, never both. Diagnostics are written to the
sink before Run returns, whether or not the caller looks at the error.
*/
func (h *Harness) Run(source string) (*ExecutionResult, error) {
	runID := uuid.NewString()
	errnie.Info("run %s: %d bytes of source", runID, len(source))

	return h.execute(runID, source)
}

func (h *Harness) execute(runID, source string) (*ExecutionResult, error) {
	sources := h.sourceMap(source)

	ctx, errs := engine.NewContext(h.config.Debug, sources, h.contextOptions()...)
	if len(errs) > 0 {
		errnie.Info("run %s: context construction failed with %d error(s)", runID, len(errs))
		return nil, newRunError(ContextError, runID, h.report(sources, errs), errs)
	}

	errnie.Info("run %s: evaluating %s", runID, ctx.EntryPoint())

	result := NewExecutionResult()
	value, errs := ctx.Eval(newRecorder(result))
	if len(errs) > 0 {
		errnie.Info("run %s: evaluation failed with %d error(s)", runID, len(errs))
		return nil, newRunError(ExecutionError, runID, h.report(sources, errs), errs)
	}

	h.sink.Output(value.String())
	errnie.Info(
		"run %s: %d message(s), %d basis state(s) over %d qubit(s)",
		runID, len(result.Messages), len(result.States), result.QubitCount,
	)

	return result, nil
}

// report writes each error's stack trace, if any, and debug form to the sink.
func (h *Harness) report(sources *engine.SourceMap, errs []*engine.Error) []Diagnostic {
	diags := make([]Diagnostic, 0, len(errs))

	for _, err := range errs {
		diag := newDiagnostic(sources, err)
		if diag.StackTrace != "" {
			h.sink.Error(diag.StackTrace)
		}
		h.sink.Error("error: " + debugForm(diag))
		diags = append(diags, diag)
	}

	return diags
}
