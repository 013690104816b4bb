package qrun

import "github.com/theapemachine/qrun/engine"

/*
Compile checks source without evaluating it. For every error the source it
resolves to is written to the sink, or the raw error when it points nowhere.
The returned diagnostics may be ignored.
*/
func (h *Harness) Compile(source string) []Diagnostic {
	store := engine.NewPackageStore(engine.Core())
	dependencies := []engine.PackageID{}

	unit, errs := engine.Compile(store, dependencies, h.sourceMap(source))

	diags := make([]Diagnostic, 0, len(errs))
	for _, err := range errs {
		if src, ok := unit.Sources.FindByDiagnostic(err); ok {
			h.sink.Error(debugForm(src))
		} else {
			h.sink.Error(debugForm(err))
		}
		diags = append(diags, newDiagnostic(unit.Sources, err))
	}

	return diags
}
