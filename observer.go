package qrun

import "github.com/theapemachine/qrun/engine"

// recorder is the engine.Receiver a run hands to evaluation. It writes
// straight into the result it wraps.
type recorder struct {
	result *ExecutionResult
}

func newRecorder(result *ExecutionResult) *recorder {
	return &recorder{result: result}
}

// State replaces whatever was recorded before. A malformed qubit count leaves
// the previous state untouched.
func (rec *recorder) State(states []engine.BasisAmplitude, qubitCount int) error {
	captured := make([]BasisState, 0, len(states))

	for _, state := range states {
		id, err := engine.FormatStateID(state.Index, qubitCount)
		if err != nil {
			return err
		}

		captured = append(captured, BasisState{
			ID:                 id,
			AmplitudeReal:      real(state.Amplitude),
			AmplitudeImaginary: imag(state.Amplitude),
		})
	}

	rec.result.States = captured
	rec.result.QubitCount = qubitCount
	return nil
}

func (rec *recorder) Message(msg string) error {
	rec.result.Messages = append(rec.result.Messages, msg)
	return nil
}
