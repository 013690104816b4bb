package qrun

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

/*
ExecutionResult is everything a single run observed: the last state the
program dumped and every message it emitted, in emission order. It is only
written while the evaluation that owns it is in progress.
*/
type ExecutionResult struct {
	States     []BasisState `json:"states" yaml:"states"`
	QubitCount int          `json:"qubit_count" yaml:"qubit_count"`
	Messages   []string     `json:"messages" yaml:"messages"`
}

func NewExecutionResult() *ExecutionResult {
	return &ExecutionResult{
		States:   []BasisState{},
		Messages: []string{},
	}
}

func (r *ExecutionResult) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func (r *ExecutionResult) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
