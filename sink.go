package qrun

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

/*
DiagnosticSink receives what a run prints as a side effect: the program's
final value on Output, diagnostics and stack traces on Error. Nothing sent
here is part of the ExecutionResult.
*/
type DiagnosticSink interface {
	Output(text string)
	Error(text string)
}

// StreamSink writes values verbatim to out and diagnostics through a logger.
type StreamSink struct {
	out    io.Writer
	logger *log.Logger
}

func NewStreamSink(out, errOut io.Writer) *StreamSink {
	return &StreamSink{
		out: out,
		logger: log.NewWithOptions(errOut, log.Options{
			Prefix: "qrun",
			Level:  log.ErrorLevel,
		}),
	}
}

func defaultSink() *StreamSink {
	return NewStreamSink(os.Stdout, os.Stderr)
}

func (s *StreamSink) Output(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *StreamSink) Error(text string) {
	s.logger.Error(text)
}

// MemorySink keeps both channels in memory.
type MemorySink struct {
	mu      sync.Mutex
	outputs []string
	errors  []string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Output(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs = append(m.outputs, text)
}

func (m *MemorySink) Error(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, text)
}

func (m *MemorySink) Outputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.outputs...)
}

func (m *MemorySink) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}
