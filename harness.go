/*
Package qrun runs Q# source text against the embedded engine and captures
what the program observably did: the messages it emitted and the last
quantum state it dumped.
*/
package qrun

import "github.com/theapemachine/qrun/engine"

// Option configures a Harness.
type Option func(*Harness)

func WithConfig(config *Config) Option {
	return func(h *Harness) {
		h.config = config
	}
}

func WithSink(sink DiagnosticSink) Option {
	return func(h *Harness) {
		h.sink = sink
	}
}

/*
Harness owns the configuration and diagnostics sink shared by runs. Runs
share no mutable state, so one Harness may serve several goroutines.
*/
type Harness struct {
	config *Config
	sink   DiagnosticSink
}

func New(opts ...Option) *Harness {
	h := &Harness{
		config: NewConfig(),
		sink:   defaultSink(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// sourceMap wraps the text as a single virtual file.
func (h *Harness) sourceMap(source string) *engine.SourceMap {
	return engine.NewSourceMap(
		[]engine.SourceFile{{Name: h.config.SourceName, Contents: source}},
		h.config.PackagePrefix,
	)
}

func (h *Harness) contextOptions() []engine.Option {
	if h.config.Seed == 0 {
		return nil
	}
	return []engine.Option{engine.WithSeed(h.config.Seed)}
}
