/*
Package engine is a small interpreter for a subset of Q#. It compiles
in-memory sources, binds them to an entry point and evaluates them on a
dense state-vector simulator, reporting messages and machine dumps through
a Receiver.
*/
package engine

import "math/rand/v2"

// Option configures a Context.
type Option func(*Context)

// WithSeed makes measurement outcomes reproducible across evaluations.
func WithSeed(seed uint64) Option {
	return func(c *Context) {
		c.seed = seed
		c.seeded = true
	}
}

/*
Context is a compiled program bound to its entry point, ready to evaluate.
It is stateless between evaluations: every Eval starts from an empty
simulator, so the same Context can be evaluated repeatedly.
*/
type Context struct {
	debug  bool
	unit   *CompileUnit
	entry  *callable
	table  *lookupTable
	seed   uint64
	seeded bool
}

/*
NewContext compiles the sources against the core package and locates the
single parameterless @EntryPoint() callable. In debug mode runtime errors
carry a rendered call stack.
*/
func NewContext(debug bool, sources *SourceMap, opts ...Option) (*Context, []*Error) {
	store := NewPackageStore(Core())
	unit, errs := Compile(store, nil, sources)
	if len(errs) > 0 {
		return nil, errs
	}

	var entry *callable
	for _, c := range unit.Package.ordered() {
		if !c.entryPoint {
			continue
		}
		if entry != nil {
			return nil, []*Error{newError(EntryPointError, c.span, "duplicate entry point `%s`", c.qualifiedName())}
		}
		entry = c
	}

	if entry == nil {
		return nil, []*Error{newUnspannedError(EntryPointError, "entry point not found")}
	}
	if len(entry.params) > 0 {
		return nil, []*Error{newError(EntryPointError, entry.span, "entry point `%s` cannot have parameters", entry.qualifiedName())}
	}

	ctx := &Context{
		debug: debug,
		unit:  unit,
		entry: entry,
		table: newLookupTable(unit.Package, []*Package{store.Core()}),
	}
	for _, opt := range opts {
		opt(ctx)
	}

	return ctx, nil
}

func (c *Context) Sources() *SourceMap {
	return c.unit.Sources
}

// EntryPoint returns the qualified name of the callable Eval runs.
func (c *Context) EntryPoint() string {
	return c.entry.qualifiedName()
}

/*
Eval runs the entry point once, reporting side effects to receiver. On
failure the returned slice holds the runtime error that stopped evaluation.
*/
func (c *Context) Eval(receiver Receiver) (Value, []*Error) {
	seed := c.seed
	if !c.seeded {
		seed = rand.Uint64()
	}

	e := &evaluator{
		ctx:      c,
		receiver: receiver,
		sim:      newSimulator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
	}

	value, err := e.invoke(c.entry, nil, c.entry.span)
	if err != nil {
		return nil, []*Error{err}
	}

	return value, nil
}
