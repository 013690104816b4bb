package engine

import (
	"errors"
	"math"
	"math/big"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type captured struct {
	states     []BasisAmplitude
	qubitCount int
	messages   []string
	dumps      int
	failWith   error
}

func (c *captured) State(states []BasisAmplitude, qubitCount int) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.states = states
	c.qubitCount = qubitCount
	c.dumps++
	return nil
}

func (c *captured) Message(msg string) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.messages = append(c.messages, msg)
	return nil
}

func singleFile(source string) *SourceMap {
	return NewSourceMap([]SourceFile{{Name: "temp.qs", Contents: source}}, "")
}

func program(body string) string {
	return `
namespace Test {
    @EntryPoint()
    operation Main() : Unit {
` + body + `
    }
}`
}

func TestFormatStateID(t *testing.T) {
	Convey("Given basis indices and qubit counts", t, func() {
		Convey("It should pad to the qubit count", func() {
			id, err := FormatStateID(big.NewInt(1), 3)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "|001⟩")

			id, err = FormatStateID(big.NewInt(6), 3)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "|110⟩")
		})

		Convey("It should render the zero-qubit state", func() {
			id, err := FormatStateID(big.NewInt(0), 0)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "|0⟩")
		})

		Convey("It should reject indices that do not fit", func() {
			_, err := FormatStateID(big.NewInt(4), 2)
			So(errors.Is(err, ErrMalformedQubitCount), ShouldBeTrue)

			_, err = FormatStateID(big.NewInt(0), -1)
			So(errors.Is(err, ErrMalformedQubitCount), ShouldBeTrue)
		})
	})
}

func TestSourceMap(t *testing.T) {
	Convey("Given a source map with two files", t, func() {
		sm := NewSourceMap([]SourceFile{
			{Name: "a.qs", Contents: "line one\nline two"},
			{Name: "b.qs", Contents: "other"},
		}, "project")

		Convey("Offsets should resolve to their file", func() {
			src, ok := sm.Find(3)
			So(ok, ShouldBeTrue)
			So(src.Name, ShouldEqual, "a.qs")

			second := sm.Sources()[1]
			src, ok = sm.Find(second.Offset + 2)
			So(ok, ShouldBeTrue)
			So(src.Name, ShouldEqual, "b.qs")
			So(sm.DisplayName(src), ShouldEqual, "project/b.qs")

			_, ok = sm.Find(-1)
			So(ok, ShouldBeFalse)
		})

		Convey("Positions should be one-based", func() {
			src := sm.Sources()[0]
			line, col := src.Position(10)
			So(line, ShouldEqual, 2)
			So(col, ShouldEqual, 1)
		})

		Convey("Unspanned errors should not resolve", func() {
			_, ok := sm.FindByDiagnostic(newUnspannedError(EntryPointError, "missing"))
			So(ok, ShouldBeFalse)

			src, ok := sm.FindByDiagnostic(newError(SyntaxError, Span{Lo: 1, Hi: 2}, "bad"))
			So(ok, ShouldBeTrue)
			So(src.Name, ShouldEqual, "a.qs")
		})
	})
}

func TestCore(t *testing.T) {
	Convey("Given the core package", t, func() {
		core := Core()

		Convey("It should list its intrinsics in sorted order", func() {
			names := core.Intrinsics()
			So(names, ShouldContain, "Message")
			So(names, ShouldContain, "DumpMachine")
			So(sort.StringsAreSorted(names), ShouldBeTrue)
		})
	})
}

func TestCompile(t *testing.T) {
	Convey("Given the compile entry point", t, func() {
		store := NewPackageStore(Core())

		Convey("Valid source should compile cleanly", func() {
			unit, errs := Compile(store, nil, singleFile(program(`Message("hi");`)))
			So(errs, ShouldBeEmpty)
			So(unit.Package.Callables(), ShouldResemble, []string{"Test.Main"})
		})

		Convey("Syntax errors should carry a span into the source", func() {
			unit, errs := Compile(store, nil, singleFile(program(`Message("hi")`)))
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Kind, ShouldEqual, SyntaxError)

			src, ok := unit.Sources.FindByDiagnostic(errs[0])
			So(ok, ShouldBeTrue)
			So(src.Name, ShouldEqual, "temp.qs")
		})

		Convey("Unknown names and arity mismatches should be reported", func() {
			_, errs := Compile(store, nil, singleFile(program(`Frobnicate(); H(); Message(missing);`)))
			So(errs, ShouldHaveLength, 3)
			So(errs[0].Kind, ShouldEqual, ResolveError)
			So(errs[1].Kind, ShouldEqual, TypeError)
			So(errs[2].Kind, ShouldEqual, ResolveError)
		})

		Convey("Updating an immutable binding should be rejected", func() {
			_, errs := Compile(store, nil, singleFile(program(`let x = 1; set x = 2;`)))
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Message, ShouldContainSubstring, "immutable")
		})

		Convey("Unknown dependencies should be reported without a span", func() {
			_, errs := Compile(store, []PackageID{42}, singleFile(program("")))
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Kind, ShouldEqual, DependencyError)
			So(errs[0].HasSpan(), ShouldBeFalse)
		})
	})
}

func TestNewContext(t *testing.T) {
	Convey("Given sources without a usable entry point", t, func() {
		Convey("A missing entry point should fail construction", func() {
			_, errs := NewContext(true, singleFile(`namespace A { operation Main() : Unit {} }`))
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Kind, ShouldEqual, EntryPointError)
		})

		Convey("An entry point with parameters should fail construction", func() {
			_, errs := NewContext(true, singleFile(`namespace A { @EntryPoint() operation Main(n : Int) : Unit {} }`))
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Message, ShouldContainSubstring, "cannot have parameters")
		})
	})
}

func TestEval(t *testing.T) {
	Convey("Given a compiled context", t, func() {
		run := func(body string, opts ...Option) (*captured, Value, []*Error) {
			ctx, errs := NewContext(true, singleFile(program(body)), opts...)
			So(errs, ShouldBeEmpty)
			rec := &captured{}
			value, errs := ctx.Eval(rec)
			return rec, value, errs
		}

		Convey("Messages should arrive in order", func() {
			rec, value, errs := run(`Message("A"); Message("B"); Message("A");`)
			So(errs, ShouldBeEmpty)
			So(value, ShouldResemble, Unit)
			So(rec.messages, ShouldResemble, []string{"A", "B", "A"})
		})

		Convey("A Bell pair should dump two equal amplitudes", func() {
			rec, _, errs := run(`
        use qs = Qubit[2];
        H(qs[0]);
        CNOT(qs[0], qs[1]);
        DumpMachine();
        ResetAll(qs);`)
			So(errs, ShouldBeEmpty)
			So(rec.qubitCount, ShouldEqual, 2)
			So(rec.states, ShouldHaveLength, 2)
			So(rec.states[0].Index.Int64(), ShouldEqual, 0)
			So(rec.states[1].Index.Int64(), ShouldEqual, 3)
			So(real(rec.states[0].Amplitude), ShouldAlmostEqual, 1/math.Sqrt2, 1e-12)
		})

		Convey("The first allocated qubit should be the leftmost label bit", func() {
			rec, _, errs := run(`
        use qs = Qubit[2];
        X(qs[0]);
        DumpMachine();
        ResetAll(qs);`)
			So(errs, ShouldBeEmpty)
			So(rec.states, ShouldHaveLength, 1)
			id, err := FormatStateID(rec.states[0].Index, rec.qubitCount)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "|10⟩")
		})

		Convey("Released qubits should no longer be counted", func() {
			rec, _, errs := run(`
        use a = Qubit();
        if true {
            use b = Qubit();
        }
        DumpMachine();`)
			So(errs, ShouldBeEmpty)
			So(rec.qubitCount, ShouldEqual, 1)
		})

		Convey("Control flow and interpolation should evaluate", func() {
			rec, _, errs := run(`
        mutable total = 0;
        for i in 1..4 {
            set total = total + i;
        }
        if total == 10 and not false {
            Message($"total = {total}");
        } else {
            Message("wrong");
        }`)
			So(errs, ShouldBeEmpty)
			So(rec.messages, ShouldResemble, []string{"total = 10"})
		})

		Convey("fail should produce a runtime error with a stack trace", func() {
			_, _, errs := run(`fail "boom";`)
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Kind, ShouldEqual, RuntimeError)
			So(errs[0].Message, ShouldEqual, "program failed: boom")

			trace, ok := errs[0].StackTrace()
			So(ok, ShouldBeTrue)
			So(trace, ShouldContainSubstring, "at Test.Main in temp.qs:5:")
		})

		Convey("Releasing a qubit outside |0⟩ should fail", func() {
			_, _, errs := run(`use q = Qubit(); X(q);`)
			So(errs, ShouldHaveLength, 1)
			So(errors.Is(errs[0], ErrQubitNotReleasable), ShouldBeTrue)
			So(errs[0].Message, ShouldContainSubstring, "released qubit not in zero state")
		})

		Convey("Receiver errors should abort evaluation", func() {
			ctx, errs := NewContext(false, singleFile(program(`Message("x");`)))
			So(errs, ShouldBeEmpty)
			boom := errors.New("sink closed")
			_, errs = ctx.Eval(&captured{failWith: boom})
			So(errs, ShouldHaveLength, 1)
			So(errors.Is(errs[0], boom), ShouldBeTrue)

			_, ok := errs[0].StackTrace()
			So(ok, ShouldBeFalse)
		})

		Convey("Seeded measurements should be reproducible", func() {
			body := `
        use qs = Qubit[8];
        for i in 0..7 {
            H(qs[i]);
        }
        for i in 0..7 {
            Message($"{M(qs[i])}");
        }
        ResetAll(qs);`
			first, _, errs := run(body, WithSeed(7))
			So(errs, ShouldBeEmpty)
			second, _, errs := run(body, WithSeed(7))
			So(errs, ShouldBeEmpty)
			So(first.messages, ShouldResemble, second.messages)
			So(first.messages, ShouldHaveLength, 8)
		})

		Convey("Unbounded recursion should fail at the depth limit", func() {
			ctx, errs := NewContext(true, singleFile(`
namespace R {
    operation Loop(n : Int) : Unit {
        Loop(n + 1);
    }

    @EntryPoint()
    operation Main() : Unit {
        Loop(0);
    }
}`))
			So(errs, ShouldBeEmpty)
			_, errs = ctx.Eval(&captured{})
			So(errs, ShouldHaveLength, 1)
			So(errs[0].Kind, ShouldEqual, RuntimeError)
			So(errs[0].Message, ShouldContainSubstring, "call stack depth exceeded")

			trace, ok := errs[0].StackTrace()
			So(ok, ShouldBeTrue)
			So(trace, ShouldContainSubstring, "at R.Loop in temp.qs:4:")
			So(trace, ShouldContainSubstring, "more frame(s)")
		})

		Convey("Return values should propagate out of the entry point", func() {
			ctx, errs := NewContext(true, singleFile(`
namespace Test {
    function Double(x : Int) : Int {
        return x * 2;
    }

    @EntryPoint()
    operation Main() : Int {
        return Double(21);
    }
}`))
			So(errs, ShouldBeEmpty)
			value, errs := ctx.Eval(&captured{})
			So(errs, ShouldBeEmpty)
			So(value.String(), ShouldEqual, "42")
		})
	})
}
