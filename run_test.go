package qrun

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/qrun/engine"
)

const helloSource = `
    namespace MyQuantumApp {
        @EntryPoint()
        operation Main() : Unit {
            Message("Hello");
        }
    }`

const bellSource = `
namespace Bell {
    @EntryPoint()
    operation Main() : Unit {
        use qs = Qubit[2];
        H(qs[0]);
        CNOT(qs[0], qs[1]);
        Message("prepared");
        DumpMachine();
        ResetAll(qs);
    }
}`

func newTestHarness() (*Harness, *MemorySink) {
	sink := NewMemorySink()
	return New(WithSink(sink)), sink
}

func TestRunHello(t *testing.T) {
	Convey("Given a program that only emits a message", t, func() {
		h, sink := newTestHarness()

		result, err := h.Run(helloSource)

		Convey("It should capture the message and no state", func() {
			So(err, ShouldBeNil)
			So(result.Messages, ShouldResemble, []string{"Hello"})
			So(result.QubitCount, ShouldEqual, 0)
			So(result.States, ShouldHaveLength, 0)
		})

		Convey("It should print the unit return value", func() {
			So(sink.Outputs(), ShouldResemble, []string{"()"})
			So(sink.Errors(), ShouldBeEmpty)
		})
	})
}

func TestRunOrdering(t *testing.T) {
	Convey("Given a program emitting repeated messages", t, func() {
		h, _ := newTestHarness()

		result, err := h.Run(`
namespace Order {
    @EntryPoint()
    operation Main() : Unit {
        Message("A");
        Message("B");
        Message("A");
    }
}`)

		So(err, ShouldBeNil)
		So(result.Messages, ShouldResemble, []string{"A", "B", "A"})
	})
}

func TestRunState(t *testing.T) {
	Convey("Given a program that dumps a Bell pair", t, func() {
		h, _ := newTestHarness()

		result, err := h.Run(bellSource)

		So(err, ShouldBeNil)
		So(result.QubitCount, ShouldEqual, 2)
		So(result.States, ShouldHaveLength, 2)
		So(result.States[0].ID, ShouldEqual, "|00⟩")
		So(result.States[1].ID, ShouldEqual, "|11⟩")
		So(result.States[0].Probability(), ShouldAlmostEqual, 0.5, 1e-12)
		So(result.Messages, ShouldResemble, []string{"prepared"})

		Convey("A second run should have the same shape", func() {
			again, err := h.Run(bellSource)
			So(err, ShouldBeNil)
			So(again.Messages, ShouldResemble, result.Messages)
			So(again.QubitCount, ShouldEqual, result.QubitCount)
			So(again.States, ShouldHaveLength, len(result.States))
			for i := range again.States {
				So(again.States[i].ID, ShouldEqual, result.States[i].ID)
			}
		})
	})
}

func TestRunContextError(t *testing.T) {
	Convey("Given syntactically invalid source", t, func() {
		h, sink := newTestHarness()

		result, err := h.Run(`namespace Broken { operation Main( : Unit {} }`)

		So(result, ShouldBeNil)
		So(IsContextError(err), ShouldBeTrue)
		So(IsExecutionError(err), ShouldBeFalse)

		var runErr *RunError
		So(errors.As(err, &runErr), ShouldBeTrue)
		So(runErr.Kind, ShouldEqual, ContextError)
		So(runErr.RunID, ShouldNotBeEmpty)
		So(runErr.Diagnostics, ShouldHaveLength, 1)
		So(runErr.Diagnostics[0].Kind, ShouldEqual, "syntax")
		So(runErr.Diagnostics[0].Span, ShouldNotBeNil)
		So(runErr.Diagnostics[0].Span.File, ShouldEqual, "temp.qs")

		errs := sink.Errors()
		So(errs, ShouldHaveLength, 1)
		So(errs[0], ShouldStartWith, "error: ")
		So(sink.Outputs(), ShouldBeEmpty)
	})

	Convey("Given empty source", t, func() {
		h, _ := newTestHarness()

		_, err := h.Run("")

		So(IsContextError(err), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "context error: entry point not found")
	})
}

func TestRunExecutionError(t *testing.T) {
	Convey("Given a program that fails at runtime", t, func() {
		h, sink := newTestHarness()

		result, err := h.Run(`
namespace Failing {
    @EntryPoint()
    operation Main() : Unit {
        Message("before");
        fail "boom";
    }
}`)

		So(result, ShouldBeNil)
		So(IsExecutionError(err), ShouldBeTrue)

		var runErr *RunError
		So(errors.As(err, &runErr), ShouldBeTrue)
		So(runErr.Diagnostics, ShouldHaveLength, 1)
		So(runErr.Diagnostics[0].Message, ShouldEqual, "program failed: boom")
		So(runErr.Diagnostics[0].Span.Line, ShouldEqual, 6)
		So(runErr.Diagnostics[0].StackTrace, ShouldContainSubstring, "at Failing.Main in temp.qs:6:9")

		Convey("The trace should precede the error line", func() {
			errs := sink.Errors()
			So(errs, ShouldHaveLength, 2)
			So(errs[0], ShouldStartWith, "Error: program failed: boom")
			So(errs[1], ShouldStartWith, "error: ")
			So(errs[1], ShouldContainSubstring, "program failed: boom")
		})
	})

	Convey("Given a program that leaves a qubit in |1⟩", t, func() {
		h, _ := newTestHarness()

		_, err := h.Run(`namespace Q { @EntryPoint() operation Main() : Unit { use q = Qubit(); X(q); } }`)

		So(IsExecutionError(err), ShouldBeTrue)
		So(errors.Is(err, engine.ErrQubitNotReleasable), ShouldBeTrue)

		var engineErr *engine.Error
		So(errors.As(err, &engineErr), ShouldBeTrue)
		So(engineErr.Kind, ShouldEqual, engine.RuntimeError)
	})

	Convey("Given unbounded recursion", t, func() {
		h, sink := newTestHarness()

		_, err := h.Run(`
namespace R {
    operation Loop(n : Int) : Unit {
        Loop(n + 1);
    }

    @EntryPoint()
    operation Main() : Unit {
        Loop(0);
    }
}`)

		So(IsExecutionError(err), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "call stack depth exceeded")
		So(sink.Errors(), ShouldHaveLength, 2)
	})

	Convey("Given debug mode is off", t, func() {
		config := NewConfig()
		config.Debug = false
		sink := NewMemorySink()
		h := New(WithConfig(config), WithSink(sink))

		_, err := h.Run(`namespace F { @EntryPoint() operation Main() : Unit { fail "x"; } }`)

		So(IsExecutionError(err), ShouldBeTrue)
		So(sink.Errors(), ShouldHaveLength, 1)
	})
}

func TestRunSeeded(t *testing.T) {
	Convey("Given a seeded harness", t, func() {
		config := NewConfig()
		config.Seed = 11
		h := New(WithConfig(config), WithSink(NewMemorySink()))

		source := `
namespace Coins {
    @EntryPoint()
    operation Main() : Unit {
        use qs = Qubit[6];
        for i in 0..5 {
            H(qs[i]);
            Message($"{MResetZ(qs[i])}");
        }
    }
}`

		first, err := h.Run(source)
		So(err, ShouldBeNil)
		second, err := h.Run(source)
		So(err, ShouldBeNil)
		So(second.Messages, ShouldResemble, first.Messages)
	})
}
