package qrun

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompile(t *testing.T) {
	Convey("Given valid source", t, func() {
		h, sink := newTestHarness()

		So(h.Compile(helloSource), ShouldBeEmpty)
		So(sink.Errors(), ShouldBeEmpty)
	})

	Convey("Given source with resolution errors", t, func() {
		h, sink := newTestHarness()

		diags := h.Compile(`
namespace A {
    operation Main() : Unit {
        Missing();
        Message(nowhere);
    }
}`)

		So(diags, ShouldHaveLength, 2)
		So(diags[0].Message, ShouldContainSubstring, "Missing")
		So(diags[0].Span.Line, ShouldEqual, 4)
		So(diags[1].Message, ShouldContainSubstring, "nowhere")

		Convey("Each error should emit the source it resolved to", func() {
			errs := sink.Errors()
			So(errs, ShouldHaveLength, 2)
			So(errs[0], ShouldContainSubstring, `Name: (string) (len=7) "temp.qs"`)
		})
	})

	Convey("Given a prefixed harness", t, func() {
		config := NewConfig()
		config.PackagePrefix = "project"
		h := New(WithConfig(config), WithSink(NewMemorySink()))

		diags := h.Compile("namespace A { operation Main() : Unit { H(); } }")
		So(diags, ShouldHaveLength, 1)
		So(diags[0].Kind, ShouldEqual, "type")
		So(diags[0].Span.File, ShouldEqual, "project/temp.qs")
	})
}
