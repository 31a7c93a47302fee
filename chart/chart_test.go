package chart

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConvergence(t *testing.T) {
	Convey("Rendering a convergence chart", t, func() {
		var buf bytes.Buffer

		Convey("Produces an html page", func() {
			err := Convergence(&buf, "4x3 world", []float64{1.08, 0.4, 0.01})
			So(err, ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "<html")
			So(buf.String(), ShouldContainSubstring, "4x3 world")
			So(buf.String(), ShouldContainSubstring, "sweep error")
		})

		Convey("Requires some data", func() {
			So(Convergence(&buf, "empty", nil), ShouldEqual, ErrNoData)
			So(buf.Len(), ShouldEqual, 0)
		})
	})
}
