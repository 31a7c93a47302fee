package cell_views

import (
	"bytes"
	"context"
	"html/template"
	"testing"
	"time"

	gw "gridmdp/grid_world"
	"gridmdp/matrix"
	"gridmdp/server/fastview"

	. "github.com/smartystreets/goconvey/convey"
)

// A 3x2 grid:
//
//	N F T
//	S N B
func testFields() *matrix.Matrix[gw.Field] {
	fields := matrix.New(gw.Field{Cell: gw.Normal(0), Policy: gw.Down}, 3, 2)
	fields.Write(0, 0, gw.Field{Cell: gw.Normal(0.5), Policy: gw.Right})
	fields.Write(1, 0, gw.Field{Cell: gw.Prohibited(), Policy: gw.Down})
	fields.Write(2, 0, gw.Field{Cell: gw.Terminal(1), Policy: gw.Down})
	fields.Write(0, 1, gw.Field{Cell: gw.Start(-0.25), Policy: gw.Up})
	fields.Write(2, 1, gw.Field{Cell: gw.Special(0.125, -1), Policy: gw.Left})
	return fields
}

func testFuncs() template.FuncMap {
	return template.FuncMap{
		"add":  func(i, j int) int { return i + j },
		"sub":  func(i, j int) int { return i - j },
		"mult": func(i, j int) int { return i * j },
		"div":  func(i, j int) int { return i / j },
	}
}

func TestConvert(t *testing.T) {
	Convey("Converting a grid snapshot to cells", t, func() {
		cells := Convert(testFields())

		So(cells, ShouldHaveLength, 3)
		So(cells[0], ShouldHaveLength, 2)

		So(cells[0][0], ShouldResemble, Cell{
			X: 0, Y: 0, Value: 0.5, Text: "0.500",
			HasPolicy: true, PolicyArrowRotation: 90, Fill: "white",
		})
		So(cells[1][0], ShouldResemble, Cell{X: 1, Y: 0, Fill: "dimgray"})
		So(cells[2][0], ShouldResemble, Cell{X: 2, Y: 0, Value: 1, Text: "1.000", Fill: "lightyellow"})
		So(cells[0][1], ShouldResemble, Cell{
			X: 0, Y: 1, Value: -0.25, Text: "-0.250",
			HasPolicy: true, PolicyArrowRotation: 0, Fill: "lightblue",
		})
		So(cells[1][1].PolicyArrowRotation, ShouldEqual, 180)
		So(cells[2][1].PolicyArrowRotation, ShouldEqual, 270)
		So(cells[2][1].Fill, ShouldEqual, "lightpink")
	})

	Convey("Every grid world kind has a fill", t, func() {
		fills := map[gw.Kind]string{
			gw.NORMAL:     "white",
			gw.START:      "lightblue",
			gw.TERMINAL:   "lightyellow",
			gw.SPECIAL:    "lightpink",
			gw.PROHIBITED: "dimgray",
		}
		for kind, fill := range fills {
			So(getFill(kind), ShouldEqual, fill)
		}
		So(Cell{Fill: getFill(gw.Normal(1).Kind())}.Fill, ShouldEqual, "white")
	})

	Convey("Converting an empty grid", t, func() {
		So(Convert(matrix.New(gw.Field{}, 0, 0)), ShouldBeEmpty)
	})
}

func TestValuesGrid(t *testing.T) {
	Convey("Given a values grid", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		cellUpdates := make(chan [][]Cell)
		vg := NewValuesGrid(ctx.Done(), cellUpdates)

		Convey("It emits updates for values and policy arrows", func() {
			go func() {
				cellUpdates <- Convert(testFields())
			}()

			var updates []fastview.EleUpdate
			select {
			case updates = <-vg.Updates():
			case <-time.After(time.Second):
			}

			// six value texts, and arrows for every cell but the wall and terminal
			So(updates, ShouldHaveLength, 10)
			So(updates, ShouldContain, fastview.EleUpdate{
				EleId: "0-0-value-text",
				Ops:   []fastview.Op{{Key: "textContent", Value: "0.500"}},
			})
			So(updates, ShouldContain, fastview.EleUpdate{
				EleId: "0-0-policy-arrow",
				Ops:   []fastview.Op{{Key: "transform", Value: "rotate(90)"}},
			})
			So(updates, ShouldContain, fastview.EleUpdate{
				EleId: "1-0-value-text",
				Ops:   []fastview.Op{{Key: "textContent", Value: ""}},
			})
		})

		Convey("Its template renders the initial cells", func() {
			parent := template.New("index").Funcs(testFuncs())
			name, err := vg.Parse(parent)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "valuesgrid")

			var buf bytes.Buffer
			So(parent.ExecuteTemplate(&buf, name, Convert(testFields())), ShouldBeNil)
			html := buf.String()
			So(html, ShouldContainSubstring, `id="valuesgrid"`)
			So(html, ShouldContainSubstring, `width="301px"`)
			So(html, ShouldContainSubstring, `height="201px"`)
			So(html, ShouldContainSubstring, `id="2-1-value-text"`)
			So(html, ShouldContainSubstring, "0.125")
			So(html, ShouldContainSubstring, `fill="lightyellow"`)
			So(html, ShouldContainSubstring, `visibility="hidden"`)
		})
	})
}
