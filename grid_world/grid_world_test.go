package grid_world

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gridmdp/matrix"

	. "github.com/smartystreets/goconvey/convey"
)

func TestActions(t *testing.T) {
	Convey("Action rotations", t, func() {
		Convey("LeftOf rotates counter-clockwise", func() {
			So(LeftOf(Up), ShouldEqual, Left)
			So(LeftOf(Left), ShouldEqual, Down)
			So(LeftOf(Down), ShouldEqual, Right)
			So(LeftOf(Right), ShouldEqual, Up)
		})

		Convey("RightOf rotates clockwise", func() {
			So(RightOf(Up), ShouldEqual, Right)
			So(RightOf(Left), ShouldEqual, Up)
			So(RightOf(Down), ShouldEqual, Left)
			So(RightOf(Right), ShouldEqual, Down)
		})

		Convey("ReverseOf pairs opposites", func() {
			So(ReverseOf(Right), ShouldEqual, Left)
			So(ReverseOf(Up), ShouldEqual, Down)
			So(ReverseOf(Down), ShouldEqual, Up)
			So(ReverseOf(Left), ShouldEqual, Right)
		})

		Convey("They form consistent group relations", func() {
			for _, a := range Actions {
				So(LeftOf(LeftOf(LeftOf(LeftOf(a)))), ShouldEqual, a)
				So(RightOf(RightOf(RightOf(RightOf(a)))), ShouldEqual, a)
				So(ReverseOf(ReverseOf(a)), ShouldEqual, a)
				So(LeftOf(ReverseOf(a)), ShouldEqual, RightOf(a))
				So(RightOf(LeftOf(a)), ShouldEqual, a)
				So(LeftOf(LeftOf(a)), ShouldEqual, ReverseOf(a))
			}
		})

		Convey("Offsets use a top-left origin", func() {
			dx, dy := Up.Offset()
			So([]int{dx, dy}, ShouldResemble, []int{0, -1})
			dx, dy = Down.Offset()
			So([]int{dx, dy}, ShouldResemble, []int{0, 1})
			dx, dy = Left.Offset()
			So([]int{dx, dy}, ShouldResemble, []int{-1, 0})
			dx, dy = Right.Offset()
			So([]int{dx, dy}, ShouldResemble, []int{1, 0})
		})

		Convey("Actions render as arrows", func() {
			So(Up.String(), ShouldEqual, "^")
			So(Down.String(), ShouldEqual, "v")
			So(Left.String(), ShouldEqual, "<")
			So(Right.String(), ShouldEqual, ">")
		})
	})
}

func TestCells(t *testing.T) {
	Convey("Cells", t, func() {
		Convey("Render as a letter and a three decimal value", func() {
			So(Prohibited().String(), ShouldEqual, "F")
			So(Start(0.5).String(), ShouldEqual, "S(0.500)")
			So(Terminal(-1).String(), ShouldEqual, "T(-1.000)")
			So(Special(0.81156, -2).String(), ShouldEqual, "B(0.812)")
			So(Normal(0).String(), ShouldEqual, "N(0.000)")
		})

		Convey("WithValue preserves the kind", func() {
			for _, c := range []Cell{Start(1), Terminal(1), Special(1, -0.5), Normal(1)} {
				updated := c.WithValue(4.2)
				So(updated.Kind(), ShouldEqual, c.Kind())
				So(updated.Value(), ShouldEqual, 4.2)
			}
			cost, ok := Special(1, -0.5).WithValue(3).MoveCost()
			So(ok, ShouldBeTrue)
			So(cost, ShouldEqual, -0.5)
			So(Prohibited().WithValue(3), ShouldResemble, Prohibited())
		})

		Convey("Only special cells carry a move cost", func() {
			_, ok := Normal(1).MoveCost()
			So(ok, ShouldBeFalse)
		})

		Convey("Terminal and prohibited cells are immutable", func() {
			So(Terminal(1).IsMutable(), ShouldBeFalse)
			So(Prohibited().IsMutable(), ShouldBeFalse)
			So(Start(0).IsMutable(), ShouldBeTrue)
			So(Special(0, 0).IsMutable(), ShouldBeTrue)
			So(Normal(0).IsMutable(), ShouldBeTrue)
		})

		Convey("Asking a prohibited cell for a reward panics", func() {
			So(func() { Prohibited().Reward() }, ShouldPanicWith, ErrProhibitedReward)
			So(Terminal(-1).Reward(), ShouldEqual, -1)
		})

		Convey("Kinds parse from names or letters", func() {
			for in, want := range map[string]Kind{
				"prohibited": PROHIBITED, "F": PROHIBITED, "Start": START,
				"terminal": TERMINAL, "b": SPECIAL, " normal ": NORMAL,
			} {
				kind, err := ParseKind(in)
				So(err, ShouldBeNil)
				So(kind, ShouldEqual, want)
			}
			_, err := ParseKind("lava")
			So(errors.Is(err, ErrUnknownKind), ShouldBeTrue)
		})

		Convey("Fields append the policy arrow to mutable cells", func() {
			So(Field{Cell: Normal(0.5), Policy: Right}.String(), ShouldEqual, "N(0.500)>")
			So(Field{Cell: Terminal(1), Policy: Right}.String(), ShouldEqual, "T(1.000)")
		})
	})
}

func TestDisplay(t *testing.T) {
	Convey("Given a small grid", t, func() {
		fields := matrix.New(Field{Cell: Normal(0), Policy: Up}, 3, 2)
		fields.Write(1, 0, Field{Cell: Prohibited()})
		fields.Write(2, 0, Field{Cell: Terminal(1)})
		fields.Write(0, 1, Field{Cell: Start(0.25), Policy: Right})

		buf := &bytes.Buffer{}
		display := NewDisplay(buf, false)

		Convey("ShowGrid prints kind letters row by row", func() {
			display.ShowGrid(fields)
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldEqual, " N F T ")
			So(lines[1], ShouldEqual, " S N N ")
		})

		Convey("ShowPolicy prints arrows for mutable cells", func() {
			display.ShowPolicy(fields)
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			So(lines[0], ShouldEqual, " ^ F T ")
			So(lines[1], ShouldEqual, " > ^ ^ ")
		})

		Convey("ShowValues prints cell text and the mutable total", func() {
			display.ShowValues(fields)
			out := buf.String()
			So(out, ShouldContainSubstring, "S(0.250)")
			So(out, ShouldContainSubstring, "T(1.000)")
			So(out, ShouldContainSubstring, "Total: 0.250")
		})
	})
}
