package grid_world

import (
	"fmt"
	"io"

	"gridmdp/matrix"

	"github.com/logrusorgru/aurora"
)

// Display prints grid snapshots to a console. Since the grid is stored with its origin at
// the top left, rows print in storage order; no reverse iteration is needed.
type Display struct {
	out io.Writer
	au  aurora.Aurora
}

// NewDisplay returns a display writing to out, colorized if colors is set.
func NewDisplay(out io.Writer, colors bool) *Display {
	return &Display{
		out: out,
		au:  aurora.NewAurora(colors),
	}
}

// ShowGrid prints the kind letter of every cell, for visual reference.
func (d *Display) ShowGrid(fields *matrix.Matrix[Field]) {
	d.eachRow(fields, func(f Field) interface{} {
		return d.paint(f.Cell, fmt.Sprintf("%c ", f.Cell.Kind()))
	})
}

// ShowValues prints every cell in its textual form, e.g. "N(0.812)", and the total of the
// mutable values as a crude progress measure.
func (d *Display) ShowValues(fields *matrix.Matrix[Field]) {
	total := 0.0
	d.eachRow(fields, func(f Field) interface{} {
		if f.Cell.IsMutable() {
			total += f.Cell.Value()
		}
		return d.paint(f.Cell, fmt.Sprintf("%-10s", f.Cell.String()))
	})
	fmt.Fprintf(d.out, "Total: %.3f\n", total)
}

// ShowPolicy prints the current policy as an arrow per cell. Cells without a policy are
// printed as their kind letter.
func (d *Display) ShowPolicy(fields *matrix.Matrix[Field]) {
	d.eachRow(fields, func(f Field) interface{} {
		if !f.HasPolicy() {
			return d.paint(f.Cell, fmt.Sprintf("%c ", f.Cell.Kind()))
		}
		return d.au.Bold(f.Policy.String() + " ")
	})
}

func (d *Display) eachRow(fields *matrix.Matrix[Field], fn func(Field) interface{}) {
	for y := 0; y < fields.Height(); y++ {
		fmt.Fprint(d.out, " ")
		for x := 0; x < fields.Width(); x++ {
			f, _ := fields.Read(x, y)
			fmt.Fprint(d.out, fn(f))
		}
		fmt.Fprintln(d.out)
	}
}

// Terminal cells are colored by sign; prohibited cells are faint.
func (d *Display) paint(c Cell, s string) interface{} {
	switch c.Kind() {
	case PROHIBITED:
		return d.au.Faint(s)
	case TERMINAL:
		if c.Value() < 0 {
			return d.au.Red(s)
		}
		return d.au.Green(s)
	case START:
		return d.au.Cyan(s)
	case SPECIAL:
		return d.au.Yellow(s)
	}
	return d.au.Blue(s)
}
