// cell_views contains views derived from the Cell view-model.
package cell_views

import (
	"fmt"

	gw "gridmdp/grid_world"
	"gridmdp/matrix"
)

// Cell flattens a grid field into values immediately usable as view parameters.
// Cells are indexed [x][y], with [0][0] the top left cell as printed in the console,
// which is also the origin of the svg coordinate system.
type Cell struct {
	X, Y  int
	Value float64
	// Text is the value as displayed; empty for prohibited cells.
	Text string
	// HasPolicy is false for terminal and prohibited cells, whose arrows are hidden.
	HasPolicy           bool
	PolicyArrowRotation int
	Fill                string
}

// Convert transforms a grid snapshot into Cells for consumption by the values-views.
func Convert(fields *matrix.Matrix[gw.Field]) (cells [][]Cell) {
	cells = make([][]Cell, fields.Width())
	for x := range cells {
		cells[x] = make([]Cell, fields.Height())
	}

	fields.ForEach(func(x, y int, field gw.Field) {
		cell := Cell{
			X:         x,
			Y:         y,
			HasPolicy: field.HasPolicy(),
			Fill:      getFill(field.Cell.Kind()),
		}
		if field.Cell.Kind() != gw.PROHIBITED {
			cell.Value = field.Cell.Value()
			cell.Text = formatValue(cell.Value)
		}
		if cell.HasPolicy {
			cell.PolicyArrowRotation = field.Policy.Degrees()
		}
		cells[x][y] = cell
	})
	return
}

func formatValue(val float64) string {
	return fmt.Sprintf("%.3f", val)
}

// Arrows of cells without a policy are hidden rather than removed, so that their
// elements keep existing for subsequent updates.
func getVisibility(hasPolicy bool) string {
	if hasPolicy {
		return "visible"
	}
	return "hidden"
}

func getFill(kind gw.Kind) (fill string) {
	switch kind {
	case gw.PROHIBITED:
		fill = "dimgray"
	case gw.START:
		fill = "lightblue"
	case gw.TERMINAL:
		fill = "lightyellow"
	case gw.SPECIAL:
		fill = "lightpink"
	default:
		fill = "white"
	}
	return
}
