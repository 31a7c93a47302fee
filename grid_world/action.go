package grid_world

// Action is one of the four directions the agent may attempt to move in.
// The environment only honors the intended direction with some probability;
// LeftOf, RightOf and ReverseOf give the deviations.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
)

// Actions lists every action, e.g. for ranging over.
var Actions = []Action{Up, Down, Left, Right}

// LeftOf rotates the action 90° counter-clockwise: Up→Left→Down→Right→Up.
func LeftOf(a Action) Action {
	switch a {
	case Up:
		return Left
	case Left:
		return Down
	case Down:
		return Right
	default:
		return Up
	}
}

// RightOf rotates the action 90° clockwise: Up→Right→Down→Left→Up.
func RightOf(a Action) Action {
	switch a {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	default:
		return Up
	}
}

// ReverseOf returns the opposite action.
func ReverseOf(a Action) Action {
	switch a {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Offset returns the displacement of the action. The origin is the top left cell,
// so Up decrements the row and Down increments it.
func (a Action) Offset() (dx, dy int) {
	switch a {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

// String returns the arrow glyph for the action.
func (a Action) String() string {
	switch a {
	case Up:
		return "^"
	case Down:
		return "v"
	case Left:
		return "<"
	case Right:
		return ">"
	}
	return "?"
}

// Degrees returns the clockwise svg rotation of an upward arrow pointing in this direction.
func (a Action) Degrees() int {
	switch a {
	case Right:
		return 90
	case Down:
		return 180
	case Left:
		return 270
	}
	return 0
}
