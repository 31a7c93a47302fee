package grid_world

// Field is a cell paired with the action found optimal for it during the last sweep.
// The action is only meaningful for cells a sweep updates; terminal and prohibited
// cells keep whatever the solver initialized them with.
type Field struct {
	Cell   Cell
	Policy Action
}

// HasPolicy reports whether the field's action is meaningful.
func (f Field) HasPolicy() bool {
	return f.Cell.IsMutable()
}

func (f Field) String() string {
	if !f.HasPolicy() {
		return f.Cell.String()
	}
	return f.Cell.String() + f.Policy.String()
}
