// matrix is a small generic 2d container with bounds-checked access.
// It knows nothing about the values it stores; the grid world and solver
// build on it.
package matrix

// Matrix is a rectangular table of values addressed by (x, y), where x is the column
// and y is the row, both counted from zero at the top left. Out of range accesses are
// reported to the caller rather than panicking, since bumping into the grid edge is a
// normal event for the solver.
type Matrix[T any] struct {
	// Stored row-major, e.g. data[y][x].
	data          [][]T
	width, height int
}

// New returns a width x height matrix with every position set to defaultValue.
// A zero (or negative) dimension yields an empty matrix.
func New[T any](defaultValue T, width, height int) *Matrix[T] {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}

	data := make([][]T, height)
	for y := range data {
		row := make([]T, width)
		for x := range row {
			row[x] = defaultValue
		}
		data[y] = row
	}

	return &Matrix[T]{
		data:   data,
		width:  width,
		height: height,
	}
}

func (m *Matrix[T]) Width() int  { return m.width }
func (m *Matrix[T]) Height() int { return m.height }

// InRange reports whether (x, y) addresses a position in the matrix.
func (m *Matrix[T]) InRange(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// Read returns the value at (x, y), or false if the position is outside the matrix.
func (m *Matrix[T]) Read(x, y int) (value T, ok bool) {
	if !m.InRange(x, y) {
		return
	}
	return m.data[y][x], true
}

// Write replaces the value at (x, y). It returns false and leaves the matrix untouched
// if the position is outside the matrix.
func (m *Matrix[T]) Write(x, y int, value T) bool {
	if !m.InRange(x, y) {
		return false
	}
	m.data[y][x] = value
	return true
}

// ForEach visits every position exactly once, row by row.
func (m *Matrix[T]) ForEach(fn func(x, y int, value T)) {
	for y, row := range m.data {
		for x, value := range row {
			fn(x, y, value)
		}
	}
}

// Clone returns an independent copy. Elements are copied by value, so a matrix of
// plain structs shares nothing with its clone.
func (m *Matrix[T]) Clone() *Matrix[T] {
	data := make([][]T, len(m.data))
	for y, row := range m.data {
		data[y] = append(make([]T, 0, len(row)), row...)
	}
	return &Matrix[T]{
		data:   data,
		width:  m.width,
		height: m.height,
	}
}
