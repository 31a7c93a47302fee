package reinforcement

/*
Value iteration for the stochastic grid world. Each sweep applies the Bellman optimality
update to every cell:

	V(s) = max_a [ gamma * sum_s' T(s,a,s') V(s') ] + moveCost(s)

where the environment honors the intended action with probability p1, deviates left and right
with p2 and p3, and reverses with p4. Sweeps are synchronous: every new value is computed from
the previous sweep's grid, which is only swapped out once the whole sweep is done. Updating in
place would let cells later in the sweep see values from earlier in the same sweep, which is
Gauss-Seidel rather than Jacobi iteration and changes the per-sweep results.
*/

import (
	"errors"
	"fmt"
	"math"

	. "gridmdp/grid_world"
	"gridmdp/matrix"
)

// ErrKindChanged means a cell's kind was about to change. Kinds are fixed at creation.
var ErrKindChanged = errors.New("cell kind cannot change")

// The order in which actions are compared when searching for the max. Later actions only
// replace the incumbent on a strict improvement, so ties resolve toward the front.
var tieBreakOrder = []Action{Down, Right, Left, Up}

// Solver owns the grid world and runs value-iteration sweeps over it.
type Solver struct {
	world  *matrix.Matrix[Field]
	params Params
}

func (s *Solver) Width() int     { return s.world.Width() }
func (s *Solver) Height() int    { return s.world.Height() }
func (s *Solver) Params() Params { return s.params }

// Cell returns the cell at (x, y), or false if outside the grid.
func (s *Solver) Cell(x, y int) (Cell, bool) {
	f, ok := s.world.Read(x, y)
	return f.Cell, ok
}

// Field returns the cell and its current policy at (x, y), or false if outside the grid.
func (s *Solver) Field(x, y int) (Field, bool) {
	return s.world.Read(x, y)
}

// Policy returns the optimal action found for (x, y) by the last sweep. It returns false
// outside the grid and for cells that have no policy (terminal and prohibited).
func (s *Solver) Policy(x, y int) (Action, bool) {
	f, ok := s.world.Read(x, y)
	if !ok || !f.HasPolicy() {
		return 0, false
	}
	return f.Policy, true
}

// Snapshot returns a copy of the current grid, e.g. for rendering while the solver continues.
func (s *Solver) Snapshot() *matrix.Matrix[Field] {
	return s.world.Clone()
}

// Update replaces the cell at (x, y) with a cell of the same kind. This is the only mutation
// path outside of building a solver, and it refuses to change a cell's kind.
func (s *Solver) Update(x, y int, c Cell) error {
	f, ok := s.world.Read(x, y)
	if !ok {
		return fmt.Errorf("update (%d,%d): %w", x, y, ErrOutOfRange)
	}
	if f.Cell.Kind() != c.Kind() {
		return fmt.Errorf("update (%d,%d) %v to %v: %w", x, y, f.Cell.Kind(), c.Kind(), ErrKindChanged)
	}
	f.Cell = c
	s.world.Write(x, y, f)
	return nil
}

// ResultingState returns the cell the agent lands in when action a is applied at (x, y).
// Moving off the grid or into a prohibited cell is a bump: the agent stays put and its own
// cell is the result.
func (s *Solver) ResultingState(a Action, x, y int) Cell {
	current, ok := s.world.Read(x, y)
	if !ok {
		panic(fmt.Errorf("resulting state from (%d,%d): %w", x, y, ErrOutOfRange))
	}

	dx, dy := a.Offset()
	if next, ok := s.world.Read(x+dx, y+dy); ok && next.Cell.Kind() != PROHIBITED {
		return next.Cell
	}
	return current.Cell
}

// Outcome returns the probability-weighted reward of the four possible results of
// attempting action a from (x, y).
func (s *Solver) Outcome(a Action, x, y int) float64 {
	forward := s.ResultingState(a, x, y)
	left := s.ResultingState(LeftOf(a), x, y)
	right := s.ResultingState(RightOf(a), x, y)
	backward := s.ResultingState(ReverseOf(a), x, y)

	return s.params.P1*forward.Reward() +
		s.params.P2*left.Reward() +
		s.params.P3*right.Reward() +
		s.params.P4*backward.Reward()
}

// Expected returns the discounted outcome of taking action a from (x, y), plus the cost
// of the step. Special cells override the default step cost with their own.
func (s *Solver) Expected(a Action, x, y int) float64 {
	return s.params.Gamma*s.Outcome(a, x, y) + s.moveCost(x, y)
}

func (s *Solver) moveCost(x, y int) float64 {
	if f, ok := s.world.Read(x, y); ok {
		if cost, isSpecial := f.Cell.MoveCost(); isSpecial {
			return cost
		}
	}
	return s.params.MoveCost
}

// EvaluateField computes the updated field for (x, y) from the current grid, without
// modifying it. Terminal and prohibited cells are returned unchanged.
func (s *Solver) EvaluateField(x, y int) Field {
	f, ok := s.world.Read(x, y)
	if !ok {
		panic(fmt.Errorf("evaluate (%d,%d): %w", x, y, ErrOutOfRange))
	}
	if !f.Cell.IsMutable() {
		return f
	}

	best := tieBreakOrder[0]
	bestVal := s.Expected(best, x, y)
	for _, a := range tieBreakOrder[1:] {
		if val := s.Expected(a, x, y); val > bestVal {
			best, bestVal = a, val
		}
	}

	return Field{
		Cell:   f.Cell.WithValue(bestVal),
		Policy: best,
	}
}

// Evaluate runs one sweep over the whole grid and returns its error: the sum of the
// absolute value changes over all cells. A zero error means the grid is a fixed point.
func (s *Solver) Evaluate() (sweepErr float64) {
	next := s.world.Clone()
	s.world.ForEach(func(x, y int, prev Field) {
		updated := s.EvaluateField(x, y)
		sweepErr += delta(prev.Cell, updated.Cell)
		next.Write(x, y, updated)
	})
	s.world = next
	return
}

// Returns the magnitude of the payload change between two versions of a cell.
// Panics if the kinds differ, which the update rules make impossible.
func delta(prev, next Cell) float64 {
	if prev.Kind() != next.Kind() {
		panic(fmt.Errorf("%v became %v: %w", prev, next, ErrKindChanged))
	}
	if prev.Kind() == PROHIBITED {
		return 0
	}
	return math.Abs(next.Value() - prev.Value())
}
