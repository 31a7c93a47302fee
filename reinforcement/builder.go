package reinforcement

import (
	"fmt"

	. "gridmdp/grid_world"
	"gridmdp/matrix"
)

// The policy given to every field before the first sweep; it is the first action tried.
var initialPolicy = tieBreakOrder[0]

type override struct {
	cell Cell
	x, y int
}

// Builder collects a grid's dimensions, parameters and cell overrides, and validates them
// all at once in Build. Cells not overridden are Normal(0).
//
//	solver, err := NewBuilder(4, 3).
//		WithParams(DefaultParams()).
//		WithCell(Start(0), 0, 2).
//		WithCell(Prohibited(), 1, 1).
//		Build()
type Builder struct {
	width, height int
	params        Params
	overrides     []override
}

// NewBuilder returns a builder for a width x height grid using DefaultParams.
func NewBuilder(width, height int) *Builder {
	return &Builder{
		width:  width,
		height: height,
		params: DefaultParams(),
	}
}

// WithParams sets the MDP parameters.
func (b *Builder) WithParams(params Params) *Builder {
	b.params = params
	return b
}

// WithCell places a cell at (x, y). Overrides are applied in the order given, so a later
// override of the same position replaces an earlier one.
func (b *Builder) WithCell(c Cell, x, y int) *Builder {
	b.overrides = append(b.overrides, override{cell: c, x: x, y: y})
	return b
}

// Build validates the configuration and returns a solver. No solver is returned if
// anything is invalid.
func (b *Builder) Build() (*Solver, error) {
	if b.width < 0 || b.height < 0 {
		return nil, fmt.Errorf("%w: %w: %dx%d", ErrMalformedConfig, ErrDimensions, b.width, b.height)
	}
	if err := b.params.Validate(); err != nil {
		return nil, err
	}

	world := matrix.New(Field{Cell: Normal(0), Policy: initialPolicy}, b.width, b.height)
	for _, o := range b.overrides {
		if cost, ok := o.cell.MoveCost(); !isFinite(o.cell.Value()) || (ok && !isFinite(cost)) {
			return nil, fmt.Errorf("%w: %w: %v at (%d,%d)",
				ErrMalformedConfig, ErrNotFinite, o.cell, o.x, o.y)
		}
		if !world.Write(o.x, o.y, Field{Cell: o.cell, Policy: initialPolicy}) {
			return nil, fmt.Errorf("%w: %w: %v at (%d,%d) in a %dx%d grid",
				ErrMalformedConfig, ErrOutOfRange, o.cell, o.x, o.y, b.width, b.height)
		}
	}

	return &Solver{
		world:  world,
		params: b.params,
	}, nil
}
