package grid_world

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the type of a grid cell. Kinds double as the letter used when rendering a cell.
type Kind rune

// Cell kinds
const (
	// Impassable, has no value. Moving into it leaves the agent where it was.
	PROHIBITED Kind = 'F'
	// The agent's origin; valued like a normal cell.
	START Kind = 'S'
	// Absorbing; its value is fixed when created.
	TERMINAL Kind = 'T'
	// A normal cell with its own per-step cost.
	SPECIAL Kind = 'B'
	NORMAL  Kind = 'N'
)

// ErrProhibitedReward is the panic value when a prohibited cell is asked for a reward.
// Prohibited cells are never a movement outcome, so this indicates a broken caller.
var ErrProhibitedReward = errors.New("prohibited cell has no reward")

// ErrUnknownKind is returned when parsing a kind name fails.
var ErrUnknownKind = errors.New("unknown cell kind")

// Cell is the state of one grid position: its kind and numeric payload.
// The fields are unexported so that the kind of an existing cell can't be changed;
// WithValue is the only way to derive a new payload from a cell.
type Cell struct {
	kind     Kind
	value    float64
	moveCost float64
}

func Prohibited() Cell              { return Cell{kind: PROHIBITED} }
func Start(value float64) Cell      { return Cell{kind: START, value: value} }
func Terminal(value float64) Cell   { return Cell{kind: TERMINAL, value: value} }
func Normal(value float64) Cell     { return Cell{kind: NORMAL, value: value} }
func Special(value, moveCost float64) Cell {
	return Cell{kind: SPECIAL, value: value, moveCost: moveCost}
}

func (c Cell) Kind() Kind { return c.kind }

// Value returns the payload. Prohibited cells report zero; use Reward when the caller
// expects a real value.
func (c Cell) Value() float64 { return c.value }

// Reward returns the value of being in this cell. Panics for prohibited cells.
func (c Cell) Reward() float64 {
	if c.kind == PROHIBITED {
		panic(ErrProhibitedReward)
	}
	return c.value
}

// MoveCost returns the cell's own step cost, which only special cells carry.
func (c Cell) MoveCost() (cost float64, ok bool) {
	if c.kind != SPECIAL {
		return 0, false
	}
	return c.moveCost, true
}

// IsMutable reports whether a sweep may change this cell's payload.
func (c Cell) IsMutable() bool {
	return c.kind != PROHIBITED && c.kind != TERMINAL
}

// WithValue returns a cell of the same kind with a new value. Special cells keep their
// move cost. Prohibited cells have no payload and are returned as-is.
func (c Cell) WithValue(value float64) Cell {
	if c.kind == PROHIBITED {
		return c
	}
	c.value = value
	return c
}

// String renders the cell as its kind letter and value, e.g. "N(0.812)". Prohibited
// cells are just "F".
func (c Cell) String() string {
	if c.kind == PROHIBITED {
		return string(rune(PROHIBITED))
	}
	return fmt.Sprintf("%c(%.3f)", c.kind, c.value)
}

// ParseKind accepts either a kind's name (case-insensitive) or its letter.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prohibited", "wall", "f":
		return PROHIBITED, nil
	case "start", "s":
		return START, nil
	case "terminal", "t":
		return TERMINAL, nil
	case "special", "b":
		return SPECIAL, nil
	case "normal", "n":
		return NORMAL, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	switch k {
	case PROHIBITED:
		return "prohibited"
	case START:
		return "start"
	case TERMINAL:
		return "terminal"
	case SPECIAL:
		return "special"
	case NORMAL:
		return "normal"
	}
	return fmt.Sprintf("kind(%d)", rune(k))
}
