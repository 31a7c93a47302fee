package reinforcement

import (
	"errors"
	"fmt"
	"math"
)

// Configuration errors. Every error returned while building a solver wraps ErrMalformedConfig
// plus one of the more specific errors below, so callers may test for either.
var (
	ErrMalformedConfig = errors.New("malformed configuration")
	ErrProbabilities   = errors.New("transition probabilities must be non-negative and sum to one")
	ErrGamma           = errors.New("gamma must be in (0,1]")
	ErrDimensions      = errors.New("grid dimensions must be non-negative")
	ErrOutOfRange      = errors.New("coordinate outside the grid")
	ErrContradiction   = errors.New("contradictory cell definition")
	ErrNotFinite       = errors.New("values and move costs must be finite")
)

// Tolerance when checking that the transition probabilities sum to one.
const probabilityTolerance = 1e-9

// Params are the MDP parameters, fixed for the life of a Solver.
// P1..P4 are the probabilities that the environment applies, respectively, the intended
// action, its left deviation, its right deviation, and its reverse.
type Params struct {
	// Gamma discounts the expected successor value.
	Gamma float64
	// MoveCost is added once per step, for every cell but special ones.
	MoveCost float64
	P1, P2, P3, P4 float64
}

// DefaultParams are those of the classic 4x3 grid world.
func DefaultParams() Params {
	return Params{
		Gamma:    1.0,
		MoveCost: -0.04,
		P1:       0.8,
		P2:       0.1,
		P3:       0.1,
		P4:       0.0,
	}
}

// DeriveP4 returns the reverse probability implied by the other three. This is only a
// convenience; a result that doesn't make a valid distribution still fails Validate.
func DeriveP4(p1, p2, p3 float64) float64 {
	return math.Abs(1 - p1 - p2 - p3)
}

// Validate checks gamma, the move cost and the transition distribution.
func (p Params) Validate() error {
	if !(p.Gamma > 0 && p.Gamma <= 1) {
		return fmt.Errorf("%w: %w: got %v", ErrMalformedConfig, ErrGamma, p.Gamma)
	}
	if !isFinite(p.MoveCost) {
		return fmt.Errorf("%w: %w: move cost %v", ErrMalformedConfig, ErrNotFinite, p.MoveCost)
	}

	probs := []float64{p.P1, p.P2, p.P3, p.P4}
	sum := 0.0
	for _, prob := range probs {
		if prob < 0 || math.IsNaN(prob) {
			return fmt.Errorf("%w: %w: got %v", ErrMalformedConfig, ErrProbabilities, probs)
		}
		sum += prob
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return fmt.Errorf("%w: %w: %v sums to %v", ErrMalformedConfig, ErrProbabilities, probs, sum)
	}

	return nil
}

// Normalized returns a copy whose probabilities are rescaled to sum to one.
// Params whose probabilities are negative or all zero can't be rescaled and are returned unchanged.
func (p Params) Normalized() Params {
	sum := p.P1 + p.P2 + p.P3 + p.P4
	if sum <= 0 || p.P1 < 0 || p.P2 < 0 || p.P3 < 0 || p.P4 < 0 {
		return p
	}
	p.P1 /= sum
	p.P2 /= sum
	p.P3 /= sum
	p.P4 /= sum
	return p
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
