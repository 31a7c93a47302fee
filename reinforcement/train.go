package reinforcement

import (
	"context"

	. "gridmdp/grid_world"
	"gridmdp/matrix"

	channerics "github.com/niceyeti/channerics/channels"
)

// Progress describes the sweep that just completed.
type Progress struct {
	Sweep int
	Error float64
	// Fields is a snapshot of the grid after the sweep; the receiver may keep it.
	Fields *matrix.Matrix[Field]
}

// ProgressFunc is a callback by which the training loop lends progress details,
// while exercising some level of control over its cancellation to prevent blocking.
// ProgressFunc is synchronous/blocking and should be defined to complete quickly.
type ProgressFunc func(context.Context, Progress)

// Result summarizes a training run.
type Result struct {
	Sweeps    int
	Error     float64
	Converged bool
	// Errors holds the error of every sweep, in order.
	Errors []float64
}

// Train sweeps the solver until the sweep error falls below the configured threshold,
// the maximum number of sweeps is reached, or the context is done. Running out of sweeps
// is not an error; check Result.Converged. A done context returns the partial result with
// the context's error.
func Train(
	ctx context.Context,
	solver *Solver,
	config *TrainingConfig,
	progressFn ProgressFunc,
) (result Result, err error) {
	threshold := config.GetThresholdOrDefault()
	maxSweeps := config.GetMaxSweepsOrDefault()

	var pace = func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	// Optionally throttle sweeps, so that views have something to watch.
	interval, err := config.PaceDuration()
	if err != nil {
		return result, err
	}
	if interval > 0 {
		ticker := channerics.NewTicker(ctx.Done(), interval)
		pace = func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case _, ok := <-ticker:
				if !ok {
					return ctx.Err()
				}
				return nil
			}
		}
	}

	for result.Sweeps < maxSweeps {
		if err = pace(); err != nil {
			return
		}

		sweepErr := solver.Evaluate()
		result.Sweeps++
		result.Error = sweepErr
		result.Errors = append(result.Errors, sweepErr)

		if progressFn != nil {
			progressFn(ctx, Progress{
				Sweep:  result.Sweeps,
				Error:  sweepErr,
				Fields: solver.Snapshot(),
			})
		}

		if sweepErr < threshold {
			result.Converged = true
			return
		}
	}

	return
}
