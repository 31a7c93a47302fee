// Package history persists training runs: a summary of each run and its per-sweep errors.
package history

import (
	"context"
	"errors"
	"time"

	"gridmdp/reinforcement"

	"github.com/google/uuid"
)

var (
	ErrNotInitialized     = errors.New("store is not initialized")
	ErrUnsupportedBackend = errors.New("unsupported store backend")
)

// Run summarizes one training run.
type Run struct {
	ID            string
	Width, Height int
	Params        reinforcement.Params
	Sweeps        int
	Converged     bool
	FinalError    float64
	Started       time.Time
}

// NewRun starts a run record with a fresh id.
func NewRun(width, height int, params reinforcement.Params) Run {
	return Run{
		ID:      uuid.NewString(),
		Width:   width,
		Height:  height,
		Params:  params,
		Started: time.Now().UTC(),
	}
}

// Complete records a training result in the run.
func (r *Run) Complete(result reinforcement.Result) {
	r.Sweeps = result.Sweeps
	r.Converged = result.Converged
	r.FinalError = result.Error
}

// Store defines persistence operations for training runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	SaveErrorHistory(ctx context.Context, runID string, errors []float64) error
	GetErrorHistory(ctx context.Context, runID string) ([]float64, bool, error)
	Close() error
}
