package server

import (
	"sync/atomic"

	"gridmdp/atomic_float"
)

// Status tracks training progress. It is written by the training loop and read
// by the status handler, without locking.
type Status struct {
	sweeps    atomic.Int64
	lastError atomic_float.AtomicFloat64
	converged atomic.Bool
	finished  atomic.Bool
}

// StatusReport is the json body of the status endpoint.
type StatusReport struct {
	Sweeps    int64   `json:"sweeps"`
	LastError float64 `json:"last_error"`
	Converged bool    `json:"converged"`
	Finished  bool    `json:"finished"`
}

func NewStatus() *Status {
	return &Status{}
}

// Record notes a completed sweep.
func (st *Status) Record(sweep int, sweepErr float64) {
	st.lastError.Store(sweepErr)
	st.sweeps.Store(int64(sweep))
}

// Finish notes the end of training.
func (st *Status) Finish(converged bool) {
	st.converged.Store(converged)
	st.finished.Store(true)
}

func (st *Status) Report() StatusReport {
	return StatusReport{
		Sweeps:    st.sweeps.Load(),
		LastError: st.lastError.Load(),
		Converged: st.converged.Load(),
		Finished:  st.finished.Load(),
	}
}
