package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 that may be shared between goroutines without locking,
// e.g. the latest sweep error, written by the training loop and read by http handlers.
// The zero value holds 0.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 returns an AtomicFloat64 holding val.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.Store(val)
	return af
}

func (af *AtomicFloat64) Load() float64 {
	return math.Float64frombits(af.bits.Load())
}

func (af *AtomicFloat64) Store(val float64) {
	af.bits.Store(math.Float64bits(val))
}

// CompareAndSwap sets the value to new only if it still holds old.
// Comparison is bitwise, so NaN can be swapped out and 0 does not match -0.
func (af *AtomicFloat64) CompareAndSwap(old, new float64) (swapped bool) {
	return af.bits.CompareAndSwap(math.Float64bits(old), math.Float64bits(new))
}

// Add adds addend, retrying until no other writer intervenes, and returns the new value.
func (af *AtomicFloat64) Add(addend float64) (newVal float64) {
	for {
		old := af.Load()
		newVal = old + addend
		if af.CompareAndSwap(old, newVal) {
			return
		}
	}
}
