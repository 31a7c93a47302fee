package atomic_float

import (
	"math"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicFloat64(t *testing.T) {
	Convey("Given an atomic float", t, func() {
		af := NewAtomicFloat64(1.5)

		Convey("Loads what was stored", func() {
			So(af.Load(), ShouldEqual, 1.5)
			af.Store(-0.25)
			So(af.Load(), ShouldEqual, -0.25)
			af.Store(math.Inf(1))
			So(math.IsInf(af.Load(), 1), ShouldBeTrue)
		})

		Convey("Swaps only from the expected value", func() {
			So(af.CompareAndSwap(2.0, 3.0), ShouldBeFalse)
			So(af.Load(), ShouldEqual, 1.5)
			So(af.CompareAndSwap(1.5, 3.0), ShouldBeTrue)
			So(af.Load(), ShouldEqual, 3.0)
		})

		Convey("The zero value is zero", func() {
			var zero AtomicFloat64
			So(zero.Load(), ShouldEqual, 0)
			So(zero.Add(2), ShouldEqual, 2)
		})

		Convey("When multiple writers add concurrently", func() {
			numOps := 3000
			numWriters := 200
			af.Store(0)

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters * 2)
			adder := func(addend float64) {
				defer wg.Done()
				<-start
				for i := 0; i < numOps; i++ {
					af.Add(addend)
				}
			}

			for i := 0; i < numWriters; i++ {
				go adder(1.0)
				go adder(2.0)
			}
			close(start)
			wg.Wait()

			So(af.Load(), ShouldEqual, float64(3*numOps*numWriters))
		})
	})
}
