package reinforcement

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTrain(t *testing.T) {
	Convey("Training the standard world", t, func() {
		solver := standardWorld()
		ctx := context.Background()

		Convey("Converges below the threshold", func() {
			var reports []Progress
			result, err := Train(ctx, solver, &TrainingConfig{}, func(_ context.Context, p Progress) {
				reports = append(reports, p)
			})
			So(err, ShouldBeNil)
			So(result.Converged, ShouldBeTrue)
			So(result.Error, ShouldBeLessThan, DefaultThreshold)
			So(result.Sweeps, ShouldBeLessThan, DefaultMaxSweeps)
			So(result.Errors, ShouldHaveLength, result.Sweeps)
			So(result.Errors[0], ShouldAlmostEqual, 1.08, 1e-9)

			So(reports, ShouldHaveLength, result.Sweeps)
			for i, report := range reports {
				So(report.Sweep, ShouldEqual, i+1)
				So(report.Error, ShouldEqual, result.Errors[i])
			}

			last := reports[len(reports)-1].Fields
			f, _ := last.Read(0, 0)
			So(f.Cell.Value(), ShouldAlmostEqual, 0.8116, 1e-3)
			c, _ := solver.Cell(0, 0)
			So(c.Value(), ShouldEqual, f.Cell.Value())
		})

		Convey("Stops after the maximum number of sweeps", func() {
			result, err := Train(ctx, solver, &TrainingConfig{MaxSweeps: 3}, nil)
			So(err, ShouldBeNil)
			So(result.Converged, ShouldBeFalse)
			So(result.Sweeps, ShouldEqual, 3)
			So(result.Errors, ShouldHaveLength, 3)
		})

		Convey("Honors the pace", func() {
			result, err := Train(ctx, solver, &TrainingConfig{MaxSweeps: 3, Pace: "1ms"}, nil)
			So(err, ShouldBeNil)
			So(result.Sweeps, ShouldEqual, 3)
		})

		Convey("Rejects a malformed pace", func() {
			_, err := Train(ctx, solver, &TrainingConfig{Pace: "fast"}, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Stops when the context is done", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			result, err := Train(cancelled, solver, &TrainingConfig{}, nil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(result.Sweeps, ShouldEqual, 0)
		})

		Convey("Stops when cancelled mid-run", func() {
			running, cancel := context.WithCancel(ctx)
			defer cancel()
			result, err := Train(running, solver, &TrainingConfig{}, func(_ context.Context, p Progress) {
				if p.Sweep == 5 {
					cancel()
				}
			})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(result.Sweeps, ShouldEqual, 5)
			So(result.Converged, ShouldBeFalse)
		})
	})
}
