// Package chart renders training diagnostics as standalone html pages.
package chart

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoData = errors.New("no sweep errors to plot")

// Convergence writes a line chart of the error of each sweep.
func Convergence(w io.Writer, title string, sweepErrors []float64) error {
	if len(sweepErrors) == 0 {
		return ErrNoData
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d sweeps, final error %.3g", len(sweepErrors), sweepErrors[len(sweepErrors)-1]),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sweep"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "error", Type: "log"}),
	)

	sweeps := make([]string, 0, len(sweepErrors))
	items := make([]opts.LineData, 0, len(sweepErrors))
	for i, sweepErr := range sweepErrors {
		sweeps = append(sweeps, fmt.Sprintf("%d", i+1))
		items = append(items, opts.LineData{Value: sweepErr})
	}

	line.SetXAxis(sweeps).AddSeries("sweep error", items)

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}
