// Package report renders an interactive HTML view of a calibration fit using
// go-echarts, for inspecting individual samples after a run.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/surfacelab/leedcal/internal/leed"
)

const fitLineSegments = 60

// WriteHTML writes an interactive scatter of the samples with the fitted
// line overlaid to path.
func WriteHTML(samples []leed.Sample, fit leed.FitResult, base leed.BaseType, path string) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "LEED calibration " + base.String()}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Calibration fit " + base.String(),
			Subtitle: fmt.Sprintf("r' = %.2f, intercept = %.2f, samples = %d", fit.RPrime, fit.Intercept, len(samples)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "sin θ", Max: 0.6}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "X'", Max: 500}),
	)

	data := make([]opts.ScatterData, 0, len(samples))
	for _, s := range samples {
		data = append(data, opts.ScatterData{Value: []interface{}{s.SinTheta, s.X}})
	}
	scatter.AddSeries("samples", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	line := charts.NewLine()
	lineData := make([]opts.LineData, 0, fitLineSegments+1)
	for i := 0; i <= fitLineSegments; i++ {
		s := 0.6 * float64(i) / fitLineSegments
		lineData = append(lineData, opts.LineData{Value: []interface{}{s, fit.PredictX(s)}})
	}
	line.AddSeries(fmt.Sprintf("r' = %.2f", fit.RPrime), lineData)
	scatter.Overlap(line)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
