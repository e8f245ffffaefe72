// Package leedplot renders the calibration scatter (sin theta vs X) with the
// fitted line overlaid.
package leedplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/surfacelab/leedcal/internal/leed"
)

// Axis limits matching the instrument's working range.
const (
	maxSinTheta = 0.6
	maxX        = 500.0
)

// lineSegments is the sampling density of the fitted-line overlay.
const lineSegments = 100

// SaveScatter writes a scatter plot of the accumulated samples with the
// fitted calibration line to path (format chosen by extension, e.g. .png or
// .svg). manualR, when non-zero, is a hand-computed reference value shown
// alongside the fitted slope in the legend.
func SaveScatter(samples []leed.Sample, fit leed.FitResult, base leed.BaseType, manualR float64, path string) error {
	p := plot.New()
	p.Title.Text = base.String()
	p.X.Label.Text = "sin θ"
	p.Y.Label.Text = "X'"
	p.X.Min, p.X.Max = 0, maxSinTheta
	p.Y.Min, p.Y.Max = 0, maxX

	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i] = plotter.XY{X: s.SinTheta, Y: s.X}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)

	line, err := plotter.NewLine(fitLinePoints(fit))
	if err != nil {
		return fmt.Errorf("build fit line: %w", err)
	}
	line.Color = color.RGBA{R: 214, G: 69, B: 65, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)

	label := fmt.Sprintf("r = %.2f", fit.RPrime)
	if manualR != 0 {
		label = fmt.Sprintf("r = %.2f, manual r = %.2f", fit.RPrime, manualR)
	}
	p.Legend.Add(label, line)
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// fitLinePoints samples the fitted line across the sin theta axis.
func fitLinePoints(fit leed.FitResult) plotter.XYs {
	pts := make(plotter.XYs, 0, lineSegments+1)
	for i := 0; i <= lineSegments; i++ {
		s := maxSinTheta * float64(i) / lineSegments
		pts = append(pts, plotter.XY{X: s, Y: fit.PredictX(s)})
	}
	return pts
}
