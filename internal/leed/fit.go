package leed

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultOutlierThreshold is the maximum first-pass residual (pixels) a
// sample may have before the second fitting pass discards it.
const DefaultOutlierThreshold = 50.0

// FitParams contains parameters for the two-pass line fit.
type FitParams struct {
	OutlierThreshold float64
}

// DefaultFitParams returns the standard outlier-rejection threshold.
func DefaultFitParams() FitParams {
	return FitParams{OutlierThreshold: DefaultOutlierThreshold}
}

// FitResult is the fitted calibration line x = RPrime*u + Intercept, with
// u = sin(theta)/sqrt(1-sin^2(theta)). RPrime is the calibration constant.
type FitResult struct {
	RPrime    float64
	Intercept float64
}

// FitSamples fits the calibration line through the accumulated samples.
//
// The sample sequence is expected to start with the synthetic seed (0, 0)
// that pins the line to the origin. Two passes run: an initial least-squares
// fit, then a refit on the samples whose first-pass residual stays within
// OutlierThreshold, with the seed re-inserted at the head so it always
// survives the mask.
//
// Returns ErrInsufficientData when fewer than two usable samples accompany
// the seed; a slope through fewer points would be meaningless.
func FitSamples(samples []Sample, params FitParams) (FitResult, error) {
	if len(samples) < 3 {
		return FitResult{}, ErrInsufficientData
	}

	us := make([]float64, len(samples))
	xs := make([]float64, len(samples))
	for i, s := range samples {
		us[i] = linearize(s.SinTheta)
		xs[i] = s.X
	}

	intercept0, slope0 := stat.LinearRegression(us, xs, nil, false)

	keptU := []float64{0}
	keptX := []float64{0}
	for i := range us {
		if math.Abs(slope0*us[i]+intercept0-xs[i]) > params.OutlierThreshold {
			continue
		}
		keptU = append(keptU, us[i])
		keptX = append(keptX, xs[i])
	}

	intercept, slope := stat.LinearRegression(keptU, keptX, nil, false)
	return FitResult{RPrime: slope, Intercept: intercept}, nil
}

// linearize maps sin(theta) onto the fitting variable u = tan(theta).
func linearize(sinTheta float64) float64 {
	return sinTheta / math.Sqrt(1-sinTheta*sinTheta)
}

// PredictX evaluates the fitted line at the given sine of the diffraction
// angle.
func (f FitResult) PredictX(sinTheta float64) float64 {
	return f.RPrime*linearize(sinTheta) + f.Intercept
}
