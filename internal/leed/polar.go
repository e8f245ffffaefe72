// Package leed implements the geometric core of the r' calibration pipeline:
// polar conversion of detected spot vectors, angular-symmetry clustering,
// material/surface diffraction-order resolution and robust line fitting.
package leed

import (
	"math"

	"github.com/surfacelab/leedcal/internal/units"
)

// Vec2 is a detected spot position relative to the beam axis, in pixels.
// X grows rightward and Y downward, matching image coordinates.
type Vec2 struct {
	X, Y float64
}

// PolarPoint is a spot position in polar form. Radius is the pixel distance
// from the beam axis; Angle is in [0, 2*pi).
type PolarPoint struct {
	Radius float64
	Angle  float64
}

// ToPolar converts spot vectors to polar points, one per input vector, in
// input order. Empty input yields an empty result.
func ToPolar(vectors []Vec2) []PolarPoint {
	if len(vectors) == 0 {
		return nil
	}

	points := make([]PolarPoint, len(vectors))
	for i, v := range vectors {
		points[i] = PolarPoint{
			Radius: math.Hypot(v.X, v.Y),
			Angle:  units.NormalizeAngle(math.Atan2(v.Y, v.X)),
		}
	}
	return points
}
