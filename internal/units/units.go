// Package units provides shared constants and conversions for electron-beam
// diffraction geometry
package units

import "math"

// WavelengthConstant is the numerator of the non-relativistic electron
// wavelength relation lambda = sqrt(150.4 / V), with V in volts and
// lambda in angstroms.
const WavelengthConstant = 150.4

// ElectronWavelength returns the de Broglie wavelength in angstroms for an
// electron accelerated through the given voltage.
// Zero or negative voltages return NaN.
func ElectronWavelength(voltage float64) float64 {
	if voltage <= 0 {
		return math.NaN()
	}
	return math.Sqrt(WavelengthConstant / voltage)
}

// NormalizeAngle maps an angle in radians onto [0, 2*pi).
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}

// AngularOpposition returns the absolute deviation of the separation between
// two angles from pi. Spots on opposite sides of the beam axis have an
// opposition near zero.
func AngularOpposition(theta1, theta2 float64) float64 {
	return math.Abs(math.Pi - math.Abs(theta1-theta2))
}
