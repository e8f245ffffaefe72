package leed

import "errors"

// Per-image conditions. The pipeline recovers from all three locally: the
// image contributes no sample and processing continues.
var (
	// ErrNoDetection indicates an image yielded no spot vectors.
	ErrNoDetection = errors.New("no spots detected")

	// ErrNoValidCluster indicates clustering found no angularly symmetric group.
	ErrNoValidCluster = errors.New("no angularly symmetric cluster")

	// ErrNoMatchingOrder indicates no cluster could be resolved to a
	// diffraction order for the configured material and surface.
	ErrNoMatchingOrder = errors.New("no cluster matches a diffraction order")
)

// ErrInsufficientData is fatal for a calibration run: fewer than two usable
// samples reached the fitter, so no meaningful slope exists.
var ErrInsufficientData = errors.New("insufficient samples for line fit")
