package leed

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/surfacelab/leedcal/internal/monitoring"
)

// Detector produces spot vectors (relative to the beam axis) for one image.
// An empty result means no spots were found and the image is skipped; an
// error aborts the run.
type Detector interface {
	Detect(path string) ([]Vec2, error)
}

// ImageVoltage pairs an image path with the beam voltage it was taken at.
type ImageVoltage struct {
	Path    string
	Voltage float64
}

// Run is the explicit per-run accumulator of the calibration pipeline: the
// sample sequence (seeded with the origin point) plus the lattice model
// carrying any reference-angle state. One Run processes one image series.
type Run struct {
	ID   string
	Base BaseType

	// Samples accumulates one entry per usable image; index 0 is the
	// synthetic (0, 0) seed that anchors the fit at the origin.
	Samples []Sample

	model   *LatticeModel
	cluster ClusterParams
	fit     FitParams
}

// RunOption adjusts pipeline parameters.
type RunOption func(*Run)

// WithClusterParams overrides the clustering parameters.
func WithClusterParams(p ClusterParams) RunOption {
	return func(r *Run) { r.cluster = p }
}

// WithFitParams overrides the fit parameters.
func WithFitParams(p FitParams) RunOption {
	return func(r *Run) { r.fit = p }
}

// WithReferenceScope selects per-call or per-run reference angles for the
// surface-110 order resolution.
func WithReferenceScope(scope ReferenceScope) RunOption {
	return func(r *Run) { r.model = NewLatticeModel(r.Base, scope) }
}

// NewRun creates a calibration run for the given base type.
func NewRun(base BaseType, opts ...RunOption) (*Run, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}

	r := &Run{
		ID:      uuid.NewString(),
		Base:    base,
		Samples: []Sample{{X: 0, SinTheta: 0}},
		model:   NewLatticeModel(base, ReferencePerCall),
		cluster: DefaultClusterParams(),
		fit:     DefaultFitParams(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ProcessImage runs detection, polar conversion, clustering and order
// resolution for one image and appends the resulting sample. The returned
// error is one of the per-image sentinels (ErrNoDetection, ErrNoValidCluster,
// ErrNoMatchingOrder) for skippable conditions, or a detector failure.
func (r *Run) ProcessImage(iv ImageVoltage, det Detector) error {
	vectors, err := det.Detect(iv.Path)
	if err != nil {
		return fmt.Errorf("detect %s: %w", iv.Path, err)
	}
	if len(vectors) == 0 {
		return ErrNoDetection
	}

	clusters, err := BuildClusters(ToPolar(vectors), r.cluster)
	if err != nil {
		return err
	}

	sample, err := r.model.ResolveSample(iv.Voltage, clusters)
	if err != nil {
		return err
	}

	r.Samples = append(r.Samples, sample)
	return nil
}

// Calibrate processes every image and fits the calibration line. Per-image
// failures are logged and skipped; only detector failures and a final
// insufficient-data condition surface as errors.
func (r *Run) Calibrate(images []ImageVoltage, det Detector) (FitResult, error) {
	for _, iv := range images {
		err := r.ProcessImage(iv, det)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrNoDetection) || errors.Is(err, ErrNoValidCluster) || errors.Is(err, ErrNoMatchingOrder) {
			monitoring.Logf("run %s: skipping %s (%.0fV): %v", r.ID, filepath.Base(iv.Path), iv.Voltage, err)
			continue
		}
		return FitResult{}, err
	}

	result, err := FitSamples(r.Samples, r.fit)
	if err != nil {
		return FitResult{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	return result, nil
}
