// Package config loads optional tuning parameters for the calibration
// pipeline from a JSON file. Fields omitted from the file fall back to the
// standard defaults, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/surfacelab/leedcal/internal/detect"
	"github.com/surfacelab/leedcal/internal/leed"
)

// TuningConfig represents the root configuration for tuning parameters.
// Pointer fields distinguish "absent" from "zero".
type TuningConfig struct {
	// Clustering params
	HistogramBins       *int     `json:"histogram_bins,omitempty"`
	RadiusMax           *float64 `json:"radius_max,omitempty"`
	MergeGap            *float64 `json:"merge_gap,omitempty"`
	OppositionTolerance *float64 `json:"opposition_tolerance,omitempty"`

	// Fit params
	OutlierThreshold *float64 `json:"outlier_threshold,omitempty"`

	// Lattice params
	ReferenceScope *string `json:"reference_scope,omitempty"` // "per-call" or "per-run"

	// Detector params
	DetectThreshold *int     `json:"detect_threshold,omitempty"` // 0-255
	BlurSigma       *float64 `json:"blur_sigma,omitempty"`
	MinSpotArea     *int     `json:"min_spot_area,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset, so every
// accessor yields its default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.HistogramBins != nil && *c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", *c.HistogramBins)
	}
	if c.RadiusMax != nil && *c.RadiusMax <= 0 {
		return fmt.Errorf("radius_max must be positive, got %f", *c.RadiusMax)
	}
	if c.MergeGap != nil && *c.MergeGap <= 0 {
		return fmt.Errorf("merge_gap must be positive, got %f", *c.MergeGap)
	}
	if c.OppositionTolerance != nil && *c.OppositionTolerance <= 0 {
		return fmt.Errorf("opposition_tolerance must be positive, got %f", *c.OppositionTolerance)
	}
	if c.OutlierThreshold != nil && *c.OutlierThreshold <= 0 {
		return fmt.Errorf("outlier_threshold must be positive, got %f", *c.OutlierThreshold)
	}
	if c.ReferenceScope != nil {
		switch leed.ReferenceScope(*c.ReferenceScope) {
		case leed.ReferencePerCall, leed.ReferencePerRun:
		default:
			return fmt.Errorf("reference_scope must be %q or %q, got %q",
				leed.ReferencePerCall, leed.ReferencePerRun, *c.ReferenceScope)
		}
	}
	if c.DetectThreshold != nil && (*c.DetectThreshold < 0 || *c.DetectThreshold > 255) {
		return fmt.Errorf("detect_threshold must be between 0 and 255, got %d", *c.DetectThreshold)
	}
	if c.BlurSigma != nil && *c.BlurSigma < 0 {
		return fmt.Errorf("blur_sigma must be non-negative, got %f", *c.BlurSigma)
	}
	if c.MinSpotArea != nil && *c.MinSpotArea < 1 {
		return fmt.Errorf("min_spot_area must be at least 1, got %d", *c.MinSpotArea)
	}
	return nil
}

// ClusterParams assembles the clustering parameters, falling back to
// defaults for unset fields.
func (c *TuningConfig) ClusterParams() leed.ClusterParams {
	p := leed.DefaultClusterParams()
	if c.HistogramBins != nil {
		p.HistogramBins = *c.HistogramBins
	}
	if c.RadiusMax != nil {
		p.RadiusMax = *c.RadiusMax
	}
	if c.MergeGap != nil {
		p.MergeGap = *c.MergeGap
	}
	if c.OppositionTolerance != nil {
		p.OppositionTolerance = *c.OppositionTolerance
	}
	return p
}

// FitParams assembles the line-fit parameters.
func (c *TuningConfig) FitParams() leed.FitParams {
	p := leed.DefaultFitParams()
	if c.OutlierThreshold != nil {
		p.OutlierThreshold = *c.OutlierThreshold
	}
	return p
}

// GetReferenceScope returns the reference-angle scope or the default
// per-call behaviour.
func (c *TuningConfig) GetReferenceScope() leed.ReferenceScope {
	if c.ReferenceScope == nil {
		return leed.ReferencePerCall
	}
	return leed.ReferenceScope(*c.ReferenceScope)
}

// DetectParams assembles the spot-detector parameters.
func (c *TuningConfig) DetectParams() detect.Params {
	p := detect.DefaultParams()
	if c.DetectThreshold != nil {
		p.Threshold = uint8(*c.DetectThreshold)
	}
	if c.BlurSigma != nil {
		p.BlurSigma = *c.BlurSigma
	}
	if c.MinSpotArea != nil {
		p.MinSpotArea = *c.MinSpotArea
	}
	return p
}
