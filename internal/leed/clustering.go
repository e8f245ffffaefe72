package leed

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/surfacelab/leedcal/internal/units"
)

// Constants for clustering configuration
const (
	// DefaultHistogramBins is the number of radius histogram bins.
	DefaultHistogramBins = 100
	// DefaultRadiusMax is the upper edge of the radius histogram in pixels.
	DefaultRadiusMax = 500.0
	// DefaultMergeGap is the bin-start gap (pixels) below which adjacent
	// non-empty bins belong to the same diffraction ring.
	DefaultMergeGap = 10.0
	// DefaultOppositionTolerance is the maximum deviation from pi (radians)
	// for two spots to count as an opposed pair.
	DefaultOppositionTolerance = 0.1
)

// ClusterParams contains parameters for radius clustering.
type ClusterParams struct {
	HistogramBins       int     // Number of histogram bins over [0, RadiusMax)
	RadiusMax           float64 // Upper edge of the binned radius range
	MergeGap            float64 // Gap threshold separating ring clusters
	OppositionTolerance float64 // Angular tolerance of the opposition test
}

// DefaultClusterParams returns clustering parameters suitable for the
// instrument's 500-pixel working radius.
func DefaultClusterParams() ClusterParams {
	return ClusterParams{
		HistogramBins:       DefaultHistogramBins,
		RadiusMax:           DefaultRadiusMax,
		MergeGap:            DefaultMergeGap,
		OppositionTolerance: DefaultOppositionTolerance,
	}
}

// Cluster is a group of spot radii believed to belong to one diffraction
// ring. For a valid cluster Angles holds exactly the opposed pair that
// passed the symmetry test; Radii keeps every member of the ring.
type Cluster struct {
	Radii  []float64
	Angles []float64
}

// MinAngle returns the smallest angle in the cluster. It is the angular
// fingerprint used to match clusters against reference angles across
// diffraction orders.
func (c Cluster) MinAngle() float64 {
	min := c.Angles[0]
	for _, a := range c.Angles[1:] {
		if a < min {
			min = a
		}
	}
	return min
}

// MedianRadius returns the median of the cluster's radii, averaging the two
// middle values for even-sized clusters.
func (c Cluster) MedianRadius() float64 {
	sorted := make([]float64, len(c.Radii))
	copy(sorted, c.Radii)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// binFreq is a non-empty histogram bin: its lower edge and its count.
type binFreq struct {
	start float64
	count float64
}

// BuildClusters partitions spot radii into angularly symmetric ring clusters.
//
// Radii are binned into a fixed histogram over [0, RadiusMax); runs of
// non-empty bins closer than MergeGap form one candidate cluster whose span
// re-selects the raw radii (not just bin centres). Candidates with a single
// member are dropped, and the survivors must contain at least one pair of
// spots separated by pi within OppositionTolerance. A valid cluster's angle
// set collapses to the matching pair; when several pairs match, the last one
// found wins. That tie-break is load-bearing for order resolution downstream,
// so it is preserved deliberately.
//
// Returns ErrNoValidCluster when no cluster passes the symmetry test.
func BuildClusters(points []PolarPoint, params ClusterParams) ([]Cluster, error) {
	if len(points) == 0 {
		return nil, ErrNoValidCluster
	}

	radii := make([]float64, len(points))
	angles := make([]float64, len(points))
	for i, p := range points {
		radii[i] = p.Radius
		angles[i] = p.Angle
	}

	binFreqs := histogramBins(radii, params)
	candidates := mergeBins(radii, angles, binFreqs, params)

	// Keep only clusters with an opposed spot pair, collapsing their angle
	// set to that pair.
	clusters := make([]Cluster, 0, len(candidates))
	for _, c := range candidates {
		pair, ok := oppositionPair(c.Angles, params.OppositionTolerance)
		if !ok {
			continue
		}
		c.Angles = pair
		clusters = append(clusters, c)
	}

	if len(clusters) == 0 {
		return nil, ErrNoValidCluster
	}
	return clusters, nil
}

// histogramBins returns the non-empty bins of the radius histogram in
// increasing order of bin start.
func histogramBins(radii []float64, params ClusterParams) []binFreq {
	dividers := floats.Span(make([]float64, params.HistogramBins+1), 0, params.RadiusMax)

	// stat.Histogram requires sorted input strictly inside the divider
	// range; radii beyond RadiusMax simply do not participate in binning
	// (they can still be swept into a cluster span below).
	inRange := make([]float64, 0, len(radii))
	for _, r := range radii {
		if r >= 0 && r < params.RadiusMax {
			inRange = append(inRange, r)
		}
	}
	if len(inRange) == 0 {
		return nil
	}
	sort.Float64s(inRange)

	counts := stat.Histogram(make([]float64, params.HistogramBins), dividers, inRange, nil)

	binFreqs := make([]binFreq, 0, len(counts))
	for i, c := range counts {
		if c > 0 {
			binFreqs = append(binFreqs, binFreq{start: dividers[i], count: c})
		}
	}
	return binFreqs
}

// mergeBins walks the non-empty bins and cuts a candidate cluster whenever
// the gap to the previous bin exceeds MergeGap, or at the final bin. Each
// cluster's span [start, end+MergeGap] re-selects the raw radii so members
// are actual observations, not bin edges.
func mergeBins(radii, angles []float64, binFreqs []binFreq, params ClusterParams) []Cluster {
	var clusters []Cluster

	prevBin := 0.0
	start := 0.0
	for j, bf := range binFreqs {
		current := bf.start
		if current > prevBin+params.MergeGap || j == len(binFreqs)-1 {
			if j != 0 {
				end := binFreqs[j-1].start
				if j == len(binFreqs)-1 {
					end = current
				}

				var cr, ca []float64
				for i := range radii {
					if radii[i] >= start && radii[i] <= end+params.MergeGap {
						cr = append(cr, radii[i])
						ca = append(ca, angles[i])
					}
				}
				// A symmetric pair needs at least two spots.
				if len(cr) > 1 {
					clusters = append(clusters, Cluster{Radii: cr, Angles: ca})
				}
			}
			start = current
		}
		prevBin = current
	}

	return clusters
}

// oppositionPair scans all unordered angle pairs for one separated by pi
// within tol. Later matches overwrite earlier ones (last match wins).
func oppositionPair(angles []float64, tol float64) ([]float64, bool) {
	var pair []float64
	for a := 0; a < len(angles); a++ {
		for b := a + 1; b < len(angles); b++ {
			if units.AngularOpposition(angles[a], angles[b]) < tol {
				pair = []float64{angles[a], angles[b]}
			}
		}
	}
	return pair, pair != nil
}
