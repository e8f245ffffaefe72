package leed

import (
	"fmt"
	"math"

	"github.com/surfacelab/leedcal/internal/units"
)

// Kind identifies the base material.
type Kind string

// Supported base materials.
const (
	KindAu Kind = "Au"
	KindAg Kind = "Ag"
	KindCu Kind = "Cu"
)

// Surface identifies the crystal surface orientation.
type Surface string

// Supported surface orientations.
const (
	Surface110 Surface = "110"
	Surface111 Surface = "111"
)

// latticeConstants holds the material lattice constants in angstroms.
var latticeConstants = map[Kind]float64{
	KindCu: 3.61496,
	KindAg: 4.0862,
	KindAu: 4.07864,
}

// BaseType is the immutable material/surface configuration of a calibration
// run. It selects the lattice constant and the diffraction-order branch.
type BaseType struct {
	Kind    Kind
	Surface Surface
}

// Validate checks the material kind and surface orientation.
func (b BaseType) Validate() error {
	if _, ok := latticeConstants[b.Kind]; !ok {
		return fmt.Errorf("unknown material kind %q (want Au, Ag or Cu)", b.Kind)
	}
	if b.Surface != Surface110 && b.Surface != Surface111 {
		return fmt.Errorf("unknown surface %q (want 110 or 111)", b.Surface)
	}
	return nil
}

// LatticeConstant returns the lattice constant in angstroms.
// The base type must be valid.
func (b BaseType) LatticeConstant() float64 {
	return latticeConstants[b.Kind]
}

// String renders the base type as e.g. "Au(110)".
func (b BaseType) String() string {
	return fmt.Sprintf("%s(%s)", b.Kind, b.Surface)
}

// Sample is one validated calibration observation: the cluster's median
// radius and the sine of its diffraction angle.
type Sample struct {
	X        float64
	SinTheta float64
}

// ReferenceScope controls where the reference angles used for diffraction
// order matching live.
type ReferenceScope string

const (
	// ReferencePerCall resets the reference angles on every resolution call,
	// so the first cluster of every image defines the baseline. This matches
	// the instrument software's observed behaviour and is the default.
	ReferencePerCall ReferenceScope = "per-call"
	// ReferencePerRun captures the reference angles once per calibration run
	// and holds them across images.
	ReferencePerRun ReferenceScope = "per-run"
)

// referenceAngles holds up to two angular-family baselines captured from the
// first clusters seen.
type referenceAngles struct {
	set   [2]bool
	theta [2]float64
}

func (r *referenceAngles) capture(slot int, theta float64) {
	if !r.set[slot] {
		r.set[slot] = true
		r.theta[slot] = theta
	}
}

func (r *referenceAngles) matches(slot int, theta, tol float64) bool {
	return r.set[slot] && math.Abs(r.theta[slot]-theta) < tol
}

// DefaultOrderAngleTolerance is the angular tolerance (radians) when matching
// a cluster's minimum angle against a reference angle.
const DefaultOrderAngleTolerance = 0.1

// LatticeModel resolves the physically correct diffraction order for a
// cluster and produces one (x, sin theta) sample per image. For surface 110
// it carries reference-angle state whose lifetime is governed by the
// configured ReferenceScope.
type LatticeModel struct {
	base           BaseType
	scope          ReferenceScope
	angleTolerance float64

	refs referenceAngles
}

// NewLatticeModel creates a model for the given base type. An empty scope
// defaults to ReferencePerCall.
func NewLatticeModel(base BaseType, scope ReferenceScope) *LatticeModel {
	if scope == "" {
		scope = ReferencePerCall
	}
	return &LatticeModel{
		base:           base,
		scope:          scope,
		angleTolerance: DefaultOrderAngleTolerance,
	}
}

// ResolveSample selects one cluster and computes its calibration sample for
// the image's beam voltage. Clusters must be non-empty (the cluster builder
// guarantees this). Returns ErrNoMatchingOrder when no cluster passes the
// acceptance rules of the configured material branch.
func (m *LatticeModel) ResolveSample(voltage float64, clusters []Cluster) (Sample, error) {
	if len(clusters) == 0 {
		return Sample{}, ErrNoMatchingOrder
	}
	if m.scope == ReferencePerCall {
		m.refs = referenceAngles{}
	}

	if m.base.Surface == Surface111 {
		return m.resolve111(voltage, clusters), nil
	}
	if m.base.Kind == KindAu {
		return m.resolveGold110(voltage, clusters)
	}
	return m.resolveTwoFamily110(voltage, clusters)
}

// resolve111 uses the closed form for (111) surfaces: the interplanar
// spacing d = (a/sqrt(2)) * sqrt(3)/2 fixes sin theta directly from the
// wavelength, and the first cluster supplies the displacement.
func (m *LatticeModel) resolve111(voltage float64, clusters []Cluster) Sample {
	a := m.base.LatticeConstant()
	d := (a / math.Sqrt2) * math.Sqrt(3) / 2
	return Sample{
		X:        clusters[0].MedianRadius(),
		SinTheta: units.ElectronWavelength(voltage) / d,
	}
}

// resolveGold110 handles Au(110): a single angular family whose baseline is
// the minimum angle of the first cluster. The diffraction order follows from
// the displacement itself, n = floor(x/lambda/100) + 1, and only orders up
// to 2 are physical for this geometry.
func (m *LatticeModel) resolveGold110(voltage float64, clusters []Cluster) (Sample, error) {
	m.refs.capture(0, clusters[0].MinAngle())

	a := m.base.LatticeConstant()
	lambda := units.ElectronWavelength(voltage)

	for _, c := range clusters {
		if !m.refs.matches(0, c.MinAngle(), m.angleTolerance) {
			continue
		}
		x := c.MedianRadius()
		n := math.Floor(x/lambda/100) + 1
		if n > 2 {
			continue
		}
		return Sample{X: x, SinTheta: n * lambda / (2 * a)}, nil
	}
	return Sample{}, ErrNoMatchingOrder
}

// resolveTwoFamily110 handles Ag(110) and Cu(110): two angular families with
// baselines captured from the first and second clusters. Family 0 carries
// order n=1 and family 1 carries n=sqrt(2). Only the first three clusters
// are considered.
func (m *LatticeModel) resolveTwoFamily110(voltage float64, clusters []Cluster) (Sample, error) {
	m.refs.capture(0, clusters[0].MinAngle())
	if len(clusters) > 1 {
		m.refs.capture(1, clusters[1].MinAngle())
	}

	a := m.base.LatticeConstant()
	lambda := units.ElectronWavelength(voltage)

	for j, c := range clusters {
		if j > 2 {
			break
		}
		for k := 0; k < 2; k++ {
			if !m.refs.matches(k, c.MinAngle(), m.angleTolerance) {
				continue
			}
			n := 1.0
			if k == 1 {
				n = math.Sqrt2
			}
			return Sample{X: c.MedianRadius(), SinTheta: n * lambda / a}, nil
		}
	}
	return Sample{}, ErrNoMatchingOrder
}
