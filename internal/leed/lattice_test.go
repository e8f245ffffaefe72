package leed

import (
	"errors"
	"math"
	"testing"

	"github.com/surfacelab/leedcal/internal/units"
)

func TestBaseTypeValidate(t *testing.T) {
	tests := []struct {
		name    string
		base    BaseType
		wantErr bool
	}{
		{"gold 110", BaseType{KindAu, Surface110}, false},
		{"silver 111", BaseType{KindAg, Surface111}, false},
		{"copper 110", BaseType{KindCu, Surface110}, false},
		{"unknown kind", BaseType{Kind("Fe"), Surface110}, true},
		{"unknown surface", BaseType{KindAu, Surface("100")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.base.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLatticeConstants(t *testing.T) {
	tests := []struct {
		kind Kind
		want float64
	}{
		{KindCu, 3.61496},
		{KindAg, 4.0862},
		{KindAu, 4.07864},
	}
	for _, tt := range tests {
		b := BaseType{Kind: tt.kind, Surface: Surface111}
		if got := b.LatticeConstant(); got != tt.want {
			t.Errorf("LatticeConstant(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

// oneRing builds a minimal valid cluster with the given median radius and
// minimum angle.
func oneRing(median, minAngle float64) Cluster {
	return Cluster{
		Radii:  []float64{median - 2, median + 2},
		Angles: []float64{minAngle, minAngle + math.Pi},
	}
}

func TestResolve111ClosedForm(t *testing.T) {
	base := BaseType{KindAu, Surface111}
	m := NewLatticeModel(base, ReferencePerCall)

	voltage := 150.0
	sample, err := m.ResolveSample(voltage, []Cluster{oneRing(172, 0.5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := base.LatticeConstant()
	d := (a / math.Sqrt2) * math.Sqrt(3) / 2
	wantSin := units.ElectronWavelength(voltage) / d
	if math.Abs(sample.SinTheta-wantSin) > 1e-12 {
		t.Errorf("SinTheta = %v, want %v", sample.SinTheta, wantSin)
	}
	if math.Abs(sample.X-172) > 1e-12 {
		t.Errorf("X = %v, want 172 (median radius of first cluster)", sample.X)
	}
}

func TestResolve111SinThetaDecreasesWithVoltage(t *testing.T) {
	for _, base := range []BaseType{
		{KindAu, Surface111},
		{KindAg, Surface111},
		{KindCu, Surface111},
	} {
		m := NewLatticeModel(base, ReferencePerCall)
		prev := math.Inf(1)
		for voltage := 50.0; voltage <= 500; voltage += 25 {
			sample, err := m.ResolveSample(voltage, []Cluster{oneRing(150, 0.3)})
			if err != nil {
				t.Fatalf("%s at %vV: %v", base, voltage, err)
			}
			if sample.SinTheta >= prev {
				t.Fatalf("%s: SinTheta not strictly decreasing at %vV: %v >= %v",
					base, voltage, sample.SinTheta, prev)
			}
			prev = sample.SinTheta
		}
	}
}

func TestResolveGold110OrderSelection(t *testing.T) {
	base := BaseType{KindAu, Surface110}
	m := NewLatticeModel(base, ReferencePerCall)

	// 150.4V gives lambda = 1 angstrom exactly, so the order is
	// floor(x/100)+1: the first ring (median 250) is order 3 and skipped,
	// the second (median 150) is order 2 and accepted.
	voltage := 150.4
	clusters := []Cluster{oneRing(250, 0.5), oneRing(150, 0.5)}
	sample, err := m.ResolveSample(voltage, clusters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := base.LatticeConstant()
	wantSin := 2 * 1.0 / (2 * a)
	if math.Abs(sample.SinTheta-wantSin) > 1e-12 {
		t.Errorf("SinTheta = %v, want %v", sample.SinTheta, wantSin)
	}
	if sample.X != 150 {
		t.Errorf("X = %v, want 150", sample.X)
	}
}

func TestResolveGold110NoClusterBeyondOrderTwo(t *testing.T) {
	m := NewLatticeModel(BaseType{KindAu, Surface110}, ReferencePerCall)
	// Order floor(250/100)+1 = 3 > 2, nothing else to accept.
	_, err := m.ResolveSample(150.4, []Cluster{oneRing(250, 0.5)})
	if !errors.Is(err, ErrNoMatchingOrder) {
		t.Fatalf("expected ErrNoMatchingOrder, got %v", err)
	}
}

func TestResolveGold110ReferenceScope(t *testing.T) {
	// Under per-run scope the baseline captured from the first image pins
	// later images to the same angular family; under per-call scope every
	// image re-baselines on its own first cluster.
	first := []Cluster{oneRing(150, 0.5)}
	rotated := []Cluster{oneRing(150, 1.7)}

	t.Run("per-run rejects rotated family", func(t *testing.T) {
		m := NewLatticeModel(BaseType{KindAu, Surface110}, ReferencePerRun)
		if _, err := m.ResolveSample(150.4, first); err != nil {
			t.Fatalf("first image: %v", err)
		}
		if _, err := m.ResolveSample(150.4, rotated); !errors.Is(err, ErrNoMatchingOrder) {
			t.Fatalf("expected ErrNoMatchingOrder for rotated family, got %v", err)
		}
	})

	t.Run("per-call accepts rotated family", func(t *testing.T) {
		m := NewLatticeModel(BaseType{KindAu, Surface110}, ReferencePerCall)
		if _, err := m.ResolveSample(150.4, first); err != nil {
			t.Fatalf("first image: %v", err)
		}
		if _, err := m.ResolveSample(150.4, rotated); err != nil {
			t.Fatalf("per-call should re-baseline, got %v", err)
		}
	})
}

func TestResolveTwoFamily110Orders(t *testing.T) {
	base := BaseType{KindAg, Surface110}
	a := base.LatticeConstant()
	voltage := 150.4 // lambda = 1

	t.Run("first family carries order 1", func(t *testing.T) {
		m := NewLatticeModel(base, ReferencePerCall)
		clusters := []Cluster{oneRing(100, 0.5), oneRing(200, 1.2)}
		sample, err := m.ResolveSample(voltage, clusters)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(sample.SinTheta-1.0/a) > 1e-12 {
			t.Errorf("SinTheta = %v, want %v", sample.SinTheta, 1.0/a)
		}
		if sample.X != 100 {
			t.Errorf("X = %v, want 100", sample.X)
		}
	})

	t.Run("second family carries order sqrt2 under per-run scope", func(t *testing.T) {
		m := NewLatticeModel(base, ReferencePerRun)
		// First image establishes both family baselines.
		if _, err := m.ResolveSample(voltage, []Cluster{oneRing(100, 0.5), oneRing(200, 1.2)}); err != nil {
			t.Fatalf("first image: %v", err)
		}
		// Second image only shows the second family.
		sample, err := m.ResolveSample(voltage, []Cluster{oneRing(210, 1.2)})
		if err != nil {
			t.Fatalf("second image: %v", err)
		}
		wantSin := math.Sqrt2 * 1.0 / a
		if math.Abs(sample.SinTheta-wantSin) > 1e-12 {
			t.Errorf("SinTheta = %v, want %v", sample.SinTheta, wantSin)
		}
	})

	t.Run("only first three clusters considered", func(t *testing.T) {
		m := NewLatticeModel(base, ReferencePerRun)
		// Baseline image pins both family slots so later images cannot
		// re-capture them.
		if _, err := m.ResolveSample(voltage, []Cluster{oneRing(100, 0.5), oneRing(200, 1.2)}); err != nil {
			t.Fatalf("baseline image: %v", err)
		}
		// Four clusters, only the fourth would match the baseline.
		clusters := []Cluster{
			oneRing(100, 2.0), oneRing(150, 2.5), oneRing(200, 3.0), oneRing(250, 0.5),
		}
		if _, err := m.ResolveSample(voltage, clusters); !errors.Is(err, ErrNoMatchingOrder) {
			t.Fatalf("expected ErrNoMatchingOrder, got %v", err)
		}
	})
}

func TestResolveSampleEmptyClusters(t *testing.T) {
	m := NewLatticeModel(BaseType{KindAu, Surface110}, ReferencePerCall)
	if _, err := m.ResolveSample(150, nil); !errors.Is(err, ErrNoMatchingOrder) {
		t.Fatalf("expected ErrNoMatchingOrder, got %v", err)
	}
}
