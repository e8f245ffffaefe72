package leed

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ringPoints builds polar points for a ring: two spots at the given radii
// with the given angles.
func ringPoints(radii, angles []float64) []PolarPoint {
	points := make([]PolarPoint, len(radii))
	for i := range radii {
		points[i] = PolarPoint{Radius: radii[i], Angle: angles[i]}
	}
	return points
}

func TestBuildClustersOpposedPairRetained(t *testing.T) {
	tests := []struct {
		name      string
		angleGap  float64
		wantValid bool
	}{
		{"exactly pi apart", math.Pi, true},
		{"pi plus 0.05 within tolerance", math.Pi + 0.05, true},
		{"pi minus 0.05 within tolerance", math.Pi - 0.05, true},
		{"pi plus 0.2 rejected", math.Pi + 0.2, false},
		{"pi minus 0.2 rejected", math.Pi - 0.2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := ringPoints(
				[]float64{170, 178},
				[]float64{0.5, 0.5 + tt.angleGap},
			)
			clusters, err := BuildClusters(points, DefaultClusterParams())
			if tt.wantValid {
				if err != nil {
					t.Fatalf("expected valid cluster, got error: %v", err)
				}
				if len(clusters) != 1 {
					t.Fatalf("expected 1 cluster, got %d", len(clusters))
				}
				if len(clusters[0].Angles) != 2 {
					t.Errorf("expected angle set collapsed to the pair, got %d angles", len(clusters[0].Angles))
				}
			} else if !errors.Is(err, ErrNoValidCluster) {
				t.Fatalf("expected ErrNoValidCluster, got %v (clusters=%d)", err, len(clusters))
			}
		})
	}
}

func TestBuildClustersSinglePointGroupDiscarded(t *testing.T) {
	// The lone spot at radius 100 forms its own histogram group and must be
	// discarded regardless of its angle; the ring near 420 survives.
	points := ringPoints(
		[]float64{100, 300, 420, 421},
		[]float64{0.2, 1.0, 0.5, 0.5 + math.Pi},
	)
	clusters, err := BuildClusters(points, DefaultClusterParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range clusters {
		for _, r := range c.Radii {
			if r == 100 {
				t.Errorf("single-member group radius 100 leaked into cluster %+v", c)
			}
		}
	}
}

func TestBuildClustersLastMatchWins(t *testing.T) {
	// Three spots where both (a, b) and (a, c) oppose a within tolerance.
	// Combination order is (a,b), (a,c), (b,c): the kept pair must be the
	// last match, (a, c).
	a, b, c := 0.5, 0.5+math.Pi-0.05, 0.5+math.Pi+0.05
	points := ringPoints(
		[]float64{170, 174, 178},
		[]float64{a, b, c},
	)
	clusters, err := BuildClusters(points, DefaultClusterParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if diff := cmp.Diff([]float64{a, c}, clusters[0].Angles); diff != "" {
		t.Errorf("kept pair mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildClustersSpanSelectsRawRadii(t *testing.T) {
	// Radii spread across adjacent bins of one ring: the cluster must hold
	// every raw radius inside the span, not only bin representatives.
	points := ringPoints(
		[]float64{166, 171, 176, 181},
		[]float64{0.5, 1.2, 0.5 + math.Pi, 2.0},
	)
	clusters, err := BuildClusters(points, DefaultClusterParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if diff := cmp.Diff([]float64{166, 171, 176, 181}, clusters[0].Radii); diff != "" {
		t.Errorf("cluster radii mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildClustersEmptyInput(t *testing.T) {
	if _, err := BuildClusters(nil, DefaultClusterParams()); !errors.Is(err, ErrNoValidCluster) {
		t.Errorf("expected ErrNoValidCluster for empty input, got %v", err)
	}
}

func TestClusterMedianRadius(t *testing.T) {
	tests := []struct {
		name  string
		radii []float64
		want  float64
	}{
		{"odd count", []float64{5, 1, 3}, 3},
		{"even count averages middles", []float64{1, 2, 3, 4}, 2.5},
		{"single element", []float64{7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Cluster{Radii: tt.radii}
			if got := c.MedianRadius(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("MedianRadius() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClusterMinAngle(t *testing.T) {
	c := Cluster{Angles: []float64{2.5, 0.3, 1.1}}
	if got := c.MinAngle(); got != 0.3 {
		t.Errorf("MinAngle() = %v, want 0.3", got)
	}
}

func TestOppositionPairLastMatchWins(t *testing.T) {
	angles := []float64{0.0, math.Pi - 0.02, math.Pi + 0.02}
	pair, ok := oppositionPair(angles, DefaultOppositionTolerance)
	if !ok {
		t.Fatal("expected a matching pair")
	}
	want := []float64{0.0, math.Pi + 0.02}
	if diff := cmp.Diff(want, pair); diff != "" {
		t.Errorf("pair mismatch (-want +got):\n%s", diff)
	}
}
