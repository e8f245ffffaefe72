// Package testutil provides shared test fixtures for the calibration
// pipeline, chiefly synthetic LEED screen images with spots at known
// positions.
package testutil

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"testing"
)

// ScreenSize is the edge length in pixels of synthetic screen images; the
// beam axis sits at its centre.
const ScreenSize = 400

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertInDelta checks that got is within delta of want.
func AssertInDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	if math.Abs(got-want) > delta {
		t.Errorf("got %v, want %v (±%v)", got, want, delta)
	}
}

// NewScreen builds a dark synthetic screen image.
func NewScreen() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, ScreenSize, ScreenSize))
	for y := 0; y < ScreenSize; y++ {
		for x := 0; x < ScreenSize; x++ {
			img.Set(x, y, color.NRGBA{A: 255})
		}
	}
	return img
}

// AddSpot draws a bright disc at polar position (radius, angle) relative to
// the screen centre.
func AddSpot(img *image.NRGBA, radius, angle float64, spotRadius int) {
	cx := ScreenSize/2 + int(math.Round(radius*math.Cos(angle)))
	cy := ScreenSize/2 + int(math.Round(radius*math.Sin(angle)))
	for dy := -spotRadius; dy <= spotRadius; dy++ {
		for dx := -spotRadius; dx <= spotRadius; dx++ {
			if dx*dx+dy*dy <= spotRadius*spotRadius {
				img.Set(cx+dx, cy+dy, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
}

// WritePNG encodes the image to path.
func WritePNG(t *testing.T, img image.Image, path string) {
	t.Helper()
	f, err := os.Create(path)
	AssertNoError(t, err)
	AssertNoError(t, png.Encode(f, img))
	AssertNoError(t, f.Close())
}
