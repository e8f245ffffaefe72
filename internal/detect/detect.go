// Package detect extracts diffraction spot positions from LEED screen
// photographs. Bright blobs are segmented by blur and threshold, labelled by
// connected-component search, and reported as centroid vectors relative to
// the image centre (the beam axis).
package detect

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/surfacelab/leedcal/internal/leed"
)

// Constants for detection configuration
const (
	// DefaultThreshold is the grayscale binarization level for spot pixels.
	DefaultThreshold = 200
	// DefaultBlurSigma is the Gaussian blur radius applied before
	// thresholding to suppress sensor noise.
	DefaultBlurSigma = 2.0
	// DefaultMinSpotArea is the minimum connected-pixel count for a blob to
	// count as a diffraction spot.
	DefaultMinSpotArea = 5
)

// Params contains parameters for spot detection.
type Params struct {
	Threshold   uint8   // Binarization level for bright pixels
	BlurSigma   float64 // Gaussian blur radius; <= 0 disables blurring
	MinSpotArea int     // Minimum blob area in pixels
}

// DefaultParams returns detection parameters suitable for typical LEED
// screen exposures.
func DefaultParams() Params {
	return Params{
		Threshold:   DefaultThreshold,
		BlurSigma:   DefaultBlurSigma,
		MinSpotArea: DefaultMinSpotArea,
	}
}

// SpotDetector finds bright diffraction spots in screen photographs. It
// implements the pipeline's Detector interface.
type SpotDetector struct {
	params Params
}

// New creates a detector with the given parameters.
func New(params Params) *SpotDetector {
	return &SpotDetector{params: params}
}

// Detect loads the image at path and returns one centroid vector per
// detected spot. An image with no spots yields an empty slice, not an
// error; the caller skips such images.
func (d *SpotDetector) Detect(path string) ([]leed.Vec2, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return d.DetectImage(img), nil
}

// DetectImage runs spot detection on an already-decoded image.
func (d *SpotDetector) DetectImage(img image.Image) []leed.Vec2 {
	gray := effect.Grayscale(img)

	var src image.Image = gray
	if d.params.BlurSigma > 0 {
		src = blur.Gaussian(gray, d.params.BlurSigma)
	}
	binary := segment.Threshold(src, d.params.Threshold)

	bounds := binary.Bounds()
	centerX := float64(bounds.Dx()) / 2
	centerY := float64(bounds.Dy()) / 2

	var vectors []leed.Vec2
	for _, b := range labelBlobs(binary) {
		if b.area < d.params.MinSpotArea {
			continue
		}
		vectors = append(vectors, leed.Vec2{
			X: b.centroidX() - centerX,
			Y: b.centroidY() - centerY,
		})
	}
	return vectors
}

// blob accumulates the pixels of one connected bright region.
type blob struct {
	sumX, sumY float64
	area       int
}

func (b blob) centroidX() float64 { return b.sumX / float64(b.area) }
func (b blob) centroidY() float64 { return b.sumY / float64(b.area) }

// labelBlobs groups bright pixels of the binary image into 8-connected
// components using an iterative flood fill.
func labelBlobs(binary *image.Gray) []blob {
	bounds := binary.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	visited := make([]bool, width*height)
	bright := func(x, y int) bool {
		return binary.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y > 0
	}

	var blobs []blob
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !bright(x, y) {
				continue
			}

			var b blob
			stack := []image.Point{{X: x, Y: y}}
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
					continue
				}
				if visited[p.Y*width+p.X] || !bright(p.X, p.Y) {
					continue
				}
				visited[p.Y*width+p.X] = true

				b.sumX += float64(p.X)
				b.sumY += float64(p.Y)
				b.area++

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
					}
				}
			}
			blobs = append(blobs, b)
		}
	}
	return blobs
}
