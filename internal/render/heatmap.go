package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/skywatch/frame-sentinel/internal/frame"
)

// HeatmapResult contains a differential map rendered as a base64 PNG.
type HeatmapResult struct {
	// Width of the output image in pixels (same as the map).
	Width int `json:"width"`

	// Height of the output image in pixels (same as the map).
	Height int `json:"height"`

	// ImageBase64 is the rendered map encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`

	// MaxValue is the map value mapped to the hottest ramp color.
	MaxValue float64 `json:"max_value"`

	// MarkerCount is the number of candidate markers drawn.
	MarkerCount int `json:"marker_count"`
}

// Marker is a candidate position overlaid on a heatmap. The ring drawn for a
// marker is sized by its magnitude relative to the largest marker, mirroring
// the survey's convention that bigger rings mean bigger changes.
type Marker struct {
	X         int
	Y         int
	Magnitude float64
}

// Heatmap renders a differential map (or any frame) through a perceptual
// color ramp and returns it as a base64 PNG.
//
// Values are normalized to the map's maximum; a map with no positive values
// renders entirely in the ramp's darkest color. Markers, if any, are drawn
// as red rings on top. With smooth set, a light Gaussian blur is applied to
// the rendered image before the markers, purely for display - the underlying
// map is never modified.
func Heatmap(m *frame.Frame, markers []Marker, smooth bool) (*HeatmapResult, error) {
	maxVal := m.Stats().Max

	img := rampRegion(m, 0, 0, m.Width(), m.Height(), maxVal)
	if smooth {
		img = blur.Gaussian(img, 1.5)
	}
	drawMarkers(img, markers)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}

	return &HeatmapResult{
		Width:       m.Width(),
		Height:      m.Height(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		MaxValue:    maxVal,
		MarkerCount: len(markers),
	}, nil
}

// rampAnchors is an inferno-style sequence from near-black violet to pale
// yellow. Interpolation happens in Lab space so perceived brightness tracks
// map intensity.
var rampAnchors = mustHexPalette(
	"#000004",
	"#3B0F70",
	"#8C2981",
	"#DE4968",
	"#FE9F6D",
	"#FCFDBF",
)

func mustHexPalette(hexes ...string) []colorful.Color {
	palette := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("bad ramp anchor %q: %v", h, err))
		}
		palette[i] = c
	}
	return palette
}

// rampColor maps a normalized intensity in [0, 1] to a ramp color.
func rampColor(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	pos := t * float64(len(rampAnchors)-1)
	i := int(pos)
	if i >= len(rampAnchors)-1 {
		i = len(rampAnchors) - 2
	}
	c := rampAnchors[i].BlendLab(rampAnchors[i+1], pos-float64(i)).Clamped()

	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// rampRegion renders the window [x1,x2) x [y1,y2) of a frame through the
// color ramp, normalizing by maxVal. A non-positive maxVal renders the whole
// window in the darkest ramp color.
func rampRegion(m *frame.Frame, x1, y1, x2, y2 int, maxVal float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, x2-x1, y2-y1))
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			t := 0.0
			if maxVal > 0 {
				t = m.At(x, y) / maxVal
			}
			img.SetRGBA(x-x1, y-y1, rampColor(t))
		}
	}
	return img
}

// drawMarkers overlays one red ring per marker, radius scaled by the
// marker's magnitude relative to the largest one.
func drawMarkers(img *image.RGBA, markers []Marker) {
	if len(markers) == 0 {
		return
	}

	var maxMag float64
	for _, mk := range markers {
		if mk.Magnitude > maxMag {
			maxMag = mk.Magnitude
		}
	}

	ringColor := color.RGBA{R: 255, G: 40, B: 40, A: 255}
	for _, mk := range markers {
		radius := 3
		if maxMag > 0 {
			radius += int(mk.Magnitude / maxMag * 9)
		}
		drawRing(img, mk.X, mk.Y, radius, ringColor)
	}
}

// drawRing draws a one-pixel circle outline, clipped to the image bounds.
func drawRing(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	bounds := img.Bounds()
	steps := 12 * radius
	if steps < 24 {
		steps = 24
	}
	for s := 0; s < steps; s++ {
		angle := 2 * math.Pi * float64(s) / float64(steps)
		x := cx + int(math.Round(float64(radius)*math.Cos(angle)))
		y := cy + int(math.Round(float64(radius)*math.Sin(angle)))
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.SetRGBA(x, y, c)
		}
	}
}
