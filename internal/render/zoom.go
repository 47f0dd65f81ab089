package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/skywatch/frame-sentinel/internal/frame"
)

// DefaultZoomHalfSize is the default half-width of the square window
// rendered around a candidate (a 30x30 cutout for an interior point).
const DefaultZoomHalfSize = 15

// ZoomResult contains a magnified cutout around one candidate.
type ZoomResult struct {
	// Width and Height of the output image in pixels, after scaling.
	Width  int `json:"width"`
	Height int `json:"height"`

	// ImageBase64 is the cutout encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`

	// X1, Y1, X2, Y2 is the window actually rendered, after clamping at the
	// map borders. (X1, Y1) inclusive, (X2, Y2) exclusive.
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// CandidateZoom renders a square window of a differential map centered on a
// candidate, through the same color ramp as Heatmap, normalized to the
// window's own maximum so faint local structure stays visible.
//
// The window is clamped at the map borders, so cutouts near an edge come
// back smaller than 2*halfSize. halfSize values <= 0 fall back to
// DefaultZoomHalfSize. With scale > 0 and != 1.0 the cutout is resampled
// with Lanczos; candidate cutouts are tiny, so upscaling (e.g. scale 8) is
// the usual choice for inspection.
//
// Returns an error if (x, y) lies outside the map.
func CandidateZoom(m *frame.Frame, x, y, halfSize int, scale float64) (*ZoomResult, error) {
	if x < 0 || x >= m.Width() || y < 0 || y >= m.Height() {
		return nil, fmt.Errorf("candidate (%d,%d) outside map bounds %dx%d",
			x, y, m.Width(), m.Height())
	}
	if halfSize <= 0 {
		halfSize = DefaultZoomHalfSize
	}

	x1 := max(0, x-halfSize)
	y1 := max(0, y-halfSize)
	x2 := min(m.Width(), x+halfSize)
	y2 := min(m.Height(), y+halfSize)

	var windowMax float64
	for wy := y1; wy < y2; wy++ {
		for wx := x1; wx < x2; wx++ {
			if v := m.At(wx, wy); v > windowMax {
				windowMax = v
			}
		}
	}

	var img image.Image = rampRegion(m, x1, y1, x2, y2, windowMax)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(x2-x1) * scale)
		newHeight := int(float64(y2-y1) * scale)
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode zoom cutout: %w", err)
	}

	return &ZoomResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		X1:          x1,
		Y1:          y1,
		X2:          x2,
		Y2:          y2,
	}, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
