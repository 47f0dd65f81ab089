package frame

import (
	"image"
	"math"
)

// Frame is a 2-D grid of floating-point intensities decoded from one
// exposure. Pixels are stored row-major; (0,0) is the top-left corner,
// X increases rightward and Y increases downward.
//
// A Frame is treated as immutable once it enters the detection pipeline:
// operations that transform a Frame (suppression, differencing) allocate a
// new grid and never write back into their inputs. Set exists for
// constructing frames before handing them to the pipeline.
type Frame struct {
	width  int
	height int
	pix    []float64
}

// New creates a zero-valued Frame with the given dimensions.
func New(width, height int) *Frame {
	return &Frame{
		width:  width,
		height: height,
		pix:    make([]float64, width*height),
	}
}

// FromImage converts a decoded image to a Frame of luminance values.
//
// Color images are reduced with ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B) on the 16-bit channel values, so 16-bit
// grayscale sources keep their full dynamic range. Values are in the
// native 0-65535 scale of Go's color model.
func FromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	f := New(bounds.Dx(), bounds.Dy())

	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			f.pix[y*f.width+x] = 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
		}
	}
	return f
}

// Width returns the number of columns.
func (f *Frame) Width() int { return f.width }

// Height returns the number of rows.
func (f *Frame) Height() int { return f.height }

// At returns the intensity at column x, row y.
// No bounds checking is performed; caller must ensure coordinates are valid.
func (f *Frame) At(x, y int) float64 {
	return f.pix[y*f.width+x]
}

// Set writes the intensity at column x, row y. Intended for frame
// construction; pipeline stages never mutate a frame they did not allocate.
func (f *Frame) Set(x, y int, v float64) {
	f.pix[y*f.width+x] = v
}

// SameShape reports whether two frames have identical dimensions.
func (f *Frame) SameShape(o *Frame) bool {
	return f.width == o.width && f.height == o.height
}

// Stats holds summary statistics over every cell of a Frame.
type Stats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Stddev float64 `json:"stddev"`
}

// Stats computes min, max, mean, and the population standard deviation over
// all cells. An empty frame yields the zero Stats.
func (f *Frame) Stats() Stats {
	n := len(f.pix)
	if n == 0 {
		return Stats{}
	}

	min, max := f.pix[0], f.pix[0]
	var sum float64
	for _, v := range f.pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, v := range f.pix {
		d := v - mean
		sqDiff += d * d
	}

	return Stats{
		Min:    min,
		Max:    max,
		Mean:   mean,
		Stddev: math.Sqrt(sqDiff / float64(n)),
	}
}
