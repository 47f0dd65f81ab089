package detection

import (
	"errors"
	"fmt"
	"math"

	"github.com/skywatch/frame-sentinel/internal/frame"
)

// ErrShapeMismatch indicates that two frames being compared do not share
// dimensions. It is isolated to the pairing that produced it.
var ErrShapeMismatch = errors.New("frame shapes differ")

// AbsDiff computes the differential map of two same-shape frames: the
// element-wise absolute difference. The result is always non-negative and
// symmetric in its arguments, and shares the shape of the inputs.
//
// Both inputs are expected to be background-suppressed already; AbsDiff does
// no filtering of its own. Returns ErrShapeMismatch (wrapped with the
// offending dimensions) if the shapes differ.
func AbsDiff(a, b *frame.Frame) (*frame.Frame, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrShapeMismatch, a.Width(), a.Height(), b.Width(), b.Height())
	}

	out := frame.New(a.Width(), a.Height())
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			out.Set(x, y, math.Abs(a.At(x, y)-b.At(x, y)))
		}
	}
	return out, nil
}
