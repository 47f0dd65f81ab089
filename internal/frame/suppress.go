package frame

import "math"

// DefaultSigma is the spatial scale (standard deviation in pixels) of the
// background smoothing filter. At this scale, sky gradients and vignetting
// are removed while point-like sources survive.
const DefaultSigma = 15.0

// Suppress removes large-scale smooth structure from a frame, returning
// frame - smooth(frame, sigma) where smooth is an isotropic Gaussian
// low-pass filter. The result has the same shape as the input; the input is
// not modified. Sigma values <= 0 fall back to DefaultSigma.
func Suppress(f *Frame, sigma float64) *Frame {
	if sigma <= 0 {
		sigma = DefaultSigma
	}

	smoothed := gaussianSmooth(f, sigma)
	out := New(f.width, f.height)
	for i := range f.pix {
		out.pix[i] = f.pix[i] - smoothed.pix[i]
	}
	return out
}

// gaussianSmooth applies an isotropic Gaussian low-pass filter as two
// separable 1-D passes (horizontal then vertical). Border pixels use clamped
// (replicated) edge values, matching the convolution boundary handling used
// throughout this package.
func gaussianSmooth(f *Frame, sigma float64) *Frame {
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	horiz := New(f.width, f.height)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				px := clamp(x+k, 0, f.width-1)
				sum += f.pix[y*f.width+px] * kernel[k+radius]
			}
			horiz.pix[y*f.width+x] = sum
		}
	}

	out := New(f.width, f.height)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				py := clamp(y+k, 0, f.height-1)
				sum += horiz.pix[py*f.width+x] * kernel[k+radius]
			}
			out.pix[y*f.width+x] = sum
		}
	}
	return out
}

// gaussianKernel builds a normalized 1-D Gaussian kernel truncated at three
// standard deviations on each side.
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}

	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
