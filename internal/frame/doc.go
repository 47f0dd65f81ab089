// Package frame provides the in-memory representation of astronomical
// exposures and the background suppression filter applied before
// differential comparison.
//
// A Frame is a row-major float64 luminance grid with (0,0) at the top-left
// corner. Frames enter the system through FrameCache, which decodes PNG,
// JPEG, and GIF files and caches the converted grids by path.
//
// # Background suppression
//
// Suppress subtracts a Gaussian-smoothed copy of the frame from itself,
// removing slowly varying structure (sky gradient, optics vignetting) while
// preserving localized features. The filter scale is a configuration value;
// DefaultSigma (15 px) matches the survey tuning this system was built for.
// Suppression works directly on the float64 grid rather than on quantized
// 8-bit image data, so faint photometric differences survive the filter.
//
// # Thread safety
//
// FrameCache is safe for concurrent use. Frame itself is not synchronized;
// the pipeline relies on frames being read-only once constructed, which
// also makes read-only sharing across worker goroutines safe.
package frame
