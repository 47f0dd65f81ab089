package detection

import "github.com/skywatch/frame-sentinel/internal/frame"

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Thresholds holds the two statistical cutoffs derived from one
// differential map.
type Thresholds struct {
	// Detection is the candidate extraction cutoff: cells strictly above it
	// become candidates.
	Detection float64 `json:"detection"`

	// Promising is the stricter cutoff that marks a candidate as high
	// priority.
	Promising float64 `json:"promising"`
}

// ComputeThresholds derives the detection and promising cutoffs from a
// differential map.
//
// The detection threshold is the population standard deviation over all
// cells multiplied by detectionMult; the promising cutoff is the detection
// threshold multiplied by promisingMult. Each pairing computes its own
// thresholds from its own map, so pairings with different noise
// characteristics do not contaminate each other.
//
// A constant (including all-zero) map yields a zero detection threshold.
// Because extraction uses a strict comparison, an exactly-zero map then
// produces no candidates.
func ComputeThresholds(m *frame.Frame, detectionMult, promisingMult float64) Thresholds {
	det := m.Stats().Stddev * detectionMult
	return Thresholds{
		Detection: det,
		Promising: det * promisingMult,
	}
}

// ExtractPoints returns the coordinates of every cell strictly exceeding the
// threshold.
//
// Scan order is an explicit contract: row-major, rows top-to-bottom and
// columns left-to-right within each row. Candidate IDs are ordinals into
// this sequence, so the order must stay deterministic for IDs to be
// reproducible across runs on identical input.
func ExtractPoints(m *frame.Frame, threshold float64) []Point {
	points := make([]Point, 0)
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.At(x, y) > threshold {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}
