package detection

import (
	"fmt"
	"math"
	"sort"

	"github.com/skywatch/frame-sentinel/internal/frame"
)

// Candidate is one detected point in a differential map.
type Candidate struct {
	// ID is unique within a comparison: "Diff-<pairIndex>-<ordinal+1>",
	// where the ordinal is the candidate's 0-indexed position in scan
	// order. Stable only for identical input under the documented
	// extraction order.
	ID string `json:"id"`

	// X and Y are pixel coordinates (column, row) into the differential map.
	X int `json:"x"`
	Y int `json:"y"`

	// Magnitude is the differential value at (X, Y), rounded to 2 decimal
	// places.
	Magnitude float64 `json:"magnitude"`

	// Promising is true iff Magnitude exceeds the promising cutoff.
	Promising bool `json:"promising"`

	// Signature is the run-scoped provenance tag.
	Signature string `json:"signature"`
}

// Classify builds the ordered candidate list for one pairing from its
// extracted points.
//
// Candidates are emitted in the same order as the input points, which is the
// extraction scan order. pairIndex is the 1-based index of the comparison
// frame within the run; signature is attached verbatim to every candidate.
func Classify(points []Point, m *frame.Frame, promisingCutoff float64, pairIndex int, signature string) []Candidate {
	candidates := make([]Candidate, 0, len(points))
	for j, p := range points {
		magnitude := round2(m.At(p.X, p.Y))
		candidates = append(candidates, Candidate{
			ID:        fmt.Sprintf("Diff-%d-%d", pairIndex, j+1),
			X:         p.X,
			Y:         p.Y,
			Magnitude: magnitude,
			Promising: magnitude > promisingCutoff,
			Signature: signature,
		})
	}
	return candidates
}

// PromisingSubset filters the promising candidates and orders them by
// descending magnitude. The sort is stable, so equal magnitudes keep their
// extraction order.
func PromisingSubset(all []Candidate) []Candidate {
	promising := make([]Candidate, 0)
	for _, c := range all {
		if c.Promising {
			promising = append(promising, c)
		}
	}
	sort.SliceStable(promising, func(i, j int) bool {
		return promising[i].Magnitude > promising[j].Magnitude
	})
	return promising
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
