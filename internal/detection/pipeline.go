package detection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/skywatch/frame-sentinel/internal/frame"
)

// ErrTooFewFrames indicates a usage error: a run needs one reference frame
// and at least one comparison frame.
var ErrTooFewFrames = errors.New("at least two frames are required for a multi-temporal run")

// Loader resolves a frame identifier (typically a file path) to a decoded
// Frame. frame.FrameCache satisfies this interface; tests substitute
// in-memory fakes.
type Loader interface {
	LoadFrame(id string) (*frame.Frame, error)
}

// Params carries the numeric policy of the detection pipeline. The
// multipliers have no derivation beyond survey tuning, so they live here as
// configuration with documented defaults instead of constants inside the
// pipeline.
type Params struct {
	// Sigma is the background suppression filter scale in pixels.
	// Default 15.
	Sigma float64

	// DetectionMultiplier scales the differential map's population stddev
	// into the detection threshold. Default 5.
	DetectionMultiplier float64

	// PromisingMultiplier scales the detection threshold into the promising
	// cutoff. Default 3.
	PromisingMultiplier float64

	// Workers bounds the number of pairings processed concurrently.
	// Values <= 1 process pairings sequentially in input order.
	Workers int
}

// DefaultParams returns the reference tuning of the pipeline.
func DefaultParams() Params {
	return Params{
		Sigma:               frame.DefaultSigma,
		DetectionMultiplier: 5,
		PromisingMultiplier: 3,
		Workers:             1,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Sigma <= 0 {
		p.Sigma = d.Sigma
	}
	if p.DetectionMultiplier <= 0 {
		p.DetectionMultiplier = d.DetectionMultiplier
	}
	if p.PromisingMultiplier <= 0 {
		p.PromisingMultiplier = d.PromisingMultiplier
	}
	if p.Workers <= 0 {
		p.Workers = d.Workers
	}
	return p
}

// ComparisonResult is the outcome of one reference-vs-comparison pairing.
//
// Exactly one of Differential and Err is set: a populated differential map
// means the pairing succeeded end to end, a non-nil Err means it failed at
// load or shape check and produced no map. PromisingCandidates is always a
// subset of AllCandidates by value.
type ComparisonResult struct {
	// ReferenceID and ComparisonID identify the two input frames.
	ReferenceID  string `json:"reference_id"`
	ComparisonID string `json:"comparison_id"`

	// Differential is the owned differential map, nil if the pairing
	// failed. It is never mutated after creation.
	Differential *frame.Frame `json:"-"`

	// Thresholds are the cutoffs computed from this pairing's map.
	Thresholds Thresholds `json:"thresholds"`

	// AllCandidates holds every detected candidate in extraction order.
	AllCandidates []Candidate `json:"all_candidates"`

	// PromisingCandidates is the promising subset ordered by descending
	// magnitude.
	PromisingCandidates []Candidate `json:"promising_candidates"`

	// Err is set iff processing this pairing failed.
	Err error `json:"-"`
}

// Analyzer drives a multi-temporal run: one reference frame differenced
// against each later frame in turn.
type Analyzer struct {
	loader    Loader
	params    Params
	signature string
}

// NewAnalyzer creates an Analyzer. The signature is a run-scoped provenance
// tag stamped onto every candidate; passing it in explicitly (rather than
// reading a clock or environment inside the pipeline) keeps runs
// reproducible.
func NewAnalyzer(loader Loader, params Params, signature string) *Analyzer {
	return &Analyzer{
		loader:    loader,
		params:    params.withDefaults(),
		signature: signature,
	}
}

// Params returns the effective (defaulted) parameters of this analyzer.
func (a *Analyzer) Params() Params { return a.params }

// Run processes every pairing of the reference frame (ids[0]) against each
// comparison frame (ids[1:]) in input order.
//
// The reference frame is loaded once and shared read-only across pairings.
// Two failures abort the whole run with an error and no results: fewer than
// two identifiers (ErrTooFewFrames), and a reference frame that fails to
// load, since every pairing depends on it. Every other failure - comparison
// load error, decode error, shape mismatch - is captured into that pairing's
// result and the run continues, so callers always receive one result per
// comparison frame, in input order.
//
// With Params.Workers > 1, pairings are processed on a bounded set of
// goroutines. Each worker writes only its own index-assigned slot, which
// preserves input order without further synchronization on the result
// collection. No retries are performed anywhere; every failure is terminal
// for its scope.
func (a *Analyzer) Run(ids []string) ([]ComparisonResult, error) {
	if len(ids) < 2 {
		return nil, ErrTooFewFrames
	}

	refID := ids[0]
	ref, err := a.loader.LoadFrame(refID)
	if err != nil {
		return nil, fmt.Errorf("load reference frame %q: %w", refID, err)
	}

	// The reference is suppressed once up front; the result is read-only
	// and shared by every pairing.
	refClean := frame.Suppress(ref, a.params.Sigma)

	results := make([]ComparisonResult, len(ids)-1)

	if a.params.Workers <= 1 {
		for i, cmpID := range ids[1:] {
			results[i] = a.compare(ref, refClean, refID, cmpID, i+1)
		}
		return results, nil
	}

	workers := a.params.Workers
	if workers > len(results) {
		workers = len(results)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = a.compare(ref, refClean, refID, ids[i+1], i+1)
			}
		}()
	}
	for i := range results {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return results, nil
}

// compare runs one pairing end to end: load, shape check, suppress,
// difference, threshold, classify. pairIndex is 1-based.
func (a *Analyzer) compare(ref, refClean *frame.Frame, refID, cmpID string, pairIndex int) ComparisonResult {
	res := ComparisonResult{
		ReferenceID:  refID,
		ComparisonID: cmpID,
	}

	cmp, err := a.loader.LoadFrame(cmpID)
	if err != nil {
		res.Err = fmt.Errorf("load comparison frame %q: %w", cmpID, err)
		return res
	}

	if !ref.SameShape(cmp) {
		res.Err = fmt.Errorf("compare %q with %q: %w: %dx%d vs %dx%d",
			refID, cmpID, ErrShapeMismatch,
			ref.Width(), ref.Height(), cmp.Width(), cmp.Height())
		return res
	}

	cmpClean := frame.Suppress(cmp, a.params.Sigma)

	diff, err := AbsDiff(refClean, cmpClean)
	if err != nil {
		res.Err = fmt.Errorf("compare %q with %q: %w", refID, cmpID, err)
		return res
	}

	th := ComputeThresholds(diff, a.params.DetectionMultiplier, a.params.PromisingMultiplier)
	points := ExtractPoints(diff, th.Detection)
	all := Classify(points, diff, th.Promising, pairIndex, a.signature)

	res.Differential = diff
	res.Thresholds = th
	res.AllCandidates = all
	res.PromisingCandidates = PromisingSubset(all)
	return res
}
