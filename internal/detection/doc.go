// Package detection implements the multi-temporal differential pipeline:
// absolute differencing of background-suppressed frames, statistical
// thresholding, candidate classification, and the pairwise orchestration of
// one reference frame against N later frames.
//
// # Pipeline
//
// For each pairing, in order:
//
//  1. Load the comparison frame (the reference was loaded once at run start)
//  2. Shape check against the reference
//  3. Background-suppress both frames (frame.Suppress)
//  4. AbsDiff: differential map = |suppressed(ref) - suppressed(cmp)|
//  5. ComputeThresholds: detection = stddev(map) x 5, promising = detection x 3
//     (multipliers are Params fields; those are the defaults)
//  6. ExtractPoints: cells strictly above the detection threshold, row-major
//  7. Classify: IDs, rounded magnitudes, promising flags; then the promising
//     subset sorted by descending magnitude
//
// # Failure isolation
//
// A failed pairing (load error, shape mismatch) is recorded in its
// ComparisonResult and never aborts the other pairings. Only two failures
// abort a run wholesale: fewer than two input frames, and a reference frame
// that fails to load.
//
// # Determinism
//
// Extraction order is a contract, not an accident of iteration: row-major,
// top-to-bottom, left-to-right. Candidate IDs are derived from that order,
// so identical inputs always reproduce identical IDs.
package detection
