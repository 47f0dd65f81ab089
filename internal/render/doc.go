// Package render turns differential maps into inspection imagery: full-map
// heatmaps with candidate markers, and magnified cutouts around individual
// candidates.
//
// Rendering is strictly downstream of detection. Nothing here feeds back
// into the pipeline, and no function in this package writes to disk; results
// are base64-encoded PNGs in the same result-struct style the rest of the
// tool surface uses.
package render
