// Package catalog stores completed detection runs in SQLite.
//
// Each run keeps its parameters, its pairings (including failed ones, with
// the captured error text), and every candidate row. Differential maps are
// deliberately not stored; they are cheap to regenerate from the source
// frames and large to keep.
package catalog
