// Package server implements the MCP (Model Context Protocol) tool surface
// for the differential detection pipeline.
//
// The server speaks JSON-RPC 2.0 over stdin/stdout: one request per line in,
// one response per line out. Logging goes to stderr so the protocol stream
// stays clean.
//
// # Tools
//
//   - frame_info: dimensions, format, and intensity statistics of one frame
//   - analyze_frames: the full multi-temporal run (reference vs. each later
//     frame), returning per-pairing candidate tables
//   - render_differential: heatmap PNG of one pairing's differential map
//   - candidate_zoom: magnified cutout around one candidate
//   - list_runs, get_run: queries against the optional SQLite catalog
//
// Tool handlers unmarshal their arguments, apply defaults for omitted
// optional parameters, and delegate to the frame, detection, render, and
// catalog packages. All results are returned as pretty-printed JSON in the
// MCP content envelope.
package server
