package server

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/skywatch/frame-sentinel/internal/catalog"
	"github.com/skywatch/frame-sentinel/internal/detection"
	"github.com/skywatch/frame-sentinel/internal/frame"
	"github.com/skywatch/frame-sentinel/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "frame_info", "analyze_frames").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "frame_info":
		return s.handleFrameInfo(args)
	case "analyze_frames":
		return s.handleAnalyzeFrames(args)
	case "render_differential":
		return s.handleRenderDifferential(args)
	case "candidate_zoom":
		return s.handleCandidateZoom(args)
	case "list_runs":
		return s.handleListRuns(args)
	case "get_run":
		return s.handleGetRun(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Frame Information Handlers ===

type frameInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameInfo(args json.RawMessage) (interface{}, error) {
	var a frameInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return frame.LoadFrameInfo(s.cache, a.Path)
}

// === Detection Handlers ===

type analyzeFramesArgs struct {
	Paths               []string `json:"paths"`
	Sigma               float64  `json:"sigma"`
	DetectionMultiplier float64  `json:"detection_multiplier"`
	PromisingMultiplier float64  `json:"promising_multiplier"`
	Workers             int      `json:"workers"`
}

// pairingSummary is one pairing's outcome in the analyze_frames response.
// Exactly one of Error and Thresholds is meaningful.
type pairingSummary struct {
	ReferenceID         string                `json:"reference_id"`
	ComparisonID        string                `json:"comparison_id"`
	Error               string                `json:"error,omitempty"`
	Thresholds          *detection.Thresholds `json:"thresholds,omitempty"`
	CandidateCount      int                   `json:"candidate_count"`
	PromisingCount      int                   `json:"promising_count"`
	AllCandidates       []detection.Candidate `json:"all_candidates,omitempty"`
	PromisingCandidates []detection.Candidate `json:"promising_candidates,omitempty"`
}

type analyzeFramesResult struct {
	RunID               string           `json:"run_id"`
	Signature           string           `json:"signature"`
	Sigma               float64          `json:"sigma"`
	DetectionMultiplier float64          `json:"detection_multiplier"`
	PromisingMultiplier float64          `json:"promising_multiplier"`
	Pairings            []pairingSummary `json:"pairings"`
	Persisted           bool             `json:"persisted"`
}

func (s *Server) handleAnalyzeFrames(args json.RawMessage) (interface{}, error) {
	var a analyzeFramesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	signature := "FS-" + runID[:8]
	params := detection.Params{
		Sigma:               a.Sigma,
		DetectionMultiplier: a.DetectionMultiplier,
		PromisingMultiplier: a.PromisingMultiplier,
		Workers:             a.Workers,
	}

	analyzer := detection.NewAnalyzer(s.cache, params, signature)
	startedAt := time.Now()
	results, err := analyzer.Run(a.Paths)
	if err != nil {
		return nil, err
	}

	// Comparison frames are single-use; only the reference stays cached.
	for _, p := range a.Paths[1:] {
		s.cache.Evict(p)
	}

	effective := analyzer.Params()
	out := &analyzeFramesResult{
		RunID:               runID,
		Signature:           signature,
		Sigma:               effective.Sigma,
		DetectionMultiplier: effective.DetectionMultiplier,
		PromisingMultiplier: effective.PromisingMultiplier,
		Pairings:            make([]pairingSummary, 0, len(results)),
	}

	for _, res := range results {
		summary := pairingSummary{
			ReferenceID:  res.ReferenceID,
			ComparisonID: res.ComparisonID,
		}
		if res.Err != nil {
			summary.Error = res.Err.Error()
		} else {
			th := res.Thresholds
			summary.Thresholds = &th
			summary.CandidateCount = len(res.AllCandidates)
			summary.PromisingCount = len(res.PromisingCandidates)
			summary.AllCandidates = res.AllCandidates
			summary.PromisingCandidates = res.PromisingCandidates
		}
		out.Pairings = append(out.Pairings, summary)
	}

	if s.store != nil {
		run := catalog.RunRecord{
			ID:                  runID,
			Signature:           signature,
			StartedAt:           startedAt,
			FrameCount:          len(a.Paths),
			Sigma:               effective.Sigma,
			DetectionMultiplier: effective.DetectionMultiplier,
			PromisingMultiplier: effective.PromisingMultiplier,
		}
		if err := s.store.SaveRun(run, results); err != nil {
			// The analysis itself succeeded; report it and log the
			// persistence failure rather than discarding the results.
			log.Printf("Failed to persist run %s: %v", runID, err)
		} else {
			out.Persisted = true
		}
	}

	return out, nil
}

// pairDifferential runs a single pairing end to end and returns its result.
// Used by the rendering tools, which operate on one pairing at a time.
func (s *Server) pairDifferential(refPath, cmpPath string, sigma float64) (detection.ComparisonResult, error) {
	params := detection.Params{Sigma: sigma}
	analyzer := detection.NewAnalyzer(s.cache, params, "render")

	results, err := analyzer.Run([]string{refPath, cmpPath})
	if err != nil {
		return detection.ComparisonResult{}, err
	}
	res := results[0]
	if res.Err != nil {
		return detection.ComparisonResult{}, res.Err
	}
	return res, nil
}

// === Rendering Handlers ===

type renderDifferentialArgs struct {
	Reference  string  `json:"reference"`
	Comparison string  `json:"comparison"`
	Sigma      float64 `json:"sigma"`
	Smooth     bool    `json:"smooth"`
	Markers    *bool   `json:"markers"`
}

func (s *Server) handleRenderDifferential(args json.RawMessage) (interface{}, error) {
	var a renderDifferentialArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	res, err := s.pairDifferential(a.Reference, a.Comparison, a.Sigma)
	if err != nil {
		return nil, err
	}

	var markers []render.Marker
	if a.Markers == nil || *a.Markers {
		for _, c := range res.PromisingCandidates {
			markers = append(markers, render.Marker{X: c.X, Y: c.Y, Magnitude: c.Magnitude})
		}
	}

	return render.Heatmap(res.Differential, markers, a.Smooth)
}

type candidateZoomArgs struct {
	Reference  string  `json:"reference"`
	Comparison string  `json:"comparison"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	HalfSize   int     `json:"half_size"`
	Scale      float64 `json:"scale"`
	Sigma      float64 `json:"sigma"`
}

func (s *Server) handleCandidateZoom(args json.RawMessage) (interface{}, error) {
	var a candidateZoomArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 8.0
	}

	res, err := s.pairDifferential(a.Reference, a.Comparison, a.Sigma)
	if err != nil {
		return nil, err
	}

	return render.CandidateZoom(res.Differential, a.X, a.Y, a.HalfSize, a.Scale)
}

// === Catalog Handlers ===

type listRunsArgs struct {
	Limit int `json:"limit"`
}

func (s *Server) handleListRuns(args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no catalog configured: set FRAME_SENTINEL_DB")
	}

	var a listRunsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	runs, err := s.store.ListRuns(a.Limit)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	}, nil
}

type getRunArgs struct {
	RunID string `json:"run_id"`
}

func (s *Server) handleGetRun(args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no catalog configured: set FRAME_SENTINEL_DB")
	}

	var a getRunArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	run, pairings, err := s.store.GetRun(a.RunID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"run":      run,
		"pairings": pairings,
	}, nil
}
