package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frame Information
		{
			Name:        "frame_info",
			Description: "Load a frame file and return its dimensions, format, bit depth, and intensity statistics (min/max/mean/stddev).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame file (PNG, JPEG, or GIF)",
					},
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "analyze_frames",
			Description: "Run multi-temporal differential detection: the first frame is the reference, every later frame is compared against it. Returns per-pairing candidate tables with thresholds; failed pairings are reported alongside successful ones.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Frame file paths in temporal order. At least 2; the first is the reference.",
					},
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Background suppression filter scale in pixels (default 15)",
						"default":     15,
					},
					"detection_multiplier": map[string]interface{}{
						"type":        "number",
						"description": "Detection threshold as a multiple of the differential map's stddev (default 5)",
						"default":     5,
					},
					"promising_multiplier": map[string]interface{}{
						"type":        "number",
						"description": "Promising cutoff as a multiple of the detection threshold (default 3)",
						"default":     3,
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of pairings processed concurrently (default 1, sequential)",
						"default":     1,
					},
				},
				"required": []string{"paths"},
			},
		},

		// Rendering
		{
			Name:        "render_differential",
			Description: "Render the differential map of one reference/comparison pairing as a heatmap PNG, with promising candidates ringed in red.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reference": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the reference frame",
					},
					"comparison": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the comparison frame",
					},
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Background suppression filter scale in pixels (default 15)",
						"default":     15,
					},
					"smooth": map[string]interface{}{
						"type":        "boolean",
						"description": "Apply a light display blur to the rendered map",
						"default":     false,
					},
					"markers": map[string]interface{}{
						"type":        "boolean",
						"description": "Overlay promising candidates as rings sized by magnitude",
						"default":     true,
					},
				},
				"required": []string{"reference", "comparison"},
			},
		},
		{
			Name:        "candidate_zoom",
			Description: "Render a magnified cutout of a pairing's differential map around one candidate coordinate. Use after analyze_frames to inspect a promising candidate closely.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reference": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the reference frame",
					},
					"comparison": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the comparison frame",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "Candidate X coordinate (column, 0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Candidate Y coordinate (row, 0-based)",
					},
					"half_size": map[string]interface{}{
						"type":        "integer",
						"description": "Half-width of the square cutout in pixels (default 15)",
						"default":     15,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Resampling factor for the cutout (default 8.0)",
						"default":     8.0,
					},
					"sigma": map[string]interface{}{
						"type":        "number",
						"description": "Background suppression filter scale in pixels (default 15)",
						"default":     15,
					},
				},
				"required": []string{"reference", "comparison", "x", "y"},
			},
		},

		// Catalog
		{
			Name:        "list_runs",
			Description: "List recent detection runs stored in the catalog, newest first. Requires a configured catalog database.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of runs to return (default 20)",
						"default":     20,
					},
				},
			},
		},
		{
			Name:        "get_run",
			Description: "Fetch one stored run with its pairings and full candidate tables.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"run_id": map[string]interface{}{
						"type":        "string",
						"description": "Run identifier as returned by analyze_frames or list_runs",
					},
				},
				"required": []string{"run_id"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
