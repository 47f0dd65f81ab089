package server

import (
	"encoding/json"
	"testing"
)

func TestNew(t *testing.T) {
	s := New(nil)
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.cache == nil {
		t.Fatal("New did not initialize the frame cache")
	}
	if s.store != nil {
		t.Error("store should stay nil when no catalog is configured")
	}
}

func TestHandleInitialize(t *testing.T) {
	s := New(nil)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
	}

	resp := s.handleRequest(req)
	if resp == nil {
		t.Fatal("initialize should produce a response")
	}
	if resp.Error != nil {
		t.Fatalf("initialize returned error: %+v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result should be a map, got %T", resp.Result)
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != "frame-sentinel" {
		t.Errorf("server name: got %v, want frame-sentinel", serverInfo["name"])
	}
}

func TestHandlePing(t *testing.T) {
	s := New(nil)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 7, Method: "ping"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("ping should succeed, got %+v", resp)
	}
	if resp.ID != 7 {
		t.Errorf("response ID: got %v, want 7", resp.ID)
	}
}

func TestHandleNotificationInitialized(t *testing.T) {
	s := New(nil)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"})
	if resp != nil {
		t.Errorf("notifications produce no response, got %+v", resp)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	s := New(nil)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 2, Method: "bogus/method"})

	if resp == nil || resp.Error == nil {
		t.Fatal("unknown method should return an error response")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(nil)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 3, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("tools/list should succeed, got %+v", resp)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result should be a map, got %T", resp.Result)
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools should be []Tool, got %T", result["tools"])
	}
	if len(tools) < 5 {
		t.Errorf("got %d tools, want at least 5", len(tools))
	}

	names := make(map[string]bool)
	for _, tool := range tools {
		if tool.Name == "" {
			t.Error("tool with empty name")
		}
		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
		if tool.InputSchema == nil {
			t.Errorf("tool %s has no input schema", tool.Name)
		}
		if names[tool.Name] {
			t.Errorf("duplicate tool name: %s", tool.Name)
		}
		names[tool.Name] = true
	}

	for _, want := range []string{"frame_info", "analyze_frames", "render_differential", "candidate_zoom", "list_runs", "get_run"} {
		if !names[want] {
			t.Errorf("missing tool: %s", want)
		}
	}
}

func TestToolDefinitions_SerializableSchemas(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if _, err := json.Marshal(tool); err != nil {
			t.Errorf("tool %s does not serialize: %v", tool.Name, err)
		}
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      4,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json`),
	}

	resp := s.handleRequest(req)
	if resp == nil || resp.Error == nil {
		t.Fatal("malformed params should return an error response")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := New(nil)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      5,
		Method:  "tools/call",
		Params:  json.RawMessage(`{"name": "no_such_tool", "arguments": {}}`),
	}

	resp := s.handleRequest(req)
	if resp == nil || resp.Error == nil {
		t.Fatal("unknown tool should return an error response")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("error code: got %d, want -32000", resp.Error.Code)
	}
}
