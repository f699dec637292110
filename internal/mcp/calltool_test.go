package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
)

const inventorySource = `package com.shop;

public class Inventory {
    private int stock;

    public boolean reserve(int qty) {
        if (qty > stock) {
            return false;
        }
        stock = stock - qty;
        return true;
    }

    public int available() {
        return stock;
    }
}
`

func writeSource(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "Inventory.java")
	if err := os.WriteFile(path, []byte(inventorySource), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestServer(t *testing.T, tools ...string) *Server {
	t.Helper()
	s, err := New(nil, nil, Options{Tools: tools})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestGetToolSchemas(t *testing.T) {
	for _, name := range AllTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	registryNames := make([]string, 0, len(toolSchemaRegistry))
	for name := range toolSchemaRegistry {
		registryNames = append(registryNames, name)
	}
	sort.Strings(registryNames)
	allTools := append([]string(nil), AllTools...)
	sort.Strings(allTools)
	if diff := cmp.Diff(allTools, registryNames); diff != "" {
		t.Errorf("AllTools and registry differ (-AllTools +registry):\n%s", diff)
	}

	s := newTestServer(t)
	var names []string
	for _, schema := range s.GetToolSchemas() {
		names = append(names, schema.Name)
	}
	if diff := cmp.Diff(allTools, names); diff != "" {
		t.Errorf("GetToolSchemas mismatch (-want +got):\n%s", diff)
	}
}

func TestToolSchemaParameters(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{ToolAssemble, []string{"file", "start_line", "end_line"}},
		{ToolFacts, []string{"file", "start_line", "end_line"}},
	}

	for _, tt := range tests {
		var got []string
		for _, p := range toolSchemaRegistry[tt.tool].Parameters {
			if p.Required {
				got = append(got, p.Name)
			}
		}
		if diff := cmp.Diff(tt.required, got); diff != "" {
			t.Errorf("%s required params mismatch (-want +got):\n%s", tt.tool, diff)
		}
	}
}

func TestNewUnknownTool(t *testing.T) {
	if _, err := New(nil, nil, Options{Tools: []string{"ctx_nope"}}); err == nil {
		t.Error("expected an error for an unknown tool")
	}
}

func TestCallToolAssemble(t *testing.T) {
	path := writeSource(t)
	s := newTestServer(t)

	got, err := s.CallTool(context.Background(), ToolAssemble, map[string]interface{}{
		"file":         path,
		"start_line":   float64(10),
		"end_line":     float64(10),
		"instruction":  "optimize this",
		"project_root": filepath.Dir(path),
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}

	var decoded struct {
		Selection struct {
			File      string `json:"file"`
			StartLine int    `json:"start_line"`
		} `json:"selection"`
		Focus  string `json:"focus"`
		Layers []struct {
			Kind string `json:"kind"`
		} `json:"layers"`
		Prompt struct {
			User string `json:"user"`
		} `json:"prompt"`
	}
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Selection.File != path || decoded.Selection.StartLine != 10 {
		t.Errorf("selection: got %+v", decoded.Selection)
	}
	if decoded.Focus != "optimize" {
		t.Errorf("focus: got %q", decoded.Focus)
	}
	if len(decoded.Layers) != 5 || decoded.Layers[0].Kind != "SELECTED" {
		t.Errorf("layers: got %+v", decoded.Layers)
	}
	if !strings.Contains(decoded.Prompt.User, "stock = stock - qty;") {
		t.Error("prompt should contain the selected code")
	}
}

func TestCallToolFacts(t *testing.T) {
	path := writeSource(t)
	s := newTestServer(t, ToolFacts)

	got, err := s.CallTool(context.Background(), ToolFacts, map[string]interface{}{
		"file":       path,
		"start_line": float64(14),
		"end_line":   float64(16),
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}

	var decoded struct {
		Method struct {
			Name string `json:"name"`
		} `json:"method"`
		Class struct {
			Name string `json:"name"`
		} `json:"class"`
	}
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Method.Name != "available" || decoded.Class.Name != "Inventory" {
		t.Errorf("got method %q class %q", decoded.Method.Name, decoded.Class.Name)
	}

	if _, err := s.CallTool(context.Background(), ToolAssemble, nil); err == nil {
		t.Error("unregistered tool should fail")
	}
}

func TestCallToolArgumentErrors(t *testing.T) {
	path := writeSource(t)
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing file", map[string]interface{}{"start_line": float64(1), "end_line": float64(1)}, "file"},
		{"missing start", map[string]interface{}{"file": path, "end_line": float64(1)}, "start_line"},
		{"missing end", map[string]interface{}{"file": path, "start_line": float64(1)}, "end_line"},
		{"fractional line", map[string]interface{}{"file": path, "start_line": 1.5, "end_line": float64(2)}, "whole numbers"},
		{"bad density", map[string]interface{}{"file": path, "start_line": float64(6), "end_line": float64(6), "density": "smart"}, "density"},
		{"range past end", map[string]interface{}{"file": path, "start_line": float64(6), "end_line": float64(60)}, "invalid input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CallTool(context.Background(), ToolAssemble, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestHandleAssembleReportsErrors(t *testing.T) {
	s := newTestServer(t)

	var req mcp.CallToolRequest
	req.Params.Name = ToolAssemble
	req.Params.Arguments = map[string]interface{}{"file": "Missing.java", "start_line": float64(1), "end_line": float64(1)}

	res, err := s.handleAssemble(context.Background(), req)
	if err != nil {
		t.Fatalf("handler should report failures in the result, got %v", err)
	}
	if !res.IsError {
		t.Error("expected an error result")
	}
}
