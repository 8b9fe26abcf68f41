package server

import (
	"context"
	"reflect"
	"slices"
	"testing"

	"github.com/bridgetools/mcp-sdk-bridge/internal/descriptor"
	"github.com/bridgetools/mcp-sdk-bridge/internal/docs"
)

type echoRequest struct {
	Message string   `json:"message" desc:"Text to echo back"`
	Repeat  int      `json:"repeat" default:"1"`
	Upper   bool     `json:"upper,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func TestToMCPTool(t *testing.T) {
	fn := func(ctx context.Context, req *echoRequest) (string, error) {
		return req.Message, nil
	}

	desc, err := descriptor.Build("demo_echo", reflect.ValueOf(fn), "Echo a message.", docs.Empty())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tool := ToMCPTool(desc)

	if tool.Name != "demo_echo" {
		t.Errorf("Name = %q", tool.Name)
	}
	if tool.Description != "Echo a message." {
		t.Errorf("Description = %q", tool.Description)
	}

	for _, param := range []string{"message", "repeat", "upper", "tags"} {
		if _, ok := tool.InputSchema.Properties[param]; !ok {
			t.Errorf("schema is missing property %q", param)
		}
	}

	if !slices.Contains(tool.InputSchema.Required, "message") {
		t.Errorf("message should be required, got %v", tool.InputSchema.Required)
	}
	if slices.Contains(tool.InputSchema.Required, "repeat") {
		t.Error("defaulted parameter must not be required")
	}
	if slices.Contains(tool.InputSchema.Required, "upper") {
		t.Error("omitempty parameter must not be required")
	}

	message, ok := tool.InputSchema.Properties["message"].(map[string]any)
	if !ok {
		t.Fatalf("message property type = %T", tool.InputSchema.Properties["message"])
	}
	if message["type"] != "string" {
		t.Errorf("message type = %v", message["type"])
	}
	if message["description"] != "Text to echo back" {
		t.Errorf("message description = %v", message["description"])
	}

	repeat, ok := tool.InputSchema.Properties["repeat"].(map[string]any)
	if !ok {
		t.Fatalf("repeat property type = %T", tool.InputSchema.Properties["repeat"])
	}
	if repeat["type"] != "number" {
		t.Errorf("repeat type = %v", repeat["type"])
	}
}
