// Package server binds the tool registry to an MCP server: it converts
// descriptors into mcp.Tool definitions and installs one handler per tool that
// routes through the invocation dispatcher.
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/bridgetools/mcp-sdk-bridge/internal/descriptor"
	"github.com/bridgetools/mcp-sdk-bridge/internal/dispatch"
	"github.com/bridgetools/mcp-sdk-bridge/internal/registry"
	"github.com/bridgetools/mcp-sdk-bridge/internal/response"
	"github.com/bridgetools/mcp-sdk-bridge/internal/schema"
	"github.com/bridgetools/mcp-sdk-bridge/internal/toolfilter"
)

// Register installs every registry tool on the MCP server, skipping names the
// filter disables.
func Register(s *server.MCPServer, reg *registry.Registry, disp *dispatch.Dispatcher, filter *toolfilter.Filter, log *zap.Logger) int {
	registered := 0

	for _, desc := range reg.Tools() {
		if filter != nil && filter.IsDisabled(desc.Name) {
			log.Info("tool disabled by configuration", zap.String("tool", desc.Name))
			continue
		}

		s.AddTool(ToMCPTool(desc), handler(desc.Name, disp))
		registered++
	}

	return registered
}

func handler(name string, disp *dispatch.Dispatcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return response.FromResult(disp.Invoke(ctx, name, request.GetArguments()))
	}
}

// ToMCPTool converts a tool descriptor into the mcp-go tool definition,
// mapping each sanitized kind onto the matching schema option.
func ToMCPTool(d *descriptor.ToolDescriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}

	for _, p := range d.Params {
		opts = append(opts, paramOption(p))
	}

	return mcp.NewTool(d.Name, opts...)
}

func paramOption(p descriptor.ParameterSpec) mcp.ToolOption {
	var props []mcp.PropertyOption
	if p.Required {
		props = append(props, mcp.Required())
	}
	if p.Description != "" {
		props = append(props, mcp.Description(p.Description))
	}

	switch p.Type.Kind {
	case schema.KindString:
		if s, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(s))
		}
		return mcp.WithString(p.Name, props...)

	case schema.KindEnum:
		props = append(props, mcp.Enum(p.Type.Enum...))
		if s, ok := p.Default.(string); ok {
			props = append(props, mcp.DefaultString(s))
		}
		return mcp.WithString(p.Name, props...)

	case schema.KindInteger, schema.KindNumber:
		switch n := p.Default.(type) {
		case int64:
			props = append(props, mcp.DefaultNumber(float64(n)))
		case float64:
			props = append(props, mcp.DefaultNumber(n))
		}
		return mcp.WithNumber(p.Name, props...)

	case schema.KindBoolean:
		if b, ok := p.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(b))
		}
		return mcp.WithBoolean(p.Name, props...)

	case schema.KindArray:
		return mcp.WithArray(p.Name, props...)

	default:
		// Objects and opaque values both surface as open objects; anything
		// JSON-shaped is accepted and validated by the dispatcher.
		return mcp.WithObject(p.Name, props...)
	}
}
