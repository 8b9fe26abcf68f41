// Package response converts dispatcher outcomes into MCP tool results. All
// tools share the same shape: successful payloads are indented JSON text,
// failures are MCP error results carrying only sanitized messages.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bridgetools/mcp-sdk-bridge/internal/dispatch"
)

// FromResult converts a dispatch.Result into an MCP tool result. Failures are
// reported as error results, never as transport-level errors, so one bad call
// cannot take down the session.
func FromResult(res dispatch.Result) (*mcp.CallToolResult, error) {
	if res.Status == dispatch.StatusFailure {
		return Error(res.Err.Error())
	}
	return JSON(res.Payload)
}

// JSON creates a successful MCP tool response containing JSON-formatted data.
func JSON(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(content)), nil
}

// Error creates an MCP tool response indicating an error occurred.
func Error(message string) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(message), nil
}

// Errorf creates an MCP tool error response using printf-style formatting.
func Errorf(format string, args ...any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}
