// Package toolfilter decides which generated tools are withheld from
// registration. Reflection can surface hundreds of methods per SDK family, so
// operators need a way to switch off tools without touching code.
package toolfilter

import (
	"os"
	"strings"
)

// Filter handles checking if tools should be disabled based on configuration.
type Filter struct {
	disabledTools []string
}

// NewFilter creates a new Filter from a disabled tools value.
// It first checks the provided value, then falls back to the DISABLED_TOOLS
// environment variable.
func NewFilter(disabledToolsValue string) *Filter {
	if disabledToolsValue == "" {
		disabledToolsValue = os.Getenv("DISABLED_TOOLS")
	}

	return &Filter{
		disabledTools: parseDisabledTools(disabledToolsValue),
	}
}

// NewFilterFromList creates a new Filter from a pre-parsed list of disabled tools.
func NewFilterFromList(disabledTools []string) *Filter {
	copied := make([]string, len(disabledTools))
	copy(copied, disabledTools)

	return &Filter{
		disabledTools: copied,
	}
}

// IsDisabled checks if a tool name should be disabled. The comparison is
// case-insensitive; a trailing "*" in a pattern disables every tool sharing
// that prefix, which matters when one walked SDK family contributes dozens of
// generated names.
func (f *Filter) IsDisabled(toolName string) bool {
	for _, disabled := range f.disabledTools {
		if prefix, ok := strings.CutSuffix(disabled, "*"); ok {
			if len(toolName) >= len(prefix) && strings.EqualFold(toolName[:len(prefix)], prefix) {
				return true
			}
			continue
		}
		if strings.EqualFold(toolName, disabled) {
			return true
		}
	}
	return false
}

// GetDisabledTools returns a copy of the disabled tools list.
func (f *Filter) GetDisabledTools() []string {
	result := make([]string, len(f.disabledTools))
	copy(result, f.disabledTools)
	return result
}

// parseDisabledTools parses a comma/space-separated string of disabled tool names.
func parseDisabledTools(value string) []string {
	if value == "" {
		return nil
	}

	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
