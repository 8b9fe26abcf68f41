package toolfilter

import (
	"slices"
	"testing"
)

func TestParseDisabledTools(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single tool",
			input:    "kubernetes_get_resource",
			expected: []string{"kubernetes_get_resource"},
		},
		{
			name:     "comma separated",
			input:    "kubernetes_get_resource,utils_encode_base64",
			expected: []string{"kubernetes_get_resource", "utils_encode_base64"},
		},
		{
			name:     "mixed separators and whitespace",
			input:    "a_tool, b_tool\tc_tool\nd_tool",
			expected: []string{"a_tool", "b_tool", "c_tool", "d_tool"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseDisabledTools(tt.input)
			if !slices.Equal(result, tt.expected) {
				t.Errorf("parseDisabledTools(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNewFilterEnvFallback(t *testing.T) {
	t.Setenv("DISABLED_TOOLS", "from_env")

	if got := NewFilter("from_value").GetDisabledTools(); !slices.Equal(got, []string{"from_value"}) {
		t.Errorf("explicit value should win, got %v", got)
	}

	if got := NewFilter("").GetDisabledTools(); !slices.Equal(got, []string{"from_env"}) {
		t.Errorf("env fallback = %v, want [from_env]", got)
	}
}

func TestFilterIsDisabled(t *testing.T) {
	filter := NewFilterFromList([]string{"kubernetes_get_resource", "UTILS_ENCODE_BASE64", "metrics_*"})

	tests := []struct {
		name     string
		toolName string
		expected bool
	}{
		{"exact match", "kubernetes_get_resource", true},
		{"case insensitive", "Kubernetes_Get_Resource", true},
		{"case insensitive pattern entry", "utils_encode_base64", true},
		{"prefix pattern", "metrics_get_node_metrics", true},
		{"prefix pattern case insensitive", "Metrics_Get_Pod_Metrics", true},
		{"not disabled", "kubernetes_list_resources", false},
		{"partial name is not a match", "kubernetes_get_resource_details", false},
		{"empty tool name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.IsDisabled(tt.toolName); got != tt.expected {
				t.Errorf("IsDisabled(%q) = %v, want %v", tt.toolName, got, tt.expected)
			}
		})
	}
}

func TestFilterCopiesInput(t *testing.T) {
	input := []string{"tool_a", "tool_b"}
	filter := NewFilterFromList(input)

	input[0] = "mutated"
	if got := filter.GetDisabledTools(); got[0] == "mutated" {
		t.Error("NewFilterFromList should copy the input slice")
	}

	out := filter.GetDisabledTools()
	out[0] = "mutated"
	if again := filter.GetDisabledTools(); again[0] == "mutated" {
		t.Error("GetDisabledTools should return a copy")
	}
}
