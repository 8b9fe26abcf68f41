package kubernetes

import (
	"slices"
	"testing"
	"time"
)

func TestSplitPatterns(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"error", []string{"error"}},
		{"error,warn", []string{"error", "warn"}},
		{" error , warn ", []string{"error", "warn"}},
	}

	for _, tt := range tests {
		if got := splitPatterns(tt.input); !slices.Equal(got, tt.expected) {
			t.Errorf("splitPatterns(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestCreationTime(t *testing.T) {
	item := map[string]any{
		"metadata": map[string]any{
			"creationTimestamp": "2026-02-01T08:30:00Z",
		},
	}

	got, ok := creationTime(item)
	if !ok {
		t.Fatal("creationTime should parse a valid timestamp")
	}
	want := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("creationTime = %v, want %v", got, want)
	}

	if _, ok := creationTime(map[string]any{}); ok {
		t.Error("missing metadata should report false")
	}
	if _, ok := creationTime(map[string]any{"metadata": map[string]any{"creationTimestamp": "yesterday"}}); ok {
		t.Error("unparseable timestamp should report false")
	}
}

func TestKubeconfigPath(t *testing.T) {
	if got := kubeconfigPath("/explicit/path"); got != "/explicit/path" {
		t.Errorf("explicit path should win, got %q", got)
	}

	t.Setenv("KUBECONFIG", "/from/env")
	if got := kubeconfigPath(""); got != "/from/env" {
		t.Errorf("KUBECONFIG fallback = %q", got)
	}
}
