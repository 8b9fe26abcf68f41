package docs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDocsDir(t *testing.T, index string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if index != "" {
		if err := os.WriteFile(filepath.Join(dir, "overrides.json"), []byte(index), 0o644); err != nil {
			t.Fatalf("writing index: %v", err)
		}
	}

	return dir
}

func TestLoadMissingDirectoryIsEmpty(t *testing.T) {
	ov, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ov.Len() != 0 {
		t.Errorf("Len = %d, want 0", ov.Len())
	}
}

func TestLoadBrokenIndexFails(t *testing.T) {
	dir := writeDocsDir(t, "{not json", nil)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for unparseable index")
	}
}

func TestLoadMissingOverrideFileFails(t *testing.T) {
	dir := writeDocsDir(t, `{"kubernetes_list_resources": "missing.md"}`, nil)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for missing override file")
	}
}

func TestDescribePrecedence(t *testing.T) {
	dir := writeDocsDir(t,
		`{"kubernetes_get_resource": "get_resource.md"}`,
		map[string]string{"get_resource.md": "Fetch one resource with full detail.\n"},
	)

	ov, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ov.Len() != 1 {
		t.Fatalf("Len = %d, want 1", ov.Len())
	}

	// Override wins verbatim even when native documentation exists.
	got := ov.Describe("kubernetes_get_resource", "Get specific resource details.")
	if got != "Fetch one resource with full detail.\n" {
		t.Errorf("Describe with override = %q", got)
	}

	// Without an override, the native text survives.
	if got := ov.Describe("kubernetes_list_resources", "List resources."); got != "List resources." {
		t.Errorf("Describe with native = %q", got)
	}

	// No override and no native yields the placeholder.
	if got := ov.Describe("kubernetes_list_resources", ""); got != Placeholder {
		t.Errorf("Describe fallback = %q, want %q", got, Placeholder)
	}
}

func TestEmpty(t *testing.T) {
	ov := Empty()
	if ov.Len() != 0 {
		t.Errorf("Len = %d, want 0", ov.Len())
	}
	if got := ov.Describe("anything", ""); got != Placeholder {
		t.Errorf("Describe = %q, want placeholder", got)
	}
}
