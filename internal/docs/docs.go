// Package docs holds human-authored documentation overrides for generated
// tools. Reflection can recover schemas but not prose, so operators can drop a
// directory of markdown files next to the binary and replace any tool's
// description without touching the SDK.
package docs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Placeholder is used when a tool has neither an override nor native
// documentation.
const Placeholder = "No description available."

// Overrides is a read-only mapping from tool name to replacement description
// text, loaded once before the surface walk and never mutated afterwards.
type Overrides struct {
	byTool map[string]string
}

// Documenter is implemented by SDK clients that can supply native descriptions
// for their methods, keyed by the snake_case method name (the tool name minus
// its root prefix).
type Documenter interface {
	ToolDocs() map[string]string
}

// Load reads overrides from dir. The directory must contain an overrides.json
// file mapping tool names to markdown filenames relative to dir; each file's
// contents become that tool's description verbatim.
//
// A missing directory or index file yields an empty store: overrides are
// optional. A present-but-broken index is an error, since silently ignoring
// operator-authored docs would be worse than failing startup.
func Load(dir string) (*Overrides, error) {
	ov := &Overrides{byTool: make(map[string]string)}

	index := filepath.Join(dir, "overrides.json")
	data, err := os.ReadFile(index)
	if err != nil {
		if os.IsNotExist(err) {
			return ov, nil
		}
		return nil, fmt.Errorf("failed to read overrides index: %w", err)
	}

	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", index, err)
	}

	for tool, file := range mapping {
		text, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to read override for %s: %w", tool, err)
		}
		ov.byTool[tool] = string(text)
	}

	return ov, nil
}

// Empty returns a store with no overrides.
func Empty() *Overrides {
	return &Overrides{byTool: make(map[string]string)}
}

// Describe returns the final description for a tool: the override verbatim
// when one exists, otherwise the native text, otherwise a fixed placeholder.
// It never fails.
func (o *Overrides) Describe(tool, native string) string {
	if text, ok := o.byTool[tool]; ok {
		return text
	}
	if native != "" {
		return native
	}
	return Placeholder
}

// Len reports the number of loaded overrides.
func (o *Overrides) Len() int {
	return len(o.byTool)
}
