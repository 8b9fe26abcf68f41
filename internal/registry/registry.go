// Package registry is the immutable runtime lookup table of registered tools.
// It is built exactly once at startup from the surface walk and handed to
// request handlers by reference; reads need no synchronization because nothing
// mutates after Build returns.
package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bridgetools/mcp-sdk-bridge/internal/descriptor"
)

// NotFoundError reports an invoke against a tool name that was never
// registered. It is reported to the caller, never fatal to the process.
type NotFoundError struct {
	Tool string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q is not registered", e.Tool)
}

// Registry maps tool names to their descriptors. Rebuilding requires a fresh
// Registry; there is no live re-registration.
type Registry struct {
	byName map[string]*descriptor.ToolDescriptor
	order  []string
}

// Build consumes walker output once. The walker already resolves collisions
// first-wins, but Build enforces uniqueness again so the invariant does not
// depend on the caller.
func Build(descs []*descriptor.ToolDescriptor, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Registry{byName: make(map[string]*descriptor.ToolDescriptor, len(descs))}
	for _, d := range descs {
		if _, exists := r.byName[d.Name]; exists {
			log.Warn("duplicate tool name at registry build, keeping first", zap.String("tool", d.Name))
			continue
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d.Name)
	}

	return r
}

// Lookup returns the descriptor for name or a *NotFoundError.
func (r *Registry) Lookup(name string) (*descriptor.ToolDescriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, &NotFoundError{Tool: name}
	}
	return d, nil
}

// Tools returns all descriptors in registration order.
func (r *Registry) Tools() []*descriptor.ToolDescriptor {
	out := make([]*descriptor.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
