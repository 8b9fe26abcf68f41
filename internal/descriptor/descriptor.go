// Package descriptor builds the immutable per-tool metadata record the
// registry serves: name, merged description, sanitized input schema, result
// schema, and the bound method the dispatcher will eventually call.
package descriptor

import (
	"reflect"

	"github.com/bridgetools/mcp-sdk-bridge/internal/docs"
	"github.com/bridgetools/mcp-sdk-bridge/internal/inspect"
	"github.com/bridgetools/mcp-sdk-bridge/internal/schema"
)

// ParameterSpec is one sanitized tool parameter. The type is always drawn from
// the closed protocol-safe kind set, never a raw SDK type.
type ParameterSpec struct {
	Name        string
	Type        schema.Type
	Required    bool
	Default     any
	Description string
}

// Origin carries everything the dispatcher needs to rebuild a native call:
// the bound method and the declared request shape.
type Origin struct {
	Func       reflect.Value
	Request    reflect.Type
	RequestPtr bool
	HasContext bool
}

// ToolDescriptor is the immutable metadata record for one registered tool.
// Parameters keep declaration order so schemas are reproducible across runs.
type ToolDescriptor struct {
	Name        string
	Description string
	Params      []ParameterSpec
	Result      schema.Type

	origin Origin
}

// Origin returns the bound callable backing this descriptor.
func (d *ToolDescriptor) Origin() Origin {
	return d.origin
}

// Build combines signature introspection, type sanitization and documentation
// merging into one descriptor. It fails only when the signature itself is
// unreadable, propagating *inspect.IntrospectionError for the caller to skip.
func Build(name string, fn reflect.Value, native string, overrides *docs.Overrides) (*ToolDescriptor, error) {
	sig, err := inspect.Method(name, fn)
	if err != nil {
		return nil, err
	}

	params := make([]ParameterSpec, 0, len(sig.Params))
	for _, p := range sig.Params {
		params = append(params, ParameterSpec{
			Name:        p.Name,
			Type:        schema.Sanitize(p.Type),
			Required:    p.Required,
			Default:     p.Default,
			Description: p.Description,
		})
	}

	var result schema.Type
	if sig.Result != nil {
		result = schema.Sanitize(sig.Result)
	}

	return &ToolDescriptor{
		Name:        name,
		Description: overrides.Describe(name, native),
		Params:      params,
		Result:      result,
		origin: Origin{
			Func:       fn,
			Request:    sig.Request,
			RequestPtr: sig.RequestPtr,
			HasContext: sig.HasContext,
		},
	}, nil
}
