// Package walker enumerates the callable surface of SDK client objects and
// turns every accepted method into a tool descriptor. One walk runs at server
// startup, before any invocation traffic; the output feeds the registry.
//
// The walk is best-effort: a method whose signature cannot be introspected is
// logged and skipped, never allowed to abort discovery of the remaining
// surface.
package walker

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/bridgetools/mcp-sdk-bridge/internal/descriptor"
	"github.com/bridgetools/mcp-sdk-bridge/internal/docs"
	"github.com/bridgetools/mcp-sdk-bridge/internal/inspect"
)

// defaultDeny lists method names that follow lifecycle or plumbing conventions
// and must never surface as tools.
var defaultDeny = []string{
	"Close",
	"Shutdown",
	"Connect",
	"Ping",
	"TestConnectivity",
	"String",
	"Error",
	"GoString",
	"MarshalJSON",
	"UnmarshalJSON",
	"ToolDocs",
}

// Root is one SDK client to walk. Name prefixes every derived tool name, since
// protocol tool names share a single flat namespace across all clients.
type Root struct {
	Name   string
	Client any
}

// Options tunes a walk.
type Options struct {
	// Deny adds method names to the built-in deny-list.
	Deny []string

	// Logger receives skip and collision warnings. Defaults to zap.NewNop.
	Logger *zap.Logger
}

// Walker discovers tools on SDK client graphs.
type Walker struct {
	deny      map[string]bool
	overrides *docs.Overrides
	log       *zap.Logger
}

// New creates a walker using the given documentation overrides.
func New(overrides *docs.Overrides, opts Options) *Walker {
	deny := make(map[string]bool, len(defaultDeny)+len(opts.Deny))
	for _, name := range defaultDeny {
		deny[name] = true
	}
	for _, name := range opts.Deny {
		deny[name] = true
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Walker{deny: deny, overrides: overrides, log: log}
}

// Walk enumerates every reachable public method of the given roots and their
// sub-clients, returning descriptors in discovery order. Tool names collide
// first-discovered-wins; later duplicates are skipped with a warning.
func (w *Walker) Walk(roots ...Root) []*descriptor.ToolDescriptor {
	var out []*descriptor.ToolDescriptor
	taken := make(map[string]bool)

	for _, root := range roots {
		v := reflect.ValueOf(root.Client)
		if !v.IsValid() {
			w.log.Warn("skipping nil client", zap.String("root", root.Name))
			continue
		}
		out = w.walkClient(root.Name, v, taken, make(map[uintptr]bool), out)
	}

	return out
}

func (w *Walker) walkClient(prefix string, v reflect.Value, taken map[string]bool, visited map[uintptr]bool, out []*descriptor.ToolDescriptor) []*descriptor.ToolDescriptor {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return out
		}
		addr := v.Pointer()
		if visited[addr] {
			return out
		}
		visited[addr] = true
	}

	native := map[string]string{}
	if d, ok := v.Interface().(docs.Documenter); ok {
		native = d.ToolDocs()
	}

	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if !method.IsExported() || w.deny[method.Name] {
			continue
		}

		snake := inspect.SnakeCase(method.Name)
		toolName := prefix + "_" + snake
		if taken[toolName] {
			w.log.Warn("tool name collision, keeping first-discovered member",
				zap.String("tool", toolName),
				zap.String("method", method.Name))
			continue
		}

		desc, err := descriptor.Build(toolName, v.Method(i), native[snake], w.overrides)
		if err != nil {
			w.log.Warn("skipping member with unreadable signature",
				zap.String("tool", toolName),
				zap.Error(err))
			continue
		}

		taken[toolName] = true
		out = append(out, desc)
	}

	// Recurse into exported struct-pointer fields that expose methods of
	// their own: sub-resource clients hanging off the root.
	elem := v
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return out
	}

	et := elem.Type()
	for i := 0; i < et.NumField(); i++ {
		field := et.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Type.Kind() != reflect.Pointer || field.Type.Elem().Kind() != reflect.Struct {
			continue
		}
		if field.Type.NumMethod() == 0 {
			continue
		}

		sub := elem.Field(i)
		if sub.IsNil() {
			continue
		}

		out = w.walkClient(prefix+"_"+inspect.SnakeCase(field.Name), sub, taken, visited, out)
	}

	return out
}
