// Package dispatch is the uniform invocation path between the protocol layer
// and the wrapped SDK methods. Each call validates and coerces arguments
// against the tool's descriptor, rebuilds the native request struct, invokes
// the bound method, and converts the result or failure into a structured
// outcome. No SDK error or panic ever propagates raw to the transport.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bridgetools/mcp-sdk-bridge/internal/descriptor"
	"github.com/bridgetools/mcp-sdk-bridge/internal/registry"
	"github.com/bridgetools/mcp-sdk-bridge/internal/schema"
)

// Status marks an invocation outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the per-call outcome handed back to the protocol binding. It is
// created per invocation and discarded once the response is sent.
type Result struct {
	ID      string
	Status  Status
	Payload any
	Err     error
}

// ArgumentError reports a schema validation failure, naming the offending
// field so callers can self-correct.
type ArgumentError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q for tool %s: %s", e.Field, e.Tool, e.Reason)
}

// SDKError wraps any failure raised by the underlying SDK callable. Only the
// sanitized message crosses the protocol boundary; the original error is kept
// for errors.Is/As on the server side.
type SDKError struct {
	Tool  string
	Cause error
}

func (e *SDKError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Cause)
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// Dispatcher routes invocations through an immutable registry snapshot. It is
// stateless per call and safe for concurrent use.
type Dispatcher struct {
	reg *registry.Registry
	log *zap.Logger
}

// New creates a dispatcher over the given registry.
func New(reg *registry.Registry, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{reg: reg, log: log}
}

// Invoke runs one tool call. It never panics and never returns a raw SDK
// failure: every outcome is a Result, with Err set for failures.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) Result {
	id := uuid.NewString()
	start := time.Now()

	res := d.invoke(ctx, id, name, args)

	fields := []zap.Field{
		zap.String("invocation_id", id),
		zap.String("tool", name),
		zap.Duration("duration", time.Since(start)),
	}
	if res.Err != nil {
		d.log.Warn("tool call failed", append(fields, zap.Error(res.Err))...)
	} else {
		d.log.Debug("tool call succeeded", fields...)
	}

	return res
}

func (d *Dispatcher) invoke(ctx context.Context, id, name string, args map[string]any) Result {
	desc, err := d.reg.Lookup(name)
	if err != nil {
		return Result{ID: id, Status: StatusFailure, Err: err}
	}

	validated, err := validateArgs(desc, args)
	if err != nil {
		return Result{ID: id, Status: StatusFailure, Err: err}
	}

	payload, err := d.call(ctx, desc, validated)
	if err != nil {
		return Result{ID: id, Status: StatusFailure, Err: err}
	}

	return Result{ID: id, Status: StatusSuccess, Payload: payload}
}

// validateArgs checks the argument mapping against the descriptor's parameter
// specs: unknown keys are rejected, missing required keys are rejected,
// defaults are injected, and safely representable mismatches are coerced.
func validateArgs(desc *descriptor.ToolDescriptor, args map[string]any) (map[string]any, error) {
	specs := make(map[string]descriptor.ParameterSpec, len(desc.Params))
	for _, p := range desc.Params {
		specs[p.Name] = p
	}

	for key := range args {
		if _, ok := specs[key]; !ok {
			return nil, &ArgumentError{Tool: desc.Name, Field: key, Reason: "unknown argument"}
		}
	}

	out := make(map[string]any, len(desc.Params))
	for _, p := range desc.Params {
		raw, present := args[p.Name]
		if !present || raw == nil {
			if p.Default != nil {
				out[p.Name] = p.Default
				continue
			}
			if p.Required {
				return nil, &ArgumentError{Tool: desc.Name, Field: p.Name, Reason: "missing required argument"}
			}
			continue
		}

		coerced, err := coerce(raw, p.Type)
		if err != nil {
			return nil, &ArgumentError{Tool: desc.Name, Field: p.Name, Reason: err.Error()}
		}
		out[p.Name] = coerced
	}

	return out, nil
}

// coerce converts a decoded JSON value to the spec's kind when the conversion
// is lossless, and rejects it otherwise.
func coerce(v any, t schema.Type) (any, error) {
	switch t.Kind {
	case schema.KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil

	case schema.KindInteger:
		switch n := v.(type) {
		case float64:
			if n != float64(int64(n)) {
				return nil, fmt.Errorf("expected integer, got %v", n)
			}
			return int64(n), nil
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case json.Number:
			return n.Int64()
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", n)
			}
			return i, nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", v)
		}

	case schema.KindNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case json.Number:
			return n.Float64()
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", n)
			}
			return f, nil
		default:
			return nil, fmt.Errorf("expected number, got %T", v)
		}

	case schema.KindBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", b)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("expected boolean, got %T", v)
		}

	case schema.KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		for _, allowed := range t.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, fmt.Errorf("value %q is not one of %v", s, t.Enum)

	case schema.KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", v)
		}
		return m, nil

	case schema.KindArray:
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", v)
		}
		if t.Elem == nil {
			return list, nil
		}
		// Coerce into a fresh slice; the input belongs to the protocol layer.
		out := make([]any, len(list))
		for i, item := range list {
			coerced, err := coerce(item, *t.Elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = coerced
		}
		return out, nil

	default:
		return v, nil
	}
}

// call rebuilds the native request struct from the validated arguments,
// invokes the bound method, and flattens the result. This is the inverse of
// schema flattening; deeply nested defaulted fields may not survive the round
// trip, which is an accepted limitation of the bridge.
func (d *Dispatcher) call(ctx context.Context, desc *descriptor.ToolDescriptor, args map[string]any) (payload any, err error) {
	origin := desc.Origin()

	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = &SDKError{Tool: desc.Name, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	var in []reflect.Value
	if origin.HasContext {
		in = append(in, reflect.ValueOf(ctx))
	}

	if origin.Request != nil {
		req, err := buildRequest(desc.Name, origin, args)
		if err != nil {
			return nil, err
		}
		in = append(in, req)
	}

	outs := origin.Func.Call(in)

	var result reflect.Value
	for _, out := range outs {
		if out.Type() == errType {
			if !out.IsNil() {
				return nil, &SDKError{Tool: desc.Name, Cause: out.Interface().(error)}
			}
			continue
		}
		result = out
	}

	if !result.IsValid() {
		return map[string]any{"status": "ok"}, nil
	}

	return schema.FlattenValue(result.Interface()), nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// buildRequest marshals the validated argument mapping back into the SDK's
// request struct through a JSON round trip, matching how the protocol layer
// itself binds arguments.
func buildRequest(tool string, origin descriptor.Origin, args map[string]any) (reflect.Value, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return reflect.Value{}, &ArgumentError{Tool: tool, Field: "", Reason: fmt.Sprintf("arguments are not serializable: %v", err)}
	}

	req := reflect.New(origin.Request)
	if err := json.Unmarshal(data, req.Interface()); err != nil {
		return reflect.Value{}, &ArgumentError{Tool: tool, Field: "", Reason: fmt.Sprintf("arguments do not fit request shape: %v", err)}
	}

	if origin.RequestPtr {
		return req, nil
	}
	return req.Elem(), nil
}
