package schema

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// FlattenValue converts an SDK result value into a JSON-safe payload following
// the same rules used for input schemas: records become open string-keyed maps,
// collections become slices, and everything past MaxDepth or otherwise
// unrepresentable degrades to an opaque string. Values are never dropped.
func FlattenValue(v any) any {
	if v == nil {
		return nil
	}
	return flatten(reflect.ValueOf(v), 0, make(map[uintptr]bool))
}

func flatten(v reflect.Value, depth int, seen map[uintptr]bool) any {
	if !v.IsValid() {
		return nil
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil
	}

	// Protobuf messages carry their own JSON mapping; protojson already
	// bottoms out repeated and nested fields safely.
	if m, ok := valueInterface(v).(proto.Message); ok {
		if data, err := protojson.Marshal(m); err == nil {
			var out any
			if json.Unmarshal(data, &out) == nil {
				return out
			}
		}
		return fmt.Sprint(valueInterface(v))
	}

	// Types with a custom JSON marshaler often keep their state in unexported
	// fields (quantities, timestamps); walking their exported fields would
	// lose the value, so render them through the marshaler instead.
	if m, ok := valueInterface(v).(json.Marshaler); ok {
		if data, err := m.MarshalJSON(); err == nil {
			var out any
			if json.Unmarshal(data, &out) == nil {
				return out
			}
		}
		return fmt.Sprint(valueInterface(v))
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		addr := v.Pointer()
		if seen[addr] {
			return fmt.Sprintf("<cycle %s>", v.Type().Elem().Name())
		}
		seen[addr] = true
		defer delete(seen, addr)
		return flatten(v.Elem(), depth, seen)

	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return flatten(v.Elem(), depth, seen)

	case reflect.String:
		return v.String()

	case reflect.Bool:
		return v.Bool()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == durationType {
			return time.Duration(v.Int()).String()
		}
		return v.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()

	case reflect.Float32, reflect.Float64:
		return v.Float()

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice {
			if v.IsNil() {
				return nil
			}
			if v.Type().Elem().Kind() == reflect.Uint8 {
				return base64.StdEncoding.EncodeToString(v.Bytes())
			}
			// Slices are reference values and can contain themselves.
			addr := v.Pointer()
			if seen[addr] {
				return fmt.Sprintf("<cycle %s>", v.Type())
			}
			seen[addr] = true
			defer delete(seen, addr)
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = flatten(v.Index(i), depth, seen)
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		addr := v.Pointer()
		if seen[addr] {
			return fmt.Sprintf("<cycle %s>", v.Type())
		}
		seen[addr] = true
		defer delete(seen, addr)
		out := make(map[string]any, v.Len())
		for _, key := range v.MapKeys() {
			out[fmt.Sprint(key.Interface())] = flatten(v.MapIndex(key), depth, seen)
		}
		return out

	case reflect.Struct:
		if v.Type() == timeType {
			return v.Interface().(time.Time).Format(time.RFC3339)
		}
		if depth >= MaxDepth {
			return fmt.Sprint(valueInterface(v))
		}
		return flattenStruct(v, depth, seen)

	default:
		// Channels, funcs and other opaque handles.
		return fmt.Sprintf("<%s>", v.Type().String())
	}
}

func flattenStruct(v reflect.Value, depth int, seen map[uintptr]bool) map[string]any {
	t := v.Type()
	out := make(map[string]any)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, skip := jsonFieldName(field)
		if skip {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct && !hasJSONTag(field) {
			// Embedded structs inline their fields, matching encoding/json.
			for k, val := range flattenStruct(v.Field(i), depth, seen) {
				out[k] = val
			}
			continue
		}

		out[name] = flatten(v.Field(i), depth+1, seen)
	}

	return out
}

// jsonFieldName resolves the payload key for a struct field from its json tag,
// falling back to the field name. The second return reports json:"-".
func jsonFieldName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return field.Name, false
}

func hasJSONTag(field reflect.StructField) bool {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	return name != ""
}

// valueInterface returns v.Interface() when legal, or the value's string
// rendering otherwise. Keeps flatten panic-free on unexported internals.
func valueInterface(v reflect.Value) any {
	if v.CanInterface() {
		return v.Interface()
	}
	return v.String()
}
