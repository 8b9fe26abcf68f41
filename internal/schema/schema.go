// Package schema converts Go types drawn from SDK method signatures into the
// small closed set of schema kinds that MCP tool inputs can represent. It also
// flattens runtime values into JSON-safe payloads using the same rules, so tool
// results never carry raw SDK objects across the protocol boundary.
package schema

import (
	"reflect"
	"time"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Kind is one of the protocol-representable schema kinds. Anything an SDK
// declares that does not fit is degraded, never rejected.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindEnum    Kind = "enum"
	KindAny     Kind = "any"
)

// MaxDepth bounds recursive flattening of nested record values. Records nested
// deeper than this render as opaque strings instead of expanding further,
// which also guarantees termination on cyclic object graphs.
const MaxDepth = 3

// Type is a sanitized, protocol-safe type descriptor.
type Type struct {
	Kind Kind `json:"kind"`

	// Elem is the element type for KindArray.
	Elem *Type `json:"elem,omitempty"`

	// Enum holds the allowed string values for KindEnum.
	Enum []string `json:"enum,omitempty"`

	// Unsanitizable marks kinds we could not represent (binary blobs,
	// callables, opaque handles). The value is still accepted as KindAny;
	// the flag exists for diagnostics only.
	Unsanitizable bool `json:"-"`
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	protoEnum    = reflect.TypeOf((*protoreflect.Enum)(nil)).Elem()
	protoMessage = reflect.TypeOf((*protoreflect.ProtoMessage)(nil)).Elem()
)

// Sanitize maps an arbitrary Go type to a protocol-safe schema type. It never
// fails: unrepresentable types degrade to KindAny so a single odd field cannot
// sink an otherwise usable tool.
func Sanitize(t reflect.Type) Type {
	if t == nil {
		return Type{Kind: KindAny, Unsanitizable: true}
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return Type{Kind: KindString}
	case durationType:
		return Type{Kind: KindString}
	}

	if t.Implements(protoEnum) {
		return Type{Kind: KindEnum, Enum: enumValues(t)}
	}

	// Generated protobuf messages are structured records; they flatten to an
	// open object like any other struct.
	if t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(protoMessage) {
		return Type{Kind: KindObject}
	}

	switch t.Kind() {
	case reflect.String:
		return Type{Kind: KindString}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Type{Kind: KindInteger}
	case reflect.Float32, reflect.Float64:
		return Type{Kind: KindNumber}
	case reflect.Bool:
		return Type{Kind: KindBoolean}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			// Binary blobs have no schema representation.
			return Type{Kind: KindAny, Unsanitizable: true}
		}
		elem := Sanitize(t.Elem())
		return Type{Kind: KindArray, Elem: &elem}
	case reflect.Map, reflect.Struct:
		return Type{Kind: KindObject}
	case reflect.Interface:
		return Type{Kind: KindAny}
	default:
		// Channels, funcs, unsafe pointers and friends.
		return Type{Kind: KindAny, Unsanitizable: true}
	}
}

// enumValues lists the declared value names of a protobuf enum type in
// descriptor order.
func enumValues(t reflect.Type) []string {
	e, ok := reflect.Zero(t).Interface().(protoreflect.Enum)
	if !ok {
		return nil
	}

	values := e.Descriptor().Values()
	names := make([]string, 0, values.Len())
	for i := 0; i < values.Len(); i++ {
		names = append(names, string(values.Get(i).Name()))
	}
	return names
}
