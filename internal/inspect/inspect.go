// Package inspect reads method signatures off SDK client values. Go reflection
// exposes no parameter names, so the inspector expects the request-struct shape
// used by generated and hand-written API clients alike: an optional leading
// context.Context followed by at most one struct (or pointer-to-struct)
// parameter whose exported fields name the tool's parameters.
package inspect

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// IntrospectionError reports a method whose signature cannot be mapped to a
// tool schema. Surface walks treat it as "skip this member", never as fatal.
type IntrospectionError struct {
	Method string
	Reason string
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("cannot introspect %s: %s", e.Method, e.Reason)
}

// Param is one raw parameter read from a request struct field, before type
// sanitization.
type Param struct {
	Name        string
	Type        reflect.Type
	Required    bool
	Default     any
	Description string
}

// Signature describes an accepted method shape.
type Signature struct {
	// Params are the declared parameters in field declaration order.
	Params []Param

	// Request is the request struct type, nil when the method takes none.
	Request reflect.Type

	// RequestPtr reports whether the method wants *Request rather than Request.
	RequestPtr bool

	// HasContext reports whether the first parameter is a context.Context.
	HasContext bool

	// Result is the method's value result type, nil for error-only methods.
	Result reflect.Type
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// Method introspects a bound method value. The name parameter is used only for
// error reporting.
func Method(name string, fn reflect.Value) (*Signature, error) {
	if fn.Kind() != reflect.Func {
		return nil, &IntrospectionError{Method: name, Reason: "not a callable"}
	}

	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, &IntrospectionError{Method: name, Reason: "variadic parameters are not introspectable"}
	}

	sig := &Signature{}

	in := 0
	if ft.NumIn() > 0 && ft.In(0) == ctxType {
		sig.HasContext = true
		in = 1
	}

	switch ft.NumIn() - in {
	case 0:
		// Zero-argument tool.
	case 1:
		req := ft.In(in)
		if req.Kind() == reflect.Pointer {
			sig.RequestPtr = true
			req = req.Elem()
		}
		if req.Kind() != reflect.Struct {
			return nil, &IntrospectionError{Method: name, Reason: fmt.Sprintf("parameter names are not recoverable from %s", req)}
		}
		sig.Request = req
		params, err := structParams(name, req)
		if err != nil {
			return nil, err
		}
		sig.Params = params
	default:
		return nil, &IntrospectionError{Method: name, Reason: "more than one request parameter"}
	}

	switch ft.NumOut() {
	case 0:
		// Fire-and-forget methods surface an empty success payload.
	case 1:
		if ft.Out(0) != errType {
			sig.Result = ft.Out(0)
		}
	case 2:
		if ft.Out(1) != errType {
			return nil, &IntrospectionError{Method: name, Reason: "second result must be error"}
		}
		sig.Result = ft.Out(0)
	default:
		return nil, &IntrospectionError{Method: name, Reason: "too many results"}
	}

	return sig, nil
}

func structParams(method string, t reflect.Type) ([]Param, error) {
	var params []Param

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			inner, err := structParams(method, field.Type)
			if err != nil {
				return nil, err
			}
			params = append(params, inner...)
			continue
		}

		name, opts, skip := parseJSONTag(field)
		if skip {
			continue
		}

		switch field.Type.Kind() {
		case reflect.Chan, reflect.Func:
			// Streaming-only parameters are rejected by policy, not
			// approximated: the field never reaches the schema.
			continue
		}

		p := Param{
			Name:        name,
			Type:        field.Type,
			Description: field.Tag.Get("desc"),
		}

		if def, ok := field.Tag.Lookup("default"); ok {
			v, err := parseDefault(field.Type, def)
			if err != nil {
				return nil, &IntrospectionError{Method: method, Reason: fmt.Sprintf("bad default for %s: %v", name, err)}
			}
			p.Default = v
		}

		p.Required = p.Default == nil &&
			field.Type.Kind() != reflect.Pointer &&
			!opts.contains("omitempty")

		params = append(params, p)
	}

	return params, nil
}

type tagOptions string

func (o tagOptions) contains(opt string) bool {
	for _, part := range strings.Split(string(o), ",") {
		if part == opt {
			return true
		}
	}
	return false
}

func parseJSONTag(field reflect.StructField) (string, tagOptions, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", "", true
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = SnakeCase(field.Name)
	}
	return name, tagOptions(opts), false
}

func parseDefault(t reflect.Type, raw string) (any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return raw, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseInt(raw, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, 64)
	case reflect.Bool:
		return strconv.ParseBool(raw)
	default:
		return nil, fmt.Errorf("defaults are only supported for primitive fields, not %s", t)
	}
}

// SnakeCase converts an exported Go identifier to snake_case, keeping acronym
// runs together: ListAPIResources becomes list_api_resources.
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
