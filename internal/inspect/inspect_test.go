package inspect

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type pageMeta struct {
	Cursor string `json:"cursor,omitempty" desc:"Opaque continuation cursor"`
}

type searchRequest struct {
	pageMeta

	Query    string   `json:"query" desc:"Search query"`
	PageSize int      `json:"page_size" default:"25"`
	Deep     bool     `json:"deep,omitempty"`
	Timeout  *int     `json:"timeout"`
	Events   chan int `json:"events"`
	internal string   `json:"internal"`
	Skipped  string   `json:"-"`
}

type searchResult struct {
	Hits []string `json:"hits"`
}

func TestMethodFullShape(t *testing.T) {
	fn := func(ctx context.Context, req *searchRequest) (*searchResult, error) {
		return nil, nil
	}

	sig, err := Method("Search", reflect.ValueOf(fn))
	if err != nil {
		t.Fatalf("Method: %v", err)
	}

	if !sig.HasContext {
		t.Error("HasContext = false, want true")
	}
	if !sig.RequestPtr {
		t.Error("RequestPtr = false, want true")
	}
	if sig.Request == nil || sig.Request.Name() != "searchRequest" {
		t.Errorf("Request = %v, want searchRequest", sig.Request)
	}
	if sig.Result == nil || sig.Result.Kind() != reflect.Pointer {
		t.Errorf("Result = %v, want *searchResult", sig.Result)
	}

	// Embedded fields are inlined first, channel, unexported and json:"-"
	// fields disappear.
	wantNames := []string{"cursor", "query", "page_size", "deep", "timeout"}
	if len(sig.Params) != len(wantNames) {
		t.Fatalf("got %d params %v, want %d", len(sig.Params), paramNames(sig.Params), len(wantNames))
	}
	for i, want := range wantNames {
		if sig.Params[i].Name != want {
			t.Errorf("param[%d] = %q, want %q", i, sig.Params[i].Name, want)
		}
	}

	byName := make(map[string]Param)
	for _, p := range sig.Params {
		byName[p.Name] = p
	}

	if !byName["query"].Required {
		t.Error("query should be required")
	}
	if byName["query"].Description != "Search query" {
		t.Errorf("query description = %q", byName["query"].Description)
	}
	if byName["page_size"].Required {
		t.Error("page_size has a default and must be optional")
	}
	if got := byName["page_size"].Default; got != int64(25) {
		t.Errorf("page_size default = %v (%T), want int64(25)", got, got)
	}
	if byName["deep"].Required {
		t.Error("omitempty field should be optional")
	}
	if byName["timeout"].Required {
		t.Error("pointer field should be optional")
	}
}

func paramNames(params []Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func TestMethodShapes(t *testing.T) {
	tests := []struct {
		name       string
		fn         any
		wantErr    bool
		hasContext bool
		hasRequest bool
		hasResult  bool
	}{
		{
			name:       "no arguments error only",
			fn:         func(ctx context.Context) error { return nil },
			hasContext: true,
		},
		{
			name:      "no context value request",
			fn:        func(req searchRequest) (searchResult, error) { return searchResult{}, nil },
			hasResult: true, hasRequest: true,
		},
		{
			name: "fire and forget",
			fn:   func() {},
		},
		{
			name:      "single non-error result",
			fn:        func() string { return "" },
			hasResult: true,
		},
		{
			name:    "variadic",
			fn:      func(items ...string) error { return nil },
			wantErr: true,
		},
		{
			name:    "scalar parameter has no name",
			fn:      func(ctx context.Context, id string) error { return nil },
			wantErr: true,
		},
		{
			name:    "two request parameters",
			fn:      func(a, b searchRequest) error { return nil },
			wantErr: true,
		},
		{
			name:    "second result not error",
			fn:      func() (string, string) { return "", "" },
			wantErr: true,
		},
		{
			name:    "three results",
			fn:      func() (string, int, error) { return "", 0, nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Method(tt.name, reflect.ValueOf(tt.fn))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected introspection error")
				}
				var ie *IntrospectionError
				if !errors.As(err, &ie) {
					t.Fatalf("error type = %T, want *IntrospectionError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Method: %v", err)
			}
			if sig.HasContext != tt.hasContext {
				t.Errorf("HasContext = %v, want %v", sig.HasContext, tt.hasContext)
			}
			if (sig.Request != nil) != tt.hasRequest {
				t.Errorf("Request = %v, want present=%v", sig.Request, tt.hasRequest)
			}
			if (sig.Result != nil) != tt.hasResult {
				t.Errorf("Result = %v, want present=%v", sig.Result, tt.hasResult)
			}
		})
	}
}

func TestMethodRejectsNonFunc(t *testing.T) {
	if _, err := Method("NotAFunc", reflect.ValueOf(42)); err == nil {
		t.Fatal("expected error for non-function value")
	}
}

func TestMethodBadDefault(t *testing.T) {
	type badReq struct {
		Limit int `json:"limit" default:"lots"`
	}
	_, err := Method("Bad", reflect.ValueOf(func(req badReq) error { return nil }))
	if err == nil {
		t.Fatal("expected error for unparseable default")
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ListResources", "list_resources"},
		{"GetResource", "get_resource"},
		{"ListAPIResources", "list_api_resources"},
		{"EncodeBase64", "encode_base64"},
		{"HTTPClient", "http_client"},
		{"Walk", "walk"},
		{"GetPodLogs", "get_pod_logs"},
		{"ID", "id"},
	}

	for _, tt := range tests {
		if got := SnakeCase(tt.in); got != tt.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
