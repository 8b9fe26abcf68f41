package descriptor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/bridgetools/mcp-sdk-bridge/internal/docs"
	"github.com/bridgetools/mcp-sdk-bridge/internal/inspect"
	"github.com/bridgetools/mcp-sdk-bridge/internal/schema"
)

type scaleRequest struct {
	Name     string  `json:"name" desc:"Deployment name"`
	Replicas int     `json:"replicas" default:"1"`
	Ratio    float64 `json:"ratio,omitempty"`
	DryRun   bool    `json:"dry_run,omitempty"`
}

type scaleResult struct {
	Replicas int `json:"replicas"`
}

func TestBuild(t *testing.T) {
	fn := func(ctx context.Context, req *scaleRequest) (*scaleResult, error) {
		return &scaleResult{Replicas: req.Replicas}, nil
	}

	desc, err := Build("apps_scale", reflect.ValueOf(fn), "Scale a deployment.", docs.Empty())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if desc.Name != "apps_scale" {
		t.Errorf("Name = %q", desc.Name)
	}
	if desc.Description != "Scale a deployment." {
		t.Errorf("Description = %q", desc.Description)
	}
	if desc.Result.Kind != schema.KindObject {
		t.Errorf("Result.Kind = %q, want object", desc.Result.Kind)
	}

	wantKinds := map[string]schema.Kind{
		"name":     schema.KindString,
		"replicas": schema.KindInteger,
		"ratio":    schema.KindNumber,
		"dry_run":  schema.KindBoolean,
	}
	if len(desc.Params) != len(wantKinds) {
		t.Fatalf("got %d params, want %d", len(desc.Params), len(wantKinds))
	}
	for _, p := range desc.Params {
		if want, ok := wantKinds[p.Name]; !ok || p.Type.Kind != want {
			t.Errorf("param %q kind = %q, want %q", p.Name, p.Type.Kind, want)
		}
	}

	origin := desc.Origin()
	if !origin.HasContext || !origin.RequestPtr {
		t.Errorf("origin = %+v, want context and pointer request", origin)
	}
	if origin.Request == nil || origin.Request.Name() != "scaleRequest" {
		t.Errorf("origin.Request = %v", origin.Request)
	}
}

func TestBuildDescriptionFallsBackToPlaceholder(t *testing.T) {
	fn := func(ctx context.Context) error { return nil }

	desc, err := Build("apps_ping", reflect.ValueOf(fn), "", docs.Empty())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if desc.Description != docs.Placeholder {
		t.Errorf("Description = %q, want placeholder", desc.Description)
	}
}

func TestBuildPropagatesIntrospectionError(t *testing.T) {
	fn := func(items ...string) error { return nil }

	_, err := Build("apps_bad", reflect.ValueOf(fn), "", docs.Empty())
	if err == nil {
		t.Fatal("expected error for variadic method")
	}
	var ie *inspect.IntrospectionError
	if !errors.As(err, &ie) {
		t.Fatalf("error type = %T, want *inspect.IntrospectionError", err)
	}
}
