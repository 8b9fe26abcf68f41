package registry

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bridgetools/mcp-sdk-bridge/internal/descriptor"
	"github.com/bridgetools/mcp-sdk-bridge/internal/docs"
)

func buildDescriptor(t *testing.T, name string) *descriptor.ToolDescriptor {
	t.Helper()
	d, err := descriptor.Build(name, reflect.ValueOf(func() error { return nil }), "", docs.Empty())
	if err != nil {
		t.Fatalf("Build(%q): %v", name, err)
	}
	return d
}

func TestRegistryLookup(t *testing.T) {
	reg := Build([]*descriptor.ToolDescriptor{
		buildDescriptor(t, "alpha_ping"),
		buildDescriptor(t, "beta_ping"),
	}, nil)

	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}

	d, err := reg.Lookup("alpha_ping")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if d.Name != "alpha_ping" {
		t.Errorf("Lookup returned %q", d.Name)
	}

	_, err = reg.Lookup("gamma_ping")
	if err == nil {
		t.Fatal("expected NotFoundError")
	}
	var nfe *NotFoundError
	if !errors.As(err, &nfe) || nfe.Tool != "gamma_ping" {
		t.Errorf("error = %v, want NotFoundError for gamma_ping", err)
	}
}

func TestRegistryKeepsFirstDuplicate(t *testing.T) {
	first := buildDescriptor(t, "dup_tool")
	second := buildDescriptor(t, "dup_tool")

	reg := Build([]*descriptor.ToolDescriptor{first, second}, nil)
	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}

	d, err := reg.Lookup("dup_tool")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if d != first {
		t.Error("duplicate registration should keep the first descriptor")
	}
}

func TestRegistryToolsOrder(t *testing.T) {
	reg := Build([]*descriptor.ToolDescriptor{
		buildDescriptor(t, "c_tool"),
		buildDescriptor(t, "a_tool"),
		buildDescriptor(t, "b_tool"),
	}, nil)

	var names []string
	for _, d := range reg.Tools() {
		names = append(names, d.Name)
	}

	want := []string{"c_tool", "a_tool", "b_tool"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("Tools order = %v, want %v", names, want)
		}
	}
}
