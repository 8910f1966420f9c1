package namespace_test

import (
	"errors"
	"testing"

	"github.com/matzehuels/reportengine/pkg/namespace"
)

func TestStackGetSearchesInnermostFirst(t *testing.T) {
	root := namespace.Map{"x": "root"}
	s := namespace.NewStack(root).Push(namespace.Map{"x": "inner"})

	v, ok := s.Get("x")
	if !ok || v != "inner" {
		t.Fatalf("expected inner shadowing root, got %v, %v", v, ok)
	}
}

func TestStackGetWhereSentinelWhenMissing(t *testing.T) {
	s := namespace.NewStack(namespace.Map{"a": 1}).Push(namespace.Map{"b": 2})
	_, idx, ok := s.GetWhere("missing")
	if ok {
		t.Fatalf("expected not found")
	}
	if idx != s.Len() {
		t.Fatalf("expected sentinel index %d, got %d", s.Len(), idx)
	}
}

func TestStackSetWritesInnermostLayer(t *testing.T) {
	s := namespace.NewStack(namespace.Map{}).Push(namespace.Map{})
	s.Set("k", "v")
	if v, ok := s.Layer(0)["k"]; !ok || v != "v" {
		t.Fatalf("Set should write the innermost layer, got %v", s.Layer(0))
	}
	if _, ok := s.Layer(1)["k"]; ok {
		t.Fatalf("Set must not touch outer layers")
	}
}

func TestResolveDescendsThroughMapAndList(t *testing.T) {
	root := namespace.Map{
		"theory": namespace.Map{
			"experiments": []namespace.Map{
				{"name": "A"},
				{"name": "B"},
			},
		},
	}
	spec := namespace.Spec{namespace.Bare("theory"), namespace.Indexed("experiments", 1)}
	s, err := namespace.NewStack(root).Resolve(spec)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	v, ok := s.Get("name")
	if !ok || v != "B" {
		t.Fatalf("expected name=B, got %v, %v", v, ok)
	}
}

func TestResolvePartialStopsAtFirstUnknownSegment(t *testing.T) {
	root := namespace.Map{"theory": namespace.Map{"id": 1}}
	spec := namespace.Spec{namespace.Bare("theory"), namespace.Bare("missing")}
	remainder, s, err := namespace.NewStack(root).ResolvePartial(spec)
	if err != nil {
		t.Fatalf("ResolvePartial: %v", err)
	}
	if len(remainder) != 1 || remainder[0].Name != "missing" {
		t.Fatalf("expected [missing] remainder, got %v", remainder)
	}
	if v, _ := s.Get("id"); v != 1 {
		t.Fatalf("expected to have descended into theory, got %v", v)
	}
}

func TestNSListExpandsToSingleKeyLayers(t *testing.T) {
	root := namespace.Map{
		"pdfs": namespace.NewNSList("pdf", []namespace.Value{"NNPDF40", "CT18"}),
	}
	specs, err := namespace.Expand(root, namespace.FuzzySpec{"pdfs"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 concrete specs, got %d", len(specs))
	}
	for i, want := range []string{"NNPDF40", "CT18"} {
		s, err := namespace.NewStack(root).Resolve(specs[i])
		if err != nil {
			t.Fatalf("Resolve(%v): %v", specs[i], err)
		}
		if v, ok := s.Get("pdf"); !ok || v != want {
			t.Fatalf("spec %d: expected pdf=%s, got %v", i, want, v)
		}
	}
}

func TestExpandMissingNameReturnsError(t *testing.T) {
	root := namespace.Map{}
	_, err := namespace.Expand(root, namespace.FuzzySpec{"nope"})
	var missing *namespace.MissingNameError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingNameError, got %v", err)
	}
}

func TestStackCacheReusesResolution(t *testing.T) {
	root := namespace.Map{"a": namespace.Map{"b": 1}}
	spec := namespace.Spec{namespace.Bare("a")}
	c := namespace.NewStackCache()

	s1, err := c.GetOrResolve(root, spec)
	if err != nil {
		t.Fatalf("GetOrResolve: %v", err)
	}
	s2, err := c.GetOrResolve(root, spec)
	if err != nil {
		t.Fatalf("GetOrResolve: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("expected the same cached stack instance to be returned")
	}
}
