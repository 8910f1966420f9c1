package providers_test

import (
	"testing"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/providers"
)

func TestWithEnvironmentExposesRunID(t *testing.T) {
	mod := providers.WithEnvironment(&builder.Environment{RunID: "run-123"})
	sig, ok := mod.Lookup("run_id")
	if !ok {
		t.Fatalf("expected run_id provider to be registered")
	}
	v, err := sig.Fn(nil)
	if err != nil {
		t.Fatalf("run_id: %v", err)
	}
	if v != "run-123" {
		t.Fatalf("expected run-123, got %v", v)
	}
}

func TestStringsUppercaseAndLowercase(t *testing.T) {
	mod := providers.Strings()

	upper, ok := mod.Lookup("uppercase")
	if !ok {
		t.Fatalf("expected uppercase provider to be registered")
	}
	v, err := upper.Fn(map[string]namespace.Value{"text": "hi"})
	if err != nil || v != "HI" {
		t.Fatalf("uppercase: got %v, %v", v, err)
	}

	lower, ok := mod.Lookup("lowercase")
	if !ok {
		t.Fatalf("expected lowercase provider to be registered")
	}
	v, err = lower.Fn(map[string]namespace.Value{"text": "HI"})
	if err != nil || v != "hi" {
		t.Fatalf("lowercase: got %v, %v", v, err)
	}
}

func TestStringsUppercaseRejectsNonString(t *testing.T) {
	mod := providers.Strings()
	upper, _ := mod.Lookup("uppercase")
	if _, err := upper.Fn(map[string]namespace.Value{"text": 5}); err == nil {
		t.Fatalf("expected an error for a non-string text argument")
	}
}

func TestNamedRegistryContainsStrings(t *testing.T) {
	factory, ok := providers.Named["strings"]
	if !ok {
		t.Fatalf("expected \"strings\" to be registered in Named")
	}
	if factory() == nil {
		t.Fatalf("expected Named[\"strings\"] to construct a module")
	}
}
