package builder_test

import (
	"reflect"
	"testing"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/namespace"
)

// Grounded on test_complexinput.py's test_default_collect: collecting
// "speclabel" across "dataspecs" falls back to the element default when an
// individual dataspec omits it.
func TestCollectGathersOneValuePerElementInOrder(t *testing.T) {
	root := namespace.Map{
		"dataspecs": []namespace.Map{
			{"speclabel": "l1"},
			{},
		},
	}
	mod := builder.NewModule("m")
	mod.Register(&builder.Signature{
		Name: "dataspecs_speclabel",
		Collect: &builder.CollectSpec{
			Element:        "speclabel",
			Fuzzy:          namespace.FuzzySpec{"dataspecs"},
			ElementDefault: "label",
			HasDefault:     true,
		},
	})
	b := newTestBuilder(root, mod)

	if err := b.ProcessTarget("dataspecs_speclabel", nil, nil); err != nil {
		t.Fatalf("ProcessTarget: %v", err)
	}
	if b.Graph().Len() != 1 {
		t.Fatalf("expected exactly one aggregating node, got %d", b.Graph().Len())
	}

	ready := b.Graph().NewResolver().Next()
	if len(ready) != 1 {
		t.Fatalf("expected one runnable node, got %d", len(ready))
	}
	node := ready[0]
	if !node.HasPrecomputed {
		t.Fatalf("expected the collect node to carry a precomputed result")
	}
	got, ok := node.Precomputed.([]namespace.Value)
	if !ok {
		t.Fatalf("expected []namespace.Value, got %T", node.Precomputed)
	}
	want := []namespace.Value{"l1", "label"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCollectWithoutDefaultFailsOnMissingElement(t *testing.T) {
	root := namespace.Map{
		"dataspecs": []namespace.Map{
			{"speclabel": "l1"},
			{},
		},
	}
	mod := builder.NewModule("m")
	mod.Register(&builder.Signature{
		Name: "dataspecs_speclabel",
		Collect: &builder.CollectSpec{
			Element: "speclabel",
			Fuzzy:   namespace.FuzzySpec{"dataspecs"},
		},
	})
	b := newTestBuilder(root, mod)

	if err := b.ProcessTarget("dataspecs_speclabel", nil, nil); err == nil {
		t.Fatalf("expected an error when an element has no value and no default is declared")
	}
}
