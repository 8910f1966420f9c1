package config_test

import (
	"errors"
	"testing"

	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

func TestResolvePassesThroughPlainValues(t *testing.T) {
	root := namespace.Map{"use_cuts": "nocuts"}
	c := config.New(root, config.NewRegistry())

	v, _, err := c.Resolve(nil, "use_cuts")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "nocuts" {
		t.Fatalf("expected nocuts, got %v", v)
	}
}

func TestResolveInvokesHandler(t *testing.T) {
	root := namespace.Map{"theoryid": 162}
	reg := config.NewRegistry()
	reg.Handle("theoryid", nil, func(raw namespace.Value, _ map[string]namespace.Value) (namespace.Value, error) {
		n := raw.(int)
		return n * 10, nil
	})
	c := config.New(root, reg)

	v, _, err := c.Resolve(nil, "theoryid")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != 1620 {
		t.Fatalf("expected 1620, got %v", v)
	}
}

func TestResolveHandlerWithDependency(t *testing.T) {
	root := namespace.Map{"theoryid": "162", "pdf": true}
	reg := config.NewRegistry()
	reg.Handle("pdf", []string{"theoryid"}, func(_ namespace.Value, args map[string]namespace.Value) (namespace.Value, error) {
		return "pdf-for-" + args["theoryid"].(string), nil
	})
	c := config.New(root, reg)

	v, _, err := c.Resolve(nil, "pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "pdf-for-162" {
		t.Fatalf("expected pdf-for-162, got %v", v)
	}
}

func TestResolveMissingKeyReturnsInputNotFound(t *testing.T) {
	root := namespace.Map{"theoryid": 162}
	c := config.New(root, config.NewRegistry())

	_, _, err := c.Resolve(nil, "pdf")
	var rerr *rerrors.Error
	if !errors.As(err, &rerr) || rerr.Code != rerrors.InputNotFound {
		t.Fatalf("expected InputNotFound, got %v", err)
	}
}

func TestResolveProduceHandlerNeedsNoRawValue(t *testing.T) {
	root := namespace.Map{}
	reg := config.NewRegistry()
	reg.Produce("run_id", nil, func(_ namespace.Value, _ map[string]namespace.Value) (namespace.Value, error) {
		return "synthetic-run-id", nil
	})
	c := config.New(root, reg)

	v, _, err := c.Resolve(nil, "run_id")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "synthetic-run-id" {
		t.Fatalf("expected synthetic-run-id, got %v", v)
	}
}

func TestResolveDescendsUnhandledMapping(t *testing.T) {
	root := namespace.Map{
		"fit": namespace.Map{"id": "NNPDF40"},
	}
	c := config.New(root, config.NewRegistry())

	v, _, err := c.Resolve(nil, "fit")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m, ok := v.(namespace.Map)
	if !ok || m["id"] != "NNPDF40" {
		t.Fatalf("expected descended mapping with id=NNPDF40, got %v", v)
	}
}

func TestResolveFromIndirection(t *testing.T) {
	root := namespace.Map{
		"fit":      namespace.Map{"theoryid": 53},
		"theoryid": namespace.Map{"from_": "fit"},
	}
	c := config.New(root, config.NewRegistry())

	v, _, err := c.Resolve(nil, "theoryid")
	if err != nil {
		t.Fatalf("Resolve(theoryid): %v", err)
	}
	if v != 53 {
		t.Fatalf("expected 53 via from_ indirection, got %v", v)
	}
}

func TestParseActionsFlattensTree(t *testing.T) {
	raw := []namespace.Value{
		"plot_pdfs",
		namespace.Map{"plot_fits": namespace.Map{"normalize_to": 0}},
		namespace.Map{"report": []namespace.Value{
			"summarize",
		}},
	}

	targets, err := config.ParseActions(raw)
	if err != nil {
		t.Fatalf("ParseActions: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}
	if targets[0].Name != "plot_pdfs" || len(targets[0].Fuzzy) != 0 {
		t.Fatalf("unexpected first target: %+v", targets[0])
	}
	if targets[1].Name != "plot_fits" || len(targets[1].ExtraArgs) != 1 {
		t.Fatalf("unexpected second target: %+v", targets[1])
	}
	if targets[2].Name != "summarize" || len(targets[2].Fuzzy) != 1 || targets[2].Fuzzy[0] != "report" {
		t.Fatalf("unexpected third target: %+v", targets[2])
	}
}
