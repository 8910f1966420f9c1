package config_test

import (
	"fmt"
	"testing"

	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/namespace"
)

type exampleRules struct{}

func (exampleRules) ParseTheoryid(raw int) (int, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("theoryid must be positive, got %d", raw)
	}
	return raw, nil
}

func (exampleRules) ParsePdf(raw string, theoryid int) (string, error) {
	return fmt.Sprintf("%s@%d", raw, theoryid), nil
}

func (exampleRules) ProduceRunLabel() (string, error) {
	return "default-run", nil
}

func TestRegistryScanRegistersParseAndProduceMethods(t *testing.T) {
	reg := config.NewRegistry()
	err := reg.Scan(exampleRules{}, map[string][]string{
		"pdf": {"theoryid"},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if _, ok := reg.Lookup("theoryid"); !ok {
		t.Fatal("expected theoryid handler to be registered")
	}
	if _, ok := reg.Lookup("pdf"); !ok {
		t.Fatal("expected pdf handler to be registered")
	}
	h, ok := reg.Lookup("runLabel")
	if !ok {
		t.Fatal("expected runLabel handler to be registered")
	}
	if h.Kind != config.KindProduce {
		t.Fatalf("expected runLabel to be a Produce handler, got %v", h.Kind)
	}
}

func TestRegistryScanHandlerInvocation(t *testing.T) {
	reg := config.NewRegistry()
	if err := reg.Scan(exampleRules{}, map[string][]string{"pdf": {"theoryid"}}); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	root := namespace.Map{"theoryid": 162, "pdf": "NNPDF40"}
	c := config.New(root, reg)

	v, _, err := c.Resolve(nil, "pdf")
	if err != nil {
		t.Fatalf("Resolve(pdf): %v", err)
	}
	if v != "NNPDF40@162" {
		t.Fatalf("expected NNPDF40@162, got %v", v)
	}
}

func TestElementOfWrapsListAsNSList(t *testing.T) {
	reg := config.NewRegistry()
	reg.ElementOf("pdfs", "pdf")

	root := namespace.Map{
		"pdfs": []namespace.Value{"NNPDF40", "CT18"},
	}
	c := config.New(root, reg)

	v, _, err := c.Resolve(nil, "pdfs")
	if err != nil {
		t.Fatalf("Resolve(pdfs): %v", err)
	}
	list, ok := v.(*namespace.NSList)
	if !ok {
		t.Fatalf("expected *namespace.NSList, got %T", v)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", list.Len())
	}
}
