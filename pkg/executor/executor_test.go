package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/dag"
	"github.com/matzehuels/reportengine/pkg/executor"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

func intParam(name string) builder.Param { return builder.Param{Name: name} }

// buildGraph resolves target against root through mod and returns the
// resulting graph; every CallSpec's NSSpec is relative to root.
func buildGraph(t *testing.T, root namespace.Map, mod *builder.Module, target string) *builder.Graph {
	t.Helper()
	cfg := config.New(root, config.NewRegistry())
	b := builder.New(cfg, []*builder.Module{mod}, &builder.Environment{RunID: "test-run"})
	if err := b.ProcessTarget(target, nil, nil); err != nil {
		t.Fatalf("ProcessTarget: %v", err)
	}
	return b.Graph()
}

// resultOf walks g for the CallSpec that produced name and returns what it
// wrote. A provider's result lives only in its own CallSpec.Defaults layer
// (builder.go's makeNode pushes a private defaults map per node) - it is
// never merged back into the document root - so tests must look it up this
// way rather than reading the root namespace.Map directly.
func resultOf(t *testing.T, g *builder.Graph, name string) namespace.Value {
	t.Helper()
	for cs := range g.TopologicalIter() {
		if cs.ResultName == name {
			return cs.Defaults[name]
		}
	}
	t.Fatalf("no CallSpec in graph produced %q", name)
	return nil
}

// Grounded on test_vp.py's breakfast example threaded through the whole
// pipeline: a two-stage provider chain resolved and run end to end.
func TestSequentialRunsAChainAndWritesResultsInOrder(t *testing.T) {
	root := namespace.Map{"theoryid": 162}
	mod := builder.NewModule("fit")
	mod.Register(&builder.Signature{
		Name:   "pdf",
		Params: []builder.Param{intParam("theoryid")},
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			return args["theoryid"].(int) * 2, nil
		},
	})
	mod.Register(&builder.Signature{
		Name:   "report",
		Params: []builder.Param{intParam("pdf")},
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			return args["pdf"].(int) + 1, nil
		},
	})

	g := buildGraph(t, root, mod, "report")

	seq := executor.NewSequential(&builder.Environment{})
	if err := seq.Run(context.Background(), g, root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := resultOf(t, g, "pdf"); got != 324 {
		t.Fatalf("expected pdf=324, got %v", got)
	}
	if got := resultOf(t, g, "report"); got != 325 {
		t.Fatalf("expected report=325, got %v", got)
	}
}

func TestSequentialSetUniqueRejectsARepeatWrite(t *testing.T) {
	root := namespace.Map{"n": 1}
	mod := builder.NewModule("m")
	sig := &builder.Signature{
		Name: "double",
		Fn: func(map[string]namespace.Value) (namespace.Value, error) {
			return 2, nil
		},
	}
	mod.Register(sig)

	cs := &builder.CallSpec{
		Signature:  sig,
		ResultName: "double",
		WriteMode:  builder.SetUnique,
		Defaults:   namespace.Map{"double": 1},
	}
	graph := dagOf(t, cs)

	seq := executor.NewSequential(nil)
	err := seq.Run(context.Background(), graph, root)
	var rerr *rerrors.Error
	if !errors.As(err, &rerr) || rerr.Code != rerrors.ResourceError {
		t.Fatalf("expected ResourceError for a SetUnique collision, got %v", err)
	}
}

func TestSequentialAppendAccumulatesAcrossWrites(t *testing.T) {
	root := namespace.Map{}
	layer := namespace.Map{}
	sig := &builder.Signature{
		Name: "tally",
		Fn: func(map[string]namespace.Value) (namespace.Value, error) {
			return "x", nil
		},
	}
	cs1 := &builder.CallSpec{Signature: sig, ResultName: "tally", WriteMode: builder.Append, Defaults: layer}
	cs2 := &builder.CallSpec{Signature: sig, ResultName: "tally", WriteMode: builder.Append, Defaults: layer}

	seq := executor.NewSequential(nil)
	for _, cs := range []*builder.CallSpec{cs1, cs2} {
		if err := seq.Run(context.Background(), dagOf(t, cs), root); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	got, ok := layer["tally"].([]namespace.Value)
	if !ok || len(got) != 2 {
		t.Fatalf("expected two appended entries, got %v", layer["tally"])
	}
}

func TestSequentialInvokesPrepareAndFinalAction(t *testing.T) {
	root := namespace.Map{}
	var gotEnv *builder.Environment
	sig := &builder.Signature{
		Name: "labelled",
		Fn: func(map[string]namespace.Value) (namespace.Value, error) {
			return "raw", nil
		},
		Prepare: func(cs *builder.CallSpec, ns *namespace.Stack, env *builder.Environment) (map[string]namespace.Value, error) {
			gotEnv = env
			return map[string]namespace.Value{"suffix": "-prepared"}, nil
		},
		FinalAction: func(result namespace.Value, prepared map[string]namespace.Value) (namespace.Value, error) {
			return result.(string) + prepared["suffix"].(string), nil
		},
	}
	cs := &builder.CallSpec{Signature: sig, ResultName: "labelled", WriteMode: builder.SetUnique, Defaults: namespace.Map{}}

	env := &builder.Environment{RunID: "r1"}
	seq := executor.NewSequential(env)
	if err := seq.Run(context.Background(), dagOf(t, cs), root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotEnv != env {
		t.Fatalf("expected Prepare to receive the driver's Environment")
	}
	if got := cs.Defaults["labelled"]; got != "raw-prepared" {
		t.Fatalf("expected FinalAction's result to be written, got %v", got)
	}
}

func TestSequentialUsesPrecomputedResultWithoutCallingFn(t *testing.T) {
	root := namespace.Map{}
	called := false
	sig := &builder.Signature{
		Name: "collected",
		Fn: func(map[string]namespace.Value) (namespace.Value, error) {
			called = true
			return nil, nil
		},
	}
	cs := &builder.CallSpec{
		Signature:      sig,
		ResultName:     "collected",
		WriteMode:      builder.SetUnique,
		Defaults:       namespace.Map{},
		Precomputed:    []namespace.Value{"a", "b"},
		HasPrecomputed: true,
	}

	seq := executor.NewSequential(nil)
	if err := seq.Run(context.Background(), dagOf(t, cs), root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if called {
		t.Fatalf("expected Fn not to be called for a precomputed CallSpec")
	}
	got, ok := cs.Defaults["collected"].([]namespace.Value)
	if !ok || len(got) != 2 {
		t.Fatalf("expected the precomputed list to be written verbatim, got %v", cs.Defaults["collected"])
	}
}

// Grounded on SPEC_FULL.md's parallel-equivalence scenario: the same graph
// run sequentially and in parallel produces the same namespace contents.
func TestParallelProducesTheSameResultAsSequential(t *testing.T) {
	mod := builder.NewModule("fit")
	mod.Register(&builder.Signature{
		Name:   "pdf",
		Params: []builder.Param{intParam("theoryid")},
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			return args["theoryid"].(int) * 2, nil
		},
	})
	mod.Register(&builder.Signature{
		Name:   "summary_a",
		Params: []builder.Param{intParam("pdf")},
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			return args["pdf"].(int) + 1, nil
		},
	})
	mod.Register(&builder.Signature{
		Name:   "summary_b",
		Params: []builder.Param{intParam("pdf")},
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			return args["pdf"].(int) + 2, nil
		},
	})

	rootSeq := namespace.Map{"theoryid": 10}
	gSeq := buildGraph(t, rootSeq, mod, "summary_a")
	seq := executor.NewSequential(nil)
	if err := seq.Run(context.Background(), gSeq, rootSeq); err != nil {
		t.Fatalf("sequential Run: %v", err)
	}

	rootPar := namespace.Map{"theoryid": 10}
	gPar := buildGraph(t, rootPar, mod, "summary_a")
	par := executor.NewParallel(nil, 4)
	if err := par.Run(context.Background(), gPar, rootPar); err != nil {
		t.Fatalf("parallel Run: %v", err)
	}

	if resultOf(t, gSeq, "pdf") != resultOf(t, gPar, "pdf") || resultOf(t, gSeq, "summary_a") != resultOf(t, gPar, "summary_a") {
		t.Fatalf("expected matching results between drivers")
	}
}

func TestParallelSurfacesTheFirstProviderError(t *testing.T) {
	mod := builder.NewModule("m")
	mod.Register(&builder.Signature{
		Name: "boom",
		Fn: func(map[string]namespace.Value) (namespace.Value, error) {
			return nil, errors.New("boom")
		},
	})
	root := namespace.Map{}
	g := buildGraph(t, root, mod, "boom")

	par := executor.NewParallel(nil, 2)
	err := par.Run(context.Background(), g, root)
	var rerr *rerrors.Error
	if !errors.As(err, &rerr) || rerr.Code != rerrors.ResourceError {
		t.Fatalf("expected ResourceError, got %v", err)
	}
}

func TestParallelCancellationPropagatesContextCanceled(t *testing.T) {
	mod := builder.NewModule("m")
	mod.Register(&builder.Signature{
		Name: "slow",
		Fn: func(map[string]namespace.Value) (namespace.Value, error) {
			return "x", nil
		},
	})
	root := namespace.Map{}
	g := buildGraph(t, root, mod, "slow")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	par := executor.NewParallel(nil, 1)
	err := par.Run(ctx, g, root)
	if err == nil {
		t.Fatalf("expected an error from a pre-cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled somewhere in the chain, got %v", err)
	}
}

// dagOf builds a single-node graph directly from a hand-constructed
// CallSpec, bypassing the builder - used for write-mode tests that need
// CallSpecs the builder itself never emits (SetOrUpdate, bare Append).
func dagOf(t *testing.T, specs ...*builder.CallSpec) *builder.Graph {
	t.Helper()
	g := dag.New[*builder.CallSpec]()
	for _, cs := range specs {
		if err := g.AddOrUpdate(cs, nil, nil); err != nil {
			t.Fatalf("AddOrUpdate: %v", err)
		}
	}
	return g
}
