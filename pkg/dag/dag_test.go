package dag_test

import (
	"errors"
	"testing"

	"github.com/matzehuels/reportengine/pkg/dag"
)

func TestAddRejectsDuplicateValue(t *testing.T) {
	g := dag.New[string]()
	if err := g.Add("a", nil, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := g.Add("a", nil, nil)
	if !errors.Is(err, dag.ErrDuplicateValue) {
		t.Fatalf("expected ErrDuplicateValue, got %v", err)
	}
}

func TestAddRejectsUnknownEndpoint(t *testing.T) {
	g := dag.New[string]()
	err := g.Add("a", []string{"missing"}, nil)
	if !errors.Is(err, dag.ErrUnknownValue) {
		t.Fatalf("expected ErrUnknownValue, got %v", err)
	}
	if g.Contains("a") {
		t.Fatalf("node should not have been inserted on failure")
	}
}

func TestAddDetectsCycle(t *testing.T) {
	g := dag.New[string]()
	mustAdd(t, g, "a", nil, nil)
	mustAdd(t, g, "b", []string{"a"}, nil)

	// Wiring c as an input of a and output of b closes a cycle a -> b -> c -> a.
	err := g.Add("c", []string{"b"}, []string{"a"})
	var cycleErr *dag.CycleError[string]
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if g.Contains("c") {
		t.Fatalf("graph must be left unchanged after a rejected insert")
	}
	if g.Len() != 2 {
		t.Fatalf("expected graph to retain only the original 2 nodes, got %d", g.Len())
	}
}

func TestAddOrUpdateMergesEdgesAndRollsBackOnCycle(t *testing.T) {
	g := dag.New[string]()
	mustAdd(t, g, "a", nil, nil)
	mustAdd(t, g, "b", []string{"a"}, nil)

	if err := g.AddOrUpdate("a", nil, []string{"b"}); err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}
	outs, err := g.Outputs("a")
	if err != nil || len(outs) != 1 || outs[0] != "b" {
		t.Fatalf("expected a -> b, got %v, err=%v", outs, err)
	}

	err = g.AddOrUpdate("a", []string{"b"}, nil)
	var cycleErr *dag.CycleError[string]
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	outs, _ = g.Outputs("a")
	if len(outs) != 1 || outs[0] != "b" {
		t.Fatalf("edges should be rolled back after failed update, got %v", outs)
	}
	ins, _ := g.Inputs("a")
	if len(ins) != 0 {
		t.Fatalf("rollback should not have kept the offending input, got %v", ins)
	}
}

func TestDeleteDetachesNeighbors(t *testing.T) {
	g := dag.New[string]()
	mustAdd(t, g, "a", nil, nil)
	mustAdd(t, g, "b", []string{"a"}, nil)
	mustAdd(t, g, "c", []string{"b"}, nil)

	if err := g.Delete("b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if g.Contains("b") {
		t.Fatalf("b should have been removed")
	}
	outs, _ := g.Outputs("a")
	if len(outs) != 0 {
		t.Fatalf("a should have lost its output edge to b, got %v", outs)
	}
	ins, _ := g.Inputs("c")
	if len(ins) != 0 {
		t.Fatalf("c should have lost its input edge from b, got %v", ins)
	}
}

func TestTopologicalIterRespectsDependencies(t *testing.T) {
	g := dag.New[string]()
	mustAdd(t, g, "a", nil, nil)
	mustAdd(t, g, "b", []string{"a"}, nil)
	mustAdd(t, g, "c", []string{"a"}, nil)
	mustAdd(t, g, "d", []string{"b", "c"}, nil)

	seen := map[string]int{}
	order := 0
	for v := range g.TopologicalIter() {
		seen[v] = order
		order++
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 values, got %d", len(seen))
	}
	if seen["a"] >= seen["b"] || seen["a"] >= seen["c"] {
		t.Fatalf("a must precede b and c: %v", seen)
	}
	if seen["b"] >= seen["d"] || seen["c"] >= seen["d"] {
		t.Fatalf("b and c must precede d: %v", seen)
	}
}

func TestTopologicalIterEarlyStop(t *testing.T) {
	g := dag.New[string]()
	mustAdd(t, g, "a", nil, nil)
	mustAdd(t, g, "b", []string{"a"}, nil)

	count := 0
	for range g.TopologicalIter() {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("expected the iterator to stop after the first value, got %d", count)
	}
}

func TestResolverDoneRejectsNonPending(t *testing.T) {
	g := dag.New[string]()
	mustAdd(t, g, "a", nil, nil)
	r := g.NewResolver()

	if err := r.Done("a"); !errors.Is(err, dag.ErrNotPending) {
		t.Fatalf("expected ErrNotPending before Next claims a, got %v", err)
	}

	batch := r.Next()
	if len(batch) != 1 || batch[0] != "a" {
		t.Fatalf("expected [a], got %v", batch)
	}
	if err := r.Done("a"); err != nil {
		t.Fatalf("Done: %v", err)
	}
	if !r.Finished() {
		t.Fatalf("resolver should be finished once every node is done")
	}
}

func TestResolverUnblocksOnlyWhenAllInputsDone(t *testing.T) {
	g := dag.New[string]()
	mustAdd(t, g, "a", nil, nil)
	mustAdd(t, g, "b", nil, nil)
	mustAdd(t, g, "c", []string{"a", "b"}, nil)

	r := g.NewResolver()
	first := r.Next()
	if len(first) != 2 {
		t.Fatalf("expected both heads to be ready, got %v", first)
	}
	if err := r.Done(first[0]); err != nil {
		t.Fatalf("Done: %v", err)
	}
	if next := r.Next(); len(next) != 0 {
		t.Fatalf("c must not be ready with only one input done, got %v", next)
	}
	if err := r.Done(first[1]); err != nil {
		t.Fatalf("Done: %v", err)
	}
	next := r.Next()
	if len(next) != 1 || next[0] != "c" {
		t.Fatalf("expected [c] once both inputs are done, got %v", next)
	}
}

func mustAdd(t *testing.T, g *dag.DAG[string], value string, inputs, outputs []string) {
	t.Helper()
	if err := g.Add(value, inputs, outputs); err != nil {
		t.Fatalf("Add(%q): %v", value, err)
	}
}
