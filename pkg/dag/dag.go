// Package dag implements a directed acyclic graph whose nodes are identified
// by arbitrary comparable values rather than by position. Unlike a graph used
// for layout, every value appears in the graph at most once and can be looked
// up in constant time.
//
// The engine builds one DAG per run: nodes are call specifications produced
// while resolving a runcard, and edges are the dependencies between them.
// Cycles are rejected eagerly, at insertion time, rather than being detected
// by a separate validation pass.
package dag

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateValue is returned by [DAG.Add] when a node with the same
	// value already exists in the graph. Every node must have a unique value.
	ErrDuplicateValue = errors.New("dag: value already present in graph")

	// ErrUnknownValue is returned when an operation references a value that
	// has no corresponding node in the graph.
	ErrUnknownValue = errors.New("dag: value not found in graph")

	// ErrCycle is returned by [DAG.Add] and [DAG.AddOrUpdate] when wiring the
	// new node would introduce a cycle. The graph is left unchanged.
	ErrCycle = errors.New("dag: operation would introduce a cycle")

	// ErrNotPending is returned by [Resolver.Done] when the given value was
	// never returned by [Resolver.Next], or has already been marked done.
	ErrNotPending = errors.New("dag: value is not pending")
)

// CycleError reports the node whose insertion would close a cycle, together
// with the path that was walked while detecting it.
type CycleError[T comparable] struct {
	Value T
	Path  []T
}

func (e *CycleError[T]) Error() string {
	return fmt.Sprintf("dag: %v introduces a cycle: %v", e.Value, e.Path)
}

func (e *CycleError[T]) Unwrap() error { return ErrCycle }

// node is the internal representation of a single DAG vertex. inputs and
// outputs hold the values (not pointers) of adjacent nodes, mirroring the
// "set of hashable values" representation of the reference implementation.
type node[T comparable] struct {
	value   T
	inputs  map[T]struct{}
	outputs map[T]struct{}
}

func newNode[T comparable](value T) *node[T] {
	return &node[T]{value: value, inputs: map[T]struct{}{}, outputs: map[T]struct{}{}}
}

// DAG is a directed acyclic graph keyed by node value. The zero value is not
// usable; construct one with [New].
type DAG[T comparable] struct {
	nodes  map[T]*node[T]
	heads  map[T]struct{} // nodes with no inputs
	leaves map[T]struct{} // nodes with no outputs
}

// New creates an empty DAG.
func New[T comparable]() *DAG[T] {
	return &DAG[T]{
		nodes:  map[T]*node[T]{},
		heads:  map[T]struct{}{},
		leaves: map[T]struct{}{},
	}
}

// Len returns the number of nodes in the graph.
func (g *DAG[T]) Len() int { return len(g.nodes) }

// Contains reports whether value has a node in the graph.
func (g *DAG[T]) Contains(value T) bool {
	_, ok := g.nodes[value]
	return ok
}

// Inputs returns the direct dependencies of value, in no particular order.
func (g *DAG[T]) Inputs(value T) ([]T, error) {
	n, ok := g.nodes[value]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownValue, value)
	}
	return keys(n.inputs), nil
}

// Outputs returns the direct dependents of value, in no particular order.
func (g *DAG[T]) Outputs(value T) ([]T, error) {
	n, ok := g.nodes[value]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownValue, value)
	}
	return keys(n.outputs), nil
}

// Add inserts value into the graph, wired to the given inputs and outputs
// (which must already exist in the graph). It returns a *[CycleError] if the
// new wiring would close a cycle; the graph is left unchanged in that case.
func (g *DAG[T]) Add(value T, inputs, outputs []T) error {
	if g.Contains(value) {
		return fmt.Errorf("%w: %v", ErrDuplicateValue, value)
	}
	n := newNode(value)
	for _, in := range inputs {
		if !g.Contains(in) {
			return fmt.Errorf("%w: %v", ErrUnknownValue, in)
		}
		n.inputs[in] = struct{}{}
	}
	for _, out := range outputs {
		if !g.Contains(out) {
			return fmt.Errorf("%w: %v", ErrUnknownValue, out)
		}
		n.outputs[out] = struct{}{}
	}
	g.nodes[value] = n
	if err := g.wire(n); err != nil {
		_ = g.Delete(value)
		return err
	}
	return nil
}

// AddOrUpdate inserts value if absent, or otherwise merges the given inputs
// and outputs into the existing node's edge sets. It returns a *[CycleError]
// if the resulting wiring would close a cycle; in that case the node's edges
// are rolled back to their state before the call.
func (g *DAG[T]) AddOrUpdate(value T, inputs, outputs []T) error {
	n, ok := g.nodes[value]
	if !ok {
		return g.Add(value, inputs, outputs)
	}

	newIn := map[T]struct{}{}
	for _, in := range inputs {
		if in == value {
			return &CycleError[T]{Value: value, Path: []T{value}}
		}
		if _, already := n.inputs[in]; !already {
			newIn[in] = struct{}{}
		}
	}
	newOut := map[T]struct{}{}
	for _, out := range outputs {
		if out == value {
			return &CycleError[T]{Value: value, Path: []T{value}}
		}
		if _, already := n.outputs[out]; !already {
			newOut[out] = struct{}{}
		}
	}

	for in := range newIn {
		n.inputs[in] = struct{}{}
	}
	for out := range newOut {
		n.outputs[out] = struct{}{}
	}

	if err := g.wire(n); err != nil {
		for in := range newIn {
			delete(n.inputs, in)
			parent := g.nodes[in]
			delete(parent.outputs, value)
			if len(parent.outputs) == 0 {
				g.leaves[in] = struct{}{}
			}
		}
		for out := range newOut {
			delete(n.outputs, out)
			child := g.nodes[out]
			delete(child.inputs, value)
			if len(child.inputs) == 0 {
				g.heads[out] = struct{}{}
			}
		}
		if len(n.inputs) == 0 {
			g.heads[value] = struct{}{}
		}
		if len(n.outputs) == 0 {
			g.leaves[value] = struct{}{}
		}
		return err
	}
	return nil
}

// wire refreshes head/leaf bookkeeping for a newly added or updated node and
// checks for cycles introduced by it. Mirrors reportengine's _wire_node.
func (g *DAG[T]) wire(n *node[T]) error {
	if len(n.inputs) == 0 {
		g.heads[n.value] = struct{}{}
	} else {
		for in := range n.inputs {
			g.nodes[in].outputs[n.value] = struct{}{}
		}
		delete(g.heads, n.value)
	}

	if len(n.outputs) == 0 {
		g.leaves[n.value] = struct{}{}
	} else {
		for out := range n.outputs {
			g.nodes[out].inputs[n.value] = struct{}{}
		}
		delete(g.leaves, n.value)
	}

	for in := range n.inputs {
		delete(g.leaves, in)
	}
	for out := range n.outputs {
		delete(g.heads, out)
	}

	// A node with no inputs or no outputs cannot be part of a cycle it just
	// introduced.
	if len(n.inputs) == 0 || len(n.outputs) == 0 {
		return nil
	}

	visited := map[T]struct{}{}
	for out := range n.outputs {
		var path []T
		for v := range g.depthFirst([]T{out}, visited) {
			path = append(path, v)
			if v == n.value {
				return &CycleError[T]{Value: n.value, Path: path}
			}
		}
	}
	return nil
}

// Delete removes value and detaches it from its neighbors' edge sets.
func (g *DAG[T]) Delete(value T) error {
	n, ok := g.nodes[value]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownValue, value)
	}
	delete(g.nodes, value)
	delete(g.heads, value)
	delete(g.leaves, value)
	for in := range n.inputs {
		parent := g.nodes[in]
		delete(parent.outputs, value)
		if len(parent.outputs) == 0 {
			g.leaves[in] = struct{}{}
		}
	}
	for out := range n.outputs {
		child := g.nodes[out]
		delete(child.inputs, value)
		if len(child.inputs) == 0 {
			g.heads[out] = struct{}{}
		}
	}
	return nil
}

func keys[T comparable](m map[T]struct{}) []T {
	out := make([]T, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	return out
}
