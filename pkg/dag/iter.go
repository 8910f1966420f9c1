package dag

import "iter"

// TopologicalIter yields every node's value exactly once, in an order such
// that a value is always yielded after all of its inputs. Grounded on
// reportengine's topological_iter, expressed as a range-over-func iterator
// rather than a generator.
func (g *DAG[T]) TopologicalIter() iter.Seq[T] {
	return func(yield func(T) bool) {
		blocked := map[T]int{}
		for v, n := range g.nodes {
			if len(n.inputs) > 0 {
				blocked[v] = len(n.inputs)
			}
		}
		queue := keys(g.heads)
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			if !yield(v) {
				return
			}
			for out := range g.nodes[v].outputs {
				blocked[out]--
				if blocked[out] == 0 {
					delete(blocked, out)
					queue = append(queue, out)
				}
			}
		}
	}
}

// DepthFirst walks the graph forward (from inputs to outputs) starting at
// heads, visiting each reachable value once. With no heads given, it starts
// from every node that has no inputs.
func (g *DAG[T]) DepthFirst(heads ...T) iter.Seq[T] {
	start := heads
	if len(start) == 0 {
		start = keys(g.heads)
	}
	return func(yield func(T) bool) {
		visited := map[T]struct{}{}
		g.depthFirstYield(start, visited, yield)
	}
}

// DepthFirstBack walks the graph backward (from outputs to inputs) starting
// at leaves. With no leaves given, it starts from every node with no outputs.
func (g *DAG[T]) DepthFirstBack(leaves ...T) iter.Seq[T] {
	start := leaves
	if len(start) == 0 {
		start = keys(g.leaves)
	}
	return func(yield func(T) bool) {
		visited := map[T]struct{}{}
		g.depthFirstBackYield(start, visited, yield)
	}
}

// depthFirst is the internal, non-early-exiting walker used by cycle
// detection, where the full prefix up to the match is needed.
func (g *DAG[T]) depthFirst(heads []T, visited map[T]struct{}) iter.Seq[T] {
	return func(yield func(T) bool) {
		g.depthFirstYield(heads, visited, yield)
	}
}

func (g *DAG[T]) depthFirstYield(heads []T, visited map[T]struct{}, yield func(T) bool) bool {
	for _, v := range heads {
		if _, seen := visited[v]; seen {
			continue
		}
		if !yield(v) {
			return false
		}
		visited[v] = struct{}{}
		if !g.depthFirstYield(keys(g.nodes[v].outputs), visited, yield) {
			return false
		}
	}
	return true
}

func (g *DAG[T]) depthFirstBackYield(leaves []T, visited map[T]struct{}, yield func(T) bool) bool {
	for _, v := range leaves {
		if _, seen := visited[v]; seen {
			continue
		}
		if !yield(v) {
			return false
		}
		visited[v] = struct{}{}
		if !g.depthFirstBackYield(keys(g.nodes[v].inputs), visited, yield) {
			return false
		}
	}
	return true
}

// BreadthFirst walks the graph forward level by level starting at heads (or
// every head node, if none are given).
func (g *DAG[T]) BreadthFirst(heads ...T) iter.Seq[T] {
	start := heads
	if len(start) == 0 {
		start = keys(g.heads)
	}
	return func(yield func(T) bool) {
		visited := map[T]struct{}{}
		queue := append([]T{}, start...)
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			if _, seen := visited[v]; seen {
				continue
			}
			if !yield(v) {
				return
			}
			visited[v] = struct{}{}
			queue = append(queue, keys(g.nodes[v].outputs)...)
		}
	}
}

// BreadthFirstBack walks the graph backward level by level starting at
// leaves (or every leaf node, if none are given).
func (g *DAG[T]) BreadthFirstBack(leaves ...T) iter.Seq[T] {
	start := leaves
	if len(start) == 0 {
		start = keys(g.leaves)
	}
	return func(yield func(T) bool) {
		visited := map[T]struct{}{}
		queue := append([]T{}, start...)
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			if _, seen := visited[v]; seen {
				continue
			}
			if !yield(v) {
				return
			}
			visited[v] = struct{}{}
			queue = append(queue, keys(g.nodes[v].inputs)...)
		}
	}
}

// Resolver drives execution of a DAG one completed node at a time. It is an
// explicit state machine standing in for reportengine's dependency_resolver
// coroutine: instead of a generator that receives completed values through
// Send, callers pull runnable batches with [Resolver.Next] and report
// completion with [Resolver.Done]. This shape maps directly onto a worker
// pool, which cannot drive a two-way Python-style generator.
type Resolver[T comparable] struct {
	dag     *DAG[T]
	ready   []T
	pending map[T]struct{}
	blocked map[T]int
}

// NewResolver creates a [Resolver] over the current state of the graph. The
// graph must not be mutated while a resolver is in use.
func (g *DAG[T]) NewResolver() *Resolver[T] {
	blocked := map[T]int{}
	for v, n := range g.nodes {
		if len(n.inputs) > 0 {
			blocked[v] = len(n.inputs)
		}
	}
	return &Resolver[T]{
		dag:     g,
		ready:   keys(g.heads),
		pending: map[T]struct{}{},
		blocked: blocked,
	}
}

// Next claims and returns every value that is currently runnable (all of its
// inputs are done), moving them from ready into pending. It returns an empty
// slice when nothing new has become runnable since the last call.
func (r *Resolver[T]) Next() []T {
	out := r.ready
	r.ready = nil
	for _, v := range out {
		r.pending[v] = struct{}{}
	}
	return out
}

// Done reports that value, previously returned by [Resolver.Next], has
// finished executing. Any of its outputs whose remaining inputs are now all
// done become runnable and will be returned by the next [Resolver.Next] call.
func (r *Resolver[T]) Done(value T) error {
	if _, ok := r.pending[value]; !ok {
		return ErrNotPending
	}
	delete(r.pending, value)
	n, ok := r.dag.nodes[value]
	if !ok {
		return ErrUnknownValue
	}
	for out := range n.outputs {
		r.blocked[out]--
		if r.blocked[out] == 0 {
			delete(r.blocked, out)
			r.ready = append(r.ready, out)
		}
	}
	return nil
}

// Finished reports whether every node in the graph has been resolved: no
// values are blocked, pending, or waiting to be claimed.
func (r *Resolver[T]) Finished() bool {
	return len(r.blocked) == 0 && len(r.pending) == 0 && len(r.ready) == 0
}
