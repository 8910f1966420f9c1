// Package executor drives a [builder.Graph] to completion.
//
// For each CallSpec it resolves the namespace the builder computed for it,
// gathers its named arguments, runs the provider's optional Prepare hook,
// invokes the provider (or reuses a [builder.CallSpec.Precomputed] result),
// applies the optional FinalAction hook, and writes the outcome into the
// namespace according to the CallSpec's write mode.
//
// Sequential walks the graph in topological order on the calling goroutine.
// Parallel drives the same graph through a bounded pool of worker
// goroutines, with a single scheduling goroutine owning every read and
// write of the namespace so no namespace layer ever needs its own lock -
// only the bare provider invocation runs off the scheduling goroutine.
//
// Grounded on _examples/original_source/src/reportengine/resourcebuilder.py's
// run_all execution loop, and on the teacher's worker-pool crawler in
// pkg/core/deps/resolver.go for the parallel driver's jobs/results shape.
package executor
