// Package dag provides a directed acyclic graph keyed by node value rather
// than by position.
//
// # Overview
//
// The engine resolves a runcard into a tree of call specifications, each
// depending on others produced earlier in the resolution. This package holds
// that dependency structure: every node is identified by its own value (for
// the engine, a call specification pointer), duplicates are rejected, and
// cycles are refused at insertion time rather than discovered later.
//
// # Basic usage
//
//	g := dag.New[string]()
//	g.Add("parse", nil, nil)
//	g.Add("render", []string{"parse"}, nil)
//
//	for v := range g.TopologicalIter() {
//	    fmt.Println(v)
//	}
//
// # Traversals
//
// [DAG.TopologicalIter], [DAG.DepthFirst], [DAG.DepthFirstBack],
// [DAG.BreadthFirst], and [DAG.BreadthFirstBack] are range-over-func
// iterators ([iter.Seq]) rather than channel- or goroutine-based generators,
// since they only ever produce values and never need to receive one back.
//
// # Driving execution
//
// [DAG.NewResolver] returns a [Resolver], which is the one-node-at-a-time
// counterpart of reportengine's dependency_resolver generator. Where the
// Python coroutine receives the next completed value through Send, the Go
// resolver exposes that same protocol as three ordinary methods -
// [Resolver.Next], [Resolver.Done], and [Resolver.Finished] - so that a
// worker pool can pull runnable batches and report completions without any
// goroutine standing in for a generator.
//
// # Concurrency
//
// A DAG and its Resolver are not safe for concurrent use; callers that drive
// execution from multiple goroutines must synchronize their own access (see
// [github.com/matzehuels/reportengine/pkg/executor], which does exactly
// this).
package dag
