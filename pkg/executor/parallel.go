package executor

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/observability"
)

// DefaultWorkers bounds a [Parallel] driver's goroutine pool when Workers is
// left at zero, grounded on the teacher's crawler pool size in
// pkg/core/deps/resolver.go.
const DefaultWorkers = 8

// Parallel drives a graph through a bounded pool of worker goroutines. A
// single scheduling goroutine - the one that calls [Parallel.Run] - owns the
// dag.Resolver and every read or write of the namespace; workers receive
// only a provider's already-resolved arguments and never touch the
// namespace, so no layer needs its own lock.
type Parallel struct {
	// Env is passed through to every CallSpec's Prepare hook; it may be nil.
	Env *builder.Environment
	// Workers bounds the goroutine pool. Zero uses DefaultWorkers.
	Workers int
}

// NewParallel creates a Parallel driver with the given worker count (0 uses
// DefaultWorkers).
func NewParallel(env *builder.Environment, workers int) *Parallel {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Parallel{Env: env, Workers: workers}
}

// job is one provider invocation dispatched to the worker pool, carrying
// everything the worker needs without touching the namespace.
type job struct {
	cs       *builder.CallSpec
	ns       *namespace.Stack
	args     map[string]namespace.Value
	prepared map[string]namespace.Value
}

// jobResult is a finished (or failed) job, reported back to the scheduler.
type jobResult struct {
	cs       *builder.CallSpec
	ns       *namespace.Stack
	prepared map[string]namespace.Value
	result   namespace.Value
	err      error
}

// Run drives g to completion against root. Cancelling ctx aborts dispatch of
// any CallSpec not already running; workers that have already started their
// current CallSpec are allowed to finish it. The first error encountered -
// from a provider, a Prepare/FinalAction hook, a namespace write, or
// cancellation - is returned once every already-dispatched job has settled.
func (p *Parallel) Run(ctx context.Context, g *builder.Graph, root namespace.Map) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	start := time.Now()

	jobs := make(chan job, p.Workers)
	results := make(chan jobResult, p.Workers)

	var wg sync.WaitGroup
	for range p.Workers {
		wg.Add(1)
		go p.worker(ctx, jobs, results, &wg)
	}

	observability.Engine().OnRunStart(ctx, true, g.Len())

	err := p.schedule(ctx, cancel, g, root, jobs, results)

	close(jobs)
	wg.Wait()
	observability.Engine().OnRunComplete(ctx, time.Since(start), err)
	return err
}

func (p *Parallel) schedule(ctx context.Context, cancel context.CancelFunc, g *builder.Graph, root namespace.Map, jobs chan<- job, results <-chan jobResult) error {
	resolver := g.NewResolver()
	outstanding := 0
	var firstErr error

	fail := func(err error) {
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	dispatch := func(cs *builder.CallSpec) {
		if firstErr != nil {
			return
		}
		ns, args, prepared, err := prepare(g, cs, root, p.Env)
		if err != nil {
			fail(err)
			return
		}
		outstanding++
		jobs <- job{cs: cs, ns: ns, args: args, prepared: prepared}
	}

	for _, cs := range resolver.Next() {
		dispatch(cs)
	}

	for outstanding > 0 {
		res := <-results
		outstanding--

		if res.err != nil {
			fail(res.err)
			continue
		}
		if err := finish(res.cs, res.ns, res.result, res.prepared); err != nil {
			fail(err)
			continue
		}
		if err := resolver.Done(res.cs); err != nil {
			fail(err)
			continue
		}
		for _, next := range resolver.Next() {
			dispatch(next)
		}
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (p *Parallel) worker(ctx context.Context, jobs <-chan job, results chan<- jobResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		if err := ctx.Err(); err != nil {
			results <- jobResult{cs: j.cs, ns: j.ns, prepared: j.prepared, err: err}
			continue
		}

		start := time.Now()
		provider, nsStr := providerName(j.cs), j.cs.NSSpec.String()
		observability.Engine().OnCallStart(ctx, provider, nsStr)

		result, err := invoke(j.cs, j.args)

		observability.Engine().OnCallComplete(ctx, provider, nsStr, time.Since(start), err)
		results <- jobResult{cs: j.cs, ns: j.ns, prepared: j.prepared, result: result, err: err}
	}
}
