package executor

import (
	"context"
	"time"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/observability"
)

// Sequential runs every CallSpec of a graph in topological order on the
// calling goroutine, the simplest of the two drivers and the one validate
// and small runs use.
type Sequential struct {
	// Env is passed through to every CallSpec's Prepare hook; it may be nil.
	Env *builder.Environment
}

// NewSequential creates a Sequential driver.
func NewSequential(env *builder.Environment) *Sequential {
	return &Sequential{Env: env}
}

// Run executes every node of g against root in topological order, stopping
// at the first error or at ctx cancellation.
func (s *Sequential) Run(ctx context.Context, g *builder.Graph, root namespace.Map) error {
	start := time.Now()
	observability.Engine().OnRunStart(ctx, false, g.Len())

	err := s.run(ctx, g, root)

	observability.Engine().OnRunComplete(ctx, time.Since(start), err)
	return err
}

func (s *Sequential) run(ctx context.Context, g *builder.Graph, root namespace.Map) error {
	for cs := range g.TopologicalIter() {
		if err := ctx.Err(); err != nil {
			return err
		}

		callStart := time.Now()
		provider, nsStr := providerName(cs), cs.NSSpec.String()
		observability.Engine().OnCallStart(ctx, provider, nsStr)

		err := s.runOne(g, cs, root)

		observability.Engine().OnCallComplete(ctx, provider, nsStr, time.Since(callStart), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequential) runOne(g *builder.Graph, cs *builder.CallSpec, root namespace.Map) error {
	ns, args, prepared, err := prepare(g, cs, root, s.Env)
	if err != nil {
		return err
	}
	result, err := invoke(cs, args)
	if err != nil {
		return err
	}
	return finish(cs, ns, result, prepared)
}
