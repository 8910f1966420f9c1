package executor

import (
	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// prepare resolves cs's namespace, gathers its named arguments, and runs its
// Prepare hook if one is registered. It is the only step that reads the
// shared namespace (and the graph's edges), so callers must run it on the
// goroutine that owns namespace access (the scheduling goroutine, for
// [Parallel]).
//
// A dependency that the builder resolved to another provider never appears
// in cs's own resolved stack: its result lives only in that dependency's own
// CallSpec.Defaults layer (builder.go's makeNode pushes a fresh, private
// defaults map per node, the Go equivalent of resourcebuilder.py's synthetic
// "_name_defaults" namespace element). So arguments produced by a provider
// are read off the matching input CallSpec directly, via the DAG edge the
// builder wired; only arguments satisfied from the document itself or from a
// declared default are read from cs's own namespace.
func prepare(g *builder.Graph, cs *builder.CallSpec, root namespace.Map, env *builder.Environment) (*namespace.Stack, map[string]namespace.Value, map[string]namespace.Value, error) {
	ns, err := cs.Namespace(root)
	if err != nil {
		return nil, nil, nil, rerrors.Wrap(rerrors.ResourceError, err, "resolving namespace for %s", cs)
	}
	if cs.HasPrecomputed {
		return ns, nil, nil, nil
	}

	producers, err := g.Inputs(cs)
	if err != nil {
		return nil, nil, nil, rerrors.Wrap(rerrors.Internal, err, "reading graph inputs for %s", cs)
	}
	byResult := make(map[string]*builder.CallSpec, len(producers))
	for _, in := range producers {
		byResult[in.ResultName] = in
	}

	args := make(map[string]namespace.Value, len(cs.ArgNames))
	for _, name := range cs.ArgNames {
		if in, ok := byResult[name]; ok {
			v, ok := in.Defaults[name]
			if !ok {
				return nil, nil, nil, rerrors.New(rerrors.Internal, "dependency %s has not written %q yet", in, name)
			}
			args[name] = v
			continue
		}
		v, ok := ns.Get(name)
		if !ok {
			return nil, nil, nil, rerrors.New(rerrors.InputNotFound, "argument %q not found while executing %s", name, cs)
		}
		args[name] = v
	}

	var prepared map[string]namespace.Value
	if cs.Signature != nil && cs.Signature.Prepare != nil {
		p, err := cs.Signature.Prepare(cs, ns, env)
		if err != nil {
			return nil, nil, nil, rerrors.Wrap(rerrors.ResourceError, err, "preparing %s", cs)
		}
		prepared = p
		for k, v := range prepared {
			args[k] = v
		}
	}
	return ns, args, prepared, nil
}

// invoke calls cs's provider function on args, or returns its precomputed
// result. It touches no namespace state and is safe to run on a worker
// goroutine.
func invoke(cs *builder.CallSpec, args map[string]namespace.Value) (namespace.Value, error) {
	if cs.HasPrecomputed {
		return cs.Precomputed, nil
	}
	if cs.Signature == nil || cs.Signature.Fn == nil {
		return nil, nil
	}
	result, err := cs.Signature.Fn(args)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ResourceError, err, "executing %s", cs)
	}
	return result, nil
}

// finish applies cs's FinalAction (if any) to result and writes the outcome
// into ns according to cs.WriteMode. Like prepare, it must run on whichever
// goroutine owns namespace access.
func finish(cs *builder.CallSpec, ns *namespace.Stack, result namespace.Value, prepared map[string]namespace.Value) error {
	if cs.Signature != nil && cs.Signature.FinalAction != nil {
		r, err := cs.Signature.FinalAction(result, prepared)
		if err != nil {
			return rerrors.Wrap(rerrors.ResourceError, err, "finalizing %s", cs)
		}
		result = r
	}
	return write(cs, ns, result)
}

// write stores result into ns's innermost layer according to cs.WriteMode,
// the layer a CallSpec's own Defaults (or, for hand-registered CallSpecs
// with no Defaults, the resolved namespace itself) occupies.
func write(cs *builder.CallSpec, ns *namespace.Stack, result namespace.Value) error {
	const layer = 0
	switch cs.WriteMode {
	case builder.SetUnique:
		if _, ok := ns.Layer(layer)[cs.ResultName]; ok {
			return rerrors.New(rerrors.ResourceError, "%q is already set in its namespace layer", cs.ResultName)
		}
		return ns.SetAt(layer, cs.ResultName, result)
	case builder.SetOrUpdate:
		return ns.SetAt(layer, cs.ResultName, result)
	case builder.Append:
		existing, _ := ns.Layer(layer)[cs.ResultName].([]namespace.Value)
		return ns.SetAt(layer, cs.ResultName, append(existing, result))
	default:
		return rerrors.New(rerrors.Internal, "unknown write mode %d for %s", cs.WriteMode, cs)
	}
}

// providerName returns the name an observability event should record for cs.
func providerName(cs *builder.CallSpec) string {
	if cs.Signature != nil {
		return cs.Signature.Name
	}
	return cs.ResultName
}
