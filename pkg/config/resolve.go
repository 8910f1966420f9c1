package config

import (
	"errors"
	"sort"

	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// maxAlternatives bounds how many similarity-ranked alternatives an
// InputNotFound error suggests.
const maxAlternatives = 3

// resolved marks a namespace slot as holding a final, already-computed
// value rather than raw, unprocessed input. The config resolver and the
// raw input document share the same namespace.Map storage (resolution
// overwrites a key's raw value with its result in place, as in the source
// system), so this wrapper is the only way to tell "already resolved" apart
// from "still the original raw value" when both states can legally be any
// Go type, including another mapping.
type resolved struct{ value namespace.Value }

// Resolver implements the key resolution algorithm (SPEC_FULL.md §6.3)
// against a [Registry] of handlers.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver bound to registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve resolves key against ns, writing any newly-computed value into
// the innermost layer whose depth is compatible with every dependency it
// required, but never shallower (a larger index) than maxIndex. chain
// records the names resolved so far, for required-by error reporting.
//
// Algorithm (SPEC_FULL.md §6.3):
//  1. Already resolved at an acceptable depth: return it.
//  2. A KindProduce handler does not require raw presence: resolve its
//     declared dependencies and invoke it directly.
//  3. Absent from the document entirely: InputNotFound, with
//     edit-distance-ranked sibling keys as alternatives.
//  4. A {from_: S} indirection: resolve S, then re-run resolution against
//     its exposed view.
//  5. A registered handler: resolve each dependency, track the minimum
//     layer index seen, type-check raw, invoke the handler, write the
//     result at the computed index.
//  6. No handler, but the raw value is itself a mapping: descend, pushing
//     a new layer and resolving every child key in that layer's scope.
//  7. Otherwise: the raw value is returned as-is (a plain leaf value with
//     no parser, used directly by callers).
func (r *Resolver) Resolve(ns *namespace.Stack, key string, maxIndex int, chain []string) (namespace.Value, int, error) {
	raw, idx, ok := ns.GetWhere(key)
	if ok {
		if rv, isResolved := raw.(resolved); isResolved && idx <= maxIndex {
			return rv.value, idx, nil
		}
	}

	if h, hasHandler := r.registry.Lookup(key); hasHandler && h.Kind == KindProduce {
		return r.resolveWithDeps(ns, h, nil, maxIndex, chain)
	}

	if !ok {
		return nil, 0, rerrors.NewInputNotFound(key, siblingKeys(ns), maxAlternatives).WithChain(chain...)
	}

	if fromSpec, isFrom := parseFromRef(raw); isFrom {
		val, _, err := r.resolveFrom(ns, fromSpec, key, append(chain, key))
		if err != nil {
			return nil, 0, err
		}
		_ = ns.SetAt(idx, key, resolved{val})
		return val, idx, nil
	}

	if h, hasHandler := r.registry.Lookup(key); hasHandler {
		return r.resolveWithDeps(ns, h, raw, maxIndex, chain)
	}

	switch v := raw.(type) {
	case namespace.Map:
		child := ns.Push(v)
		out := namespace.Map{}
		for childKey := range v {
			val, _, err := r.Resolve(child, childKey, 0, append(chain, key))
			if err != nil {
				return nil, 0, err
			}
			out[childKey] = val
		}
		_ = ns.SetAt(idx, key, resolved{out})
		return out, idx, nil
	default:
		_ = ns.SetAt(idx, key, resolved{raw})
		return raw, idx, nil
	}
}

// resolveWithDeps resolves h's declared dependencies, type-checks raw
// against h.InputType if declared, invokes h.Fn, and writes the result.
func (r *Resolver) resolveWithDeps(ns *namespace.Stack, h *Handler, raw namespace.Value, maxIndex int, chain []string) (namespace.Value, int, error) {
	if h.InputType != nil && raw != nil {
		if _, err := convertArg(raw, h.InputType); err != nil {
			return nil, 0, (&TypeError{Key: h.Name, Want: h.InputType.String(), Got: raw}).AsRerror().WithChain(chain...)
		}
	}

	writeIndex := maxIndex
	args := make(map[string]namespace.Value, len(h.Deps))
	for _, dep := range h.Deps {
		val, idx, err := r.Resolve(ns, dep, maxIndex, append(chain, h.Name))
		if err != nil {
			return nil, 0, err
		}
		args[dep] = val
		if idx < writeIndex {
			writeIndex = idx
		}
	}

	result, err := h.Fn(raw, args)
	if err != nil {
		var te *TypeError
		if errors.As(err, &te) {
			return nil, 0, te.AsRerror().WithChain(chain...)
		}
		return nil, 0, rerrors.Wrap(rerrors.CheckError, err, "handler %q failed", h.Name).WithChain(chain...)
	}

	if err := ns.SetAt(writeIndex, h.Name, resolved{result}); err != nil {
		return nil, 0, rerrors.Wrap(rerrors.ConfigError, err, "writing %q", h.Name).WithChain(chain...)
	}
	return result, writeIndex, nil
}

// siblingKeys collects every key visible anywhere in ns, used to rank
// "did you mean" alternatives for a missing key.
func siblingKeys(ns *namespace.Stack) []string {
	seen := map[string]struct{}{}
	var out []string
	for i := 0; i < ns.Len(); i++ {
		for k := range ns.Layer(i) {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}
