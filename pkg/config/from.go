package config

import (
	"dario.cat/mergo"

	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// parseFromRef recognizes the single-key {from_: S} indirection form and
// returns the fuzzy spec S names, tokenizing a "::"-joined string or
// reading a list of names.
func parseFromRef(raw namespace.Value) (namespace.FuzzySpec, bool) {
	m, ok := raw.(namespace.Map)
	if !ok || len(m) != 1 {
		return nil, false
	}
	v, ok := m["from_"]
	if !ok {
		return nil, false
	}
	switch s := v.(type) {
	case string:
		return namespace.TokenizeFuzzy(s), true
	case []namespace.Value:
		fuzzy := make(namespace.FuzzySpec, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			fuzzy = append(fuzzy, str)
		}
		return fuzzy, true
	default:
		return nil, false
	}
}

// resolveFrom resolves a {from_: S} indirection: S must expand to exactly
// one concrete namespace, whose layers are flattened (innermost wins, via
// mergo.Merge with override) into a synthetic input document that key is
// then resolved against. Grounded on resourcebuilder.py's handling of
// _from_, collapsed into a single merged view rather than chaining onto the
// live stack, since the target and the requesting spec may sit in entirely
// unrelated branches of the document.
func (r *Resolver) resolveFrom(ns *namespace.Stack, fromSpec namespace.FuzzySpec, key string, chain []string) (namespace.Value, int, error) {
	specs, err := namespace.Expand(ns.Root(), fromSpec)
	if err != nil {
		return nil, 0, rerrors.Wrap(rerrors.ConfigError, err, "from_ %s", fromSpec).WithChain(chain...)
	}
	if len(specs) != 1 {
		return nil, 0, rerrors.New(rerrors.ConfigError, "from_ %s must resolve to exactly one namespace, got %d", fromSpec, len(specs)).WithChain(chain...)
	}

	target, err := namespace.NewStack(ns.Root()).Resolve(specs[0])
	if err != nil {
		return nil, 0, rerrors.Wrap(rerrors.ConfigError, err, "resolving from_ target %s", specs[0]).WithChain(chain...)
	}

	merged := namespace.Map{}
	for i := target.Len() - 1; i >= 0; i-- {
		if err := mergo.Merge(&merged, target.Layer(i), mergo.WithOverride); err != nil {
			return nil, 0, rerrors.Wrap(rerrors.ConfigError, err, "merging from_ target view").WithChain(chain...)
		}
	}

	synthetic := namespace.NewStack(merged)
	return r.Resolve(synthetic, key, synthetic.Len()-1, chain)
}
