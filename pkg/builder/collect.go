package builder

import (
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// processCollect implements sig.Collect: expand Fuzzy into one concrete spec
// per element, fetch Element from each (falling back to ElementDefault when
// absent), and place the ordered list of results behind a single CallSpec at
// spec, so it sits in the graph and runs its checks exactly like any other
// provider's node. Grounded on reportengine's collect(name, fuzzyspec,
// element_default=...), as exercised by test_complexinput.py's
// test_default_collect.
//
// Element is resolved through the configuration, not through the builder's
// own provider graph: collect() is used throughout reportengine to gather
// already-resolved input values (labels, theory IDs, dataset names) across a
// fuzzy family of specs, never to re-run a provider per element. A provider
// named Element would therefore need its own target-level CallSpec wired in
// separately; collect here only reaches into the configuration.
func (b *Builder) processCollect(sig *Signature, spec namespace.Spec, chain []string) (requirementResult, error) {
	c := sig.Collect
	childChain := append(append([]string{}, chain...), sig.Name)

	specs, err := namespace.Expand(b.Config.Root, c.Fuzzy)
	if err != nil {
		return requirementResult{}, resourceError(sig.Name, err, childChain)
	}

	values := make([]namespace.Value, len(specs))
	for i, elemSpec := range specs {
		val, _, rerr := b.Config.Resolve(elemSpec, c.Element)
		if rerr != nil {
			if rerrors.GetCode(rerr) == rerrors.InputNotFound && c.HasDefault {
				val = c.ElementDefault
			} else {
				return requirementResult{}, resourceError(sig.Name, rerr, childChain)
			}
		}
		values[i] = val
	}

	prefix := append(namespace.Spec{}, spec...)
	parentNS, err := namespace.NewStack(b.Config.Root).Resolve(prefix)
	if err != nil {
		return requirementResult{}, resourceError(sig.Name, err, childChain)
	}

	cs := b.intern(&CallSpec{
		Signature:      sig,
		ResultName:     sig.Name,
		WriteMode:      SetUnique,
		NSSpec:         prefix,
		Precomputed:    values,
		HasPrecomputed: true,
	})

	if err := b.graph.AddOrUpdate(cs, nil, nil); err != nil {
		return requirementResult{}, resourceError(sig.Name, err, childChain)
	}

	finish := func(parent *CallSpec) error {
		if parent != nil {
			if err := b.graph.AddOrUpdate(cs, nil, []*CallSpec{parent}); err != nil {
				return resourceError(sig.Name, err, childChain)
			}
		}
		if err := b.runChecks(sig, cs, parentNS); err != nil {
			return resourceError(sig.Name, err, childChain)
		}
		return nil
	}
	return requirementResult{writeIndex: len(spec), finish: finish}, nil
}
