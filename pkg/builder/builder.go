package builder

import (
	"sort"

	"dario.cat/mergo"

	"github.com/matzehuels/reportengine/pkg/config"
	"github.com/matzehuels/reportengine/pkg/dag"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// noDefault is the zero value of an absent parameter default, matching
// inspect.Signature.empty's role in resourcebuilder.py.
var noDefault = namespace.Value(nil)

// Builder assembles a [Graph] of CallSpecs from a resolved configuration,
// a set of provider modules, and a list of targets.
type Builder struct {
	Config  *config.Config
	Modules []*Module
	Env     *Environment

	graph   *Graph
	interns map[string]*CallSpec
}

// New creates a Builder over cfg, resolving providers from modules in
// order (the first module defining a name wins, mirroring
// ResourceBuilder.get_provider_func's linear scan).
func New(cfg *config.Config, modules []*Module, env *Environment) *Builder {
	return &Builder{
		Config:  cfg,
		Modules: modules,
		Env:     env,
		graph:   dag.New[*CallSpec](),
		interns: map[string]*CallSpec{},
	}
}

// Graph returns the DAG assembled so far.
func (b *Builder) Graph() *Graph { return b.graph }

// lookupProvider returns the first module's signature for name, if any.
func (b *Builder) lookupProvider(name string) (*Signature, bool) {
	for _, m := range b.Modules {
		if sig, ok := m.Lookup(name); ok {
			return sig, true
		}
	}
	return nil, false
}

// BuildTargets expands and processes every target in order, returning the
// completed graph.
func (b *Builder) BuildTargets(targets []config.FuzzyTarget) (*Graph, error) {
	for _, t := range targets {
		if err := b.processFuzzyTarget(t); err != nil {
			return nil, err
		}
	}
	return b.graph, nil
}

// processFuzzyTarget expands t's fuzzy prefix against the root document and
// processes one concrete target per resulting spec.
func (b *Builder) processFuzzyTarget(t config.FuzzyTarget) error {
	specs, err := namespace.Expand(b.Config.Root, t.Fuzzy)
	if err != nil {
		return resourceError(t.Name, err, []string{t.Name})
	}
	for _, spec := range specs {
		if err := b.ProcessTarget(t.Name, spec, t.ExtraArgs); err != nil {
			return err
		}
	}
	return nil
}

// ProcessTarget resolves name at spec, root of a fresh required-by chain.
// The target itself has no requestor, so its own finish runs with a nil
// parent: no output edge is added, but its checks still run, mirroring
// process_target's final gen.send(None).
func (b *Builder) ProcessTarget(name string, spec namespace.Spec, extraArgs []config.ExtraArg) error {
	res, err := b.processRequirement(name, spec, extraArgs, noDefault, false, nil)
	if err != nil {
		return err
	}
	if res.finish == nil {
		return nil
	}
	return res.finish(nil)
}

// requirementResult is the first pass's report: where the eventual CallSpec
// should be written, and a second-pass callback that wires the finished
// parent CallSpec as this requirement's producer (an output edge, if the
// requirement turned out to need one). It replaces resourcebuilder.py's
// two-yield generator coroutine with an explicit two-step return, since Go
// has no notion of sending a value back into a suspended function.
type requirementResult struct {
	writeIndex int // index in spec+root where a provider-backed parent wrote its result; -1 if unconstrained (a default was used)
	finish     func(parent *CallSpec) error
}

// processRequirement implements step 1-4 of target resolution for a single
// named requirement (SPEC_FULL.md §6.4). chain is the required-by chain
// collected so far, outermost first.
func (b *Builder) processRequirement(name string, spec namespace.Spec, extraArgs []config.ExtraArg, deflt namespace.Value, hasDefault bool, chain []string) (requirementResult, error) {
	// Step 1: already present in the configuration.
	_, writeIndex, rerr := b.Config.Resolve(spec, name)
	if rerr == nil {
		if len(extraArgs) > 0 {
			return requirementResult{}, notUnderstood(name, extraArgNames(extraArgs), chain)
		}
		return requirementResult{writeIndex: writeIndex, finish: noopFinish}, nil
	}
	if rerrors.GetCode(rerr) != rerrors.InputNotFound {
		return requirementResult{}, resourceError(name, rerr, chain)
	}
	notFound := rerr

	// Step 2: a registered provider.
	sig, isProvider := b.lookupProvider(name)
	if !isProvider {
		if !hasDefault {
			return requirementResult{}, resourceError(name, notFound, chain)
		}
		return requirementResult{writeIndex: -1, finish: noopFinish}, nil
	}

	if sig.Collect != nil {
		return b.processCollect(sig, spec, chain)
	}
	return b.makeNode(sig, spec, extraArgs, chain)
}

// makeNode implements the provider branch of step 2: recurse into sig's own
// parameters (first pass), create sig's CallSpec at the computed write
// index (pushing a defaults layer), add it to the graph, then run every
// child's finish callback (second pass) now that the parent node exists.
func (b *Builder) makeNode(sig *Signature, spec namespace.Spec, extraArgs []config.ExtraArg, chain []string) (requirementResult, error) {
	childChain := append(append([]string{}, chain...), sig.Name)

	extraArgsMap := namespace.Map{}
	for _, ea := range extraArgs {
		extraArgsMap[ea.Name] = ea.Value
	}
	defaults := namespace.Map{}
	if err := mergo.Merge(&defaults, extraArgsMap, mergo.WithOverride); err != nil {
		return requirementResult{}, resourceError(sig.Name, err, childChain)
	}

	writeIndex := len(spec) // the deepest possible layer before the root
	argNames := make([]string, 0, len(sig.Params))
	results := make([]requirementResult, 0, len(sig.Params))

	for _, p := range sig.Params {
		argNames = append(argNames, p.Name)
		deflt, hasDefault := p.Default, p.HasDefault
		if v, ok := defaults[p.Name]; ok {
			deflt, hasDefault = v, true
		}
		res, err := b.processRequirement(p.Name, spec, nil, deflt, hasDefault, childChain)
		if err != nil {
			return requirementResult{}, err
		}
		if res.writeIndex == -1 {
			defaults[p.Name] = deflt
		} else if res.writeIndex < writeIndex {
			writeIndex = res.writeIndex
		}
		results = append(results, res)
	}

	// The defaults layer sits at the prefix of spec left over once
	// writeIndex (the shallowest layer any dependency actually resolved
	// at) is accounted for - resourcebuilder.py's "opposite direction"
	// nsspec trick, expressed here as a literal Map pushed via
	// [namespace.Stack.Push] rather than a synthetic named path segment.
	prefixLen := len(spec) - writeIndex
	prefix := append(namespace.Spec{}, spec[:prefixLen]...)
	parentNS, err := namespace.NewStack(b.Config.Root).Resolve(prefix)
	if err != nil {
		return requirementResult{}, resourceError(sig.Name, err, childChain)
	}
	callNS := parentNS.Push(defaults)

	cs := b.intern(&CallSpec{
		Signature:  sig,
		ArgNames:   argNames,
		ResultName: sig.Name,
		WriteMode:  SetUnique,
		NSSpec:     prefix,
		Defaults:   defaults,
	})

	if err := b.graph.AddOrUpdate(cs, nil, nil); err != nil {
		return requirementResult{}, resourceError(sig.Name, err, childChain)
	}

	// Second pass: now that cs exists, let every child wire itself as one
	// of cs's inputs.
	for _, res := range results {
		if res.finish == nil {
			continue
		}
		if err := res.finish(cs); err != nil {
			return requirementResult{}, err
		}
	}

	// cs's own finish - invoked once, by whichever caller (a real parent,
	// or the top-level target) resolves this requirement - wires cs as an
	// input of that caller and only then runs cs's checks, mirroring
	// _make_node's `required_by = yield put_index` suspension point.
	finish := func(parent *CallSpec) error {
		if parent != nil {
			if err := b.graph.AddOrUpdate(cs, nil, []*CallSpec{parent}); err != nil {
				return resourceError(sig.Name, err, childChain)
			}
		}
		if err := b.runChecks(sig, cs, callNS); err != nil {
			return resourceError(sig.Name, err, childChain)
		}
		return nil
	}
	return requirementResult{writeIndex: writeIndex, finish: finish}, nil
}

// runChecks invokes every check sig carries against the just-built CallSpec.
func (b *Builder) runChecks(sig *Signature, cs *CallSpec, ns *namespace.Stack) error {
	for _, check := range sig.Checks {
		if err := check(cs, ns, b.graph); err != nil {
			return rerrors.Wrap(rerrors.CheckError, err, "check failed for %q", sig.Name)
		}
	}
	return nil
}

// Result returns the CallSpec that produced name, if the builder has
// resolved any target or dependency invoking a provider by that name. Used
// by the engine to fetch a top-level target's - or a template tag's -
// value once the executor has run, via the same interned-by-name lookup
// [Builder.intern] already keeps for deduplication.
func (b *Builder) Result(name string) (*CallSpec, bool) {
	for _, cs := range b.interns {
		if cs.ResultName == name {
			return cs, true
		}
	}
	return nil, false
}

// intern returns the canonical *CallSpec for a logically-equal candidate,
// so that two requirement paths producing the same invocation end up as a
// single graph node, matching CallSpec's namedtuple value-equality in the
// original.
func (b *Builder) intern(candidate *CallSpec) *CallSpec {
	key := candidate.Key()
	if existing, ok := b.interns[key]; ok {
		return existing
	}
	b.interns[key] = candidate
	return candidate
}

func noopFinish(*CallSpec) error { return nil }

func extraArgNames(extraArgs []config.ExtraArg) []string {
	names := make([]string, len(extraArgs))
	for i, ea := range extraArgs {
		names[i] = ea.Name
	}
	sort.Strings(names)
	return names
}
