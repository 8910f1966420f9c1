package builder

import (
	"github.com/matzehuels/reportengine/pkg/namespace"
)

// WriteMode selects how a CallSpec's result is written into its namespace
// layer, mirroring reportengine's ExecModes.
type WriteMode int

const (
	// SetUnique fails if the result name is already present in the target
	// layer.
	SetUnique WriteMode = iota
	// SetOrUpdate overwrites whatever is already present.
	SetOrUpdate
	// Append appends the result to a list under the result name, creating
	// the list on first write. The builder itself never emits Append;
	// [Collect] produces a single SetUnique CallSpec.
	Append
)

// ProviderFunc computes a value from its resolved named arguments.
type ProviderFunc func(args map[string]namespace.Value) (namespace.Value, error)

// CheckFunc validates a CallSpec once it has been added to the graph.
// Returning a non-nil error aborts target resolution with a ResourceError.
type CheckFunc func(cs *CallSpec, ns *namespace.Stack, graph *Graph) error

// PrepareFunc computes extra keyword arguments an executor should pass to
// FinalAction, given the spec about to run and its resolved namespace.
type PrepareFunc func(cs *CallSpec, ns *namespace.Stack, env *Environment) (map[string]namespace.Value, error)

// FinalActionFunc post-processes a provider's raw result using whatever
// Prepare computed.
type FinalActionFunc func(result namespace.Value, prepared map[string]namespace.Value) (namespace.Value, error)

// Param is one named, optionally-defaulted parameter of a provider
// function - the Go substitute for inspect.signature, since Go functions
// carry no parameter names at runtime.
type Param struct {
	Name       string
	Default    namespace.Value
	HasDefault bool
}

// CollectSpec declares that a provider's result is obtained by expanding
// Fuzzy into a set of concrete specs, fetching Element from each (or
// ElementDefault when absent), and concatenating the results, in order,
// into a list under the provider's name. Grounded on reportengine's
// `collect(name, fuzzyspec, element_default=...)`.
type CollectSpec struct {
	Element        string
	Fuzzy          namespace.FuzzySpec
	ElementDefault namespace.Value
	HasDefault     bool
}

// Signature is a provider function's registration: its parameters, and the
// optional attributes reportengine attaches to provider functions via
// decorators (Checks, Prepare, FinalAction, Collect, Highlight).
type Signature struct {
	Name        string
	Params      []Param
	Fn          ProviderFunc
	Checks      []CheckFunc
	Prepare     PrepareFunc
	FinalAction FinalActionFunc
	Collect     *CollectSpec
	Highlight   string
}

// Module is a named group of provider signatures, the Go counterpart of a
// reportengine providers module (a plain object whose callables become
// providers).
type Module struct {
	Name       string
	signatures map[string]*Signature
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name, signatures: map[string]*Signature{}}
}

// Register adds sig to the module, keyed by sig.Name.
func (m *Module) Register(sig *Signature) *Signature {
	m.signatures[sig.Name] = sig
	return sig
}

// Lookup returns the signature registered under name, if any.
func (m *Module) Lookup(name string) (*Signature, bool) {
	s, ok := m.signatures[name]
	return s, ok
}

// Environment is the external state bag passed through to providers'
// Prepare hooks (output paths, formats, run ID); opaque to the builder and
// executor.
type Environment struct {
	OutputDir string
	RunID     string
	Extra     map[string]any
}
