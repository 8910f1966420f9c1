package builder

import (
	"fmt"
	"strings"

	"github.com/matzehuels/reportengine/pkg/dag"
	"github.com/matzehuels/reportengine/pkg/namespace"
)

// Graph is the DAG of CallSpecs a [Builder] assembles and an executor
// drains. CallSpec is used by pointer, since it embeds a slice (ArgNames)
// and is therefore not itself a comparable type; equal CallSpecs are
// deduplicated by interning (see [Builder.intern]) rather than by value
// equality, so two logically identical CallSpecs are always the same
// pointer.
type Graph = dag.DAG[*CallSpec]

// CallSpec is one invocation to place in the graph: a provider, the names
// of its arguments, the name its result is written under, how it is
// written, and where. Its namespace is NSSpec resolved against the root
// document with Defaults pushed as one more, innermost layer - the Go
// equivalent of resourcebuilder.py appending a synthetic "_name_defaults"
// element to nsspec, expressed directly through [namespace.Stack.Push]
// instead of a fake named path segment. Grounded on resourcebuilder.py's
// CallSpec namedtuple.
type CallSpec struct {
	Signature  *Signature
	ArgNames   []string
	ResultName string
	WriteMode  WriteMode
	NSSpec     namespace.Spec
	Defaults   namespace.Map

	// Precomputed, when non-nil, is the CallSpec's result, known at build
	// time rather than requiring an executor to call Signature.Fn. Used by
	// [Collect] providers, whose aggregated list is already fully known
	// once every element spec has been resolved against the configuration.
	Precomputed    namespace.Value
	HasPrecomputed bool
}

// Namespace resolves cs's full namespace stack: NSSpec against root, with
// Defaults pushed as the innermost layer.
func (cs *CallSpec) Namespace(root namespace.Map) (*namespace.Stack, error) {
	ns, err := namespace.NewStack(root).Resolve(cs.NSSpec)
	if err != nil {
		return nil, err
	}
	if cs.Defaults == nil {
		return ns, nil
	}
	return ns.Push(cs.Defaults), nil
}

// Key returns a string uniquely identifying cs's defining tuple, used to
// intern equal CallSpecs onto the same pointer.
func (cs *CallSpec) Key() string {
	name := cs.ResultName
	if cs.Signature != nil {
		name = cs.Signature.Name
	}
	return fmt.Sprintf("%s(%s)->%s#%d@%s", name, strings.Join(cs.ArgNames, ","), cs.ResultName, cs.WriteMode, cs.NSSpec.Key())
}

// String renders cs the way reportengine's print_callspec does, for debug
// output and error messages.
func (cs *CallSpec) String() string {
	args := strings.Join(cs.ArgNames, ", ")
	name := cs.ResultName
	if cs.Signature != nil {
		name = cs.Signature.Name
	}
	switch cs.WriteMode {
	case Append:
		return fmt.Sprintf("%s.append(%s(%s))", cs.ResultName, name, args)
	default:
		return fmt.Sprintf("%s = %s(%s)", cs.ResultName, name, args)
	}
}
