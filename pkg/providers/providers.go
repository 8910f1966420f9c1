// Package providers supplies the builder.Module(s) the CLI registers by
// default, plus a small named registry of optional modules selectable via
// "run --extra-providers". reportengine itself (like the original
// resourcebuilder.py it is grounded on) ships no domain providers of its
// own - providers are normally an application's business logic - so these
// exist only to make a bare "reportengine run" useful without a caller
// supplying anything, and to give --extra-providers something real to
// select between.
package providers

import (
	"strings"
	"time"

	"github.com/matzehuels/reportengine/pkg/builder"
	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// WithEnvironment registers the handful of providers available in every
// run: run metadata (read from env, since a provider function only ever
// sees its declared arguments, never the builder.Environment directly -
// SPEC_FULL.md's Prepare/FinalAction hooks are the only place an
// Environment reaches a running CallSpec) and a clock, neither of which a
// runcard could supply itself.
func WithEnvironment(env *builder.Environment) *builder.Module {
	mod := builder.NewModule("core")
	runID := ""
	if env != nil {
		runID = env.RunID
	}
	mod.Register(&builder.Signature{
		Name: "run_id",
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			return runID, nil
		},
	})
	mod.Register(&builder.Signature{
		Name: "timestamp",
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			return time.Now().UTC().Format(time.RFC3339), nil
		},
	})
	return mod
}

// Strings registers simple text-transform providers over a runcard's own
// "text" key, the stock example --extra-providers strings opts into.
func Strings() *builder.Module {
	mod := builder.NewModule("strings")

	mod.Register(&builder.Signature{
		Name:   "uppercase",
		Params: []builder.Param{{Name: "text"}},
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			text, ok := args["text"].(string)
			if !ok {
				return nil, rerrors.New(rerrors.BadInputType, "uppercase requires a string \"text\", got %T", args["text"])
			}
			return strings.ToUpper(text), nil
		},
	})

	mod.Register(&builder.Signature{
		Name:   "lowercase",
		Params: []builder.Param{{Name: "text"}},
		Fn: func(args map[string]namespace.Value) (namespace.Value, error) {
			text, ok := args["text"].(string)
			if !ok {
				return nil, rerrors.New(rerrors.BadInputType, "lowercase requires a string \"text\", got %T", args["text"])
			}
			return strings.ToLower(text), nil
		},
	})

	return mod
}

// Named is the set of optional modules --extra-providers can select by
// name, beyond the module WithEnvironment registers unconditionally.
var Named = map[string]func() *builder.Module{
	"strings": Strings,
}
