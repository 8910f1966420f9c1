package config

import (
	"sort"

	"github.com/matzehuels/reportengine/pkg/namespace"
	"github.com/matzehuels/reportengine/pkg/rerrors"
)

// ExtraArg is a single (name, value) keyword argument attached to an
// action in an actions_ tree.
type ExtraArg struct {
	Name  string
	Value namespace.Value
}

// FuzzyTarget names one action the builder must resolve: the provider/
// action name, the fuzzy namespace prefix it runs under, and any
// extra-args supplied alongside it in the actions_ tree.
type FuzzyTarget struct {
	Name      string
	Fuzzy     namespace.FuzzySpec
	ExtraArgs []ExtraArg
}

// ParseActions flattens an actions_ tree into a list of FuzzyTargets.
//
// The tree is a list whose items are one of:
//   - a bare string: the action name, no extra-args, run at the current
//     prefix.
//   - a single-key mapping name -> {arg: value, ...}: the action name with
//     extra-args.
//   - a single-key mapping prefixName -> [...nested actions...]: descends
//     one level, prefixing every enclosed target's fuzzy path with
//     prefixName.
func ParseActions(raw namespace.Value) ([]FuzzyTarget, error) {
	return parseActionList(raw, nil)
}

func parseActionList(raw namespace.Value, prefix namespace.FuzzySpec) ([]FuzzyTarget, error) {
	items, ok := raw.([]namespace.Value)
	if !ok {
		return nil, rerrors.New(rerrors.ConfigError, "actions_ must be a list, got %T", raw)
	}

	var out []FuzzyTarget
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, FuzzyTarget{Name: v, Fuzzy: prefix})

		case namespace.Map:
			if len(v) != 1 {
				return nil, rerrors.New(rerrors.ConfigError, "action mapping must have exactly one key, got %d", len(v))
			}
			for name, val := range v {
				switch vv := val.(type) {
				case []namespace.Value:
					nestedPrefix := append(append(namespace.FuzzySpec{}, prefix...), name)
					nested, err := parseActionList(vv, nestedPrefix)
					if err != nil {
						return nil, err
					}
					out = append(out, nested...)
				case namespace.Map:
					extra, err := extraArgsFromMap(vv)
					if err != nil {
						return nil, err
					}
					out = append(out, FuzzyTarget{Name: name, Fuzzy: prefix, ExtraArgs: extra})
				default:
					return nil, rerrors.New(rerrors.ConfigError, "action %q value must be a mapping of args or a nested action list, got %T", name, val)
				}
			}

		default:
			return nil, rerrors.New(rerrors.ConfigError, "action item must be a name or a mapping, got %T", item)
		}
	}
	return out, nil
}

// extraArgsFromMap converts a keyword-args mapping into a deterministically
// ordered slice (map iteration order is not stable, but target resolution
// needs a stable order for reproducible CallSpec identities).
func extraArgsFromMap(m namespace.Map) ([]ExtraArg, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ExtraArg, 0, len(keys))
	for _, k := range keys {
		out = append(out, ExtraArg{Name: k, Value: m[k]})
	}
	return out, nil
}
