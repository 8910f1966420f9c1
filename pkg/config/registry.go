package config

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/matzehuels/reportengine/pkg/namespace"
)

// Kind distinguishes the two ways a handler can be declared, mirroring
// reportengine's parse_X/produce_X naming convention.
type Kind int

const (
	// KindParse handlers consume a raw input value present under their
	// name and transform it.
	KindParse Kind = iota
	// KindProduce handlers derive a value without requiring one to be
	// present in the input document.
	KindProduce
)

// HandlerFunc computes the value for a single key. raw is the unresolved
// input value found under the key (nil for KindProduce handlers); args
// holds the already-resolved values of the handler's declared dependencies,
// keyed by name.
type HandlerFunc func(raw namespace.Value, args map[string]namespace.Value) (namespace.Value, error)

// Handler is a single registered key handler.
type Handler struct {
	Name      string
	Kind      Kind
	Deps      []string
	Fn        HandlerFunc
	InputType reflect.Type // optional; when set, raw's type is checked before Fn runs
}

// WithInputType declares the Go type raw must have (checked at resolution
// time, mismatch raises rerrors.BadInputType). Returns h for chaining.
func (h *Handler) WithInputType(t reflect.Type) *Handler {
	h.InputType = t
	return h
}

// Registry is the set of key handlers a [Config] resolves against. It plays
// the role reportengine's ConfigParser subclass plays: a home for
// parse_X/produce_X methods, except that Go handlers are registered rather
// than discovered purely from method names, since Go has no equivalent of
// reading a function's parameter names at runtime.
type Registry struct {
	handlers map[string]*Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]*Handler{}}
}

// Handle registers a KindParse handler for name with an explicit dependency
// list (the Go substitute for introspecting parse_X's parameter names).
// Returns the Handler for further configuration (e.g. WithInputType).
func (r *Registry) Handle(name string, deps []string, fn HandlerFunc) *Handler {
	h := &Handler{Name: name, Kind: KindParse, Deps: deps, Fn: fn}
	r.handlers[name] = h
	return h
}

// Produce registers a KindProduce handler for name.
func (r *Registry) Produce(name string, deps []string, fn HandlerFunc) *Handler {
	h := &Handler{Name: name, Kind: KindProduce, Deps: deps, Fn: fn}
	r.handlers[name] = h
	return h
}

// ElementOf declares collectionName as a homogeneous list or named mapping
// of atoms, auto-generating a handler that wraps it as an [namespace.NSList]
// or [namespace.NSDict] carrying elementKey, so later fuzzy-spec expansion
// can iterate it one element at a time.
func (r *Registry) ElementOf(collectionName, elementKey string) *Handler {
	fn := func(raw namespace.Value, _ map[string]namespace.Value) (namespace.Value, error) {
		switch v := raw.(type) {
		case []namespace.Value:
			return namespace.NewNSList(elementKey, v), nil
		case namespace.Map:
			return namespace.NewNSDict(elementKey, v, nil), nil
		default:
			return nil, &TypeError{Key: collectionName, Want: "list or mapping", Got: raw}
		}
	}
	h := &Handler{Name: collectionName, Kind: KindParse, Fn: fn}
	r.handlers[collectionName] = h
	return h
}

// Lookup returns the handler registered for name, if any.
func (r *Registry) Lookup(name string) (*Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Scan reflectively registers every ParseX/ProduceX method of rules as a
// handler. Go cannot recover a method's parameter names at runtime, so deps
// supplies each handler's dependency list explicitly, keyed by the same X
// the method name carries (lower-camel-cased). A ParseX/ProduceX method
// must have the signature func(raw T, dep1 D1, dep2 D2, ...) (R, error),
// where raw is only present for ParseX and T/D1/D2/.../R may be any
// concrete type or namespace.Value; arguments are converted via reflection,
// and a mismatched raw type raises rerrors.BadInputType through TypeError.
func (r *Registry) Scan(rules any, deps map[string][]string) error {
	rv := reflect.ValueOf(rules)
	rt := rv.Type()

	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)

		var kind Kind
		var key string
		switch {
		case strings.HasPrefix(m.Name, "Parse"):
			kind = KindParse
			key = lowerFirst(strings.TrimPrefix(m.Name, "Parse"))
		case strings.HasPrefix(m.Name, "Produce"):
			kind = KindProduce
			key = lowerFirst(strings.TrimPrefix(m.Name, "Produce"))
		default:
			continue
		}

		methodVal := rv.Method(i)
		declaredDeps := deps[key]

		r.handlers[key] = &Handler{
			Name: key,
			Kind: kind,
			Deps: declaredDeps,
			Fn:   reflectedHandlerFunc(key, kind, methodVal, declaredDeps),
		}
	}
	return nil
}

// reflectedHandlerFunc builds a HandlerFunc that calls method via
// reflection, converting raw and each named dependency to the method's
// declared parameter types in order.
func reflectedHandlerFunc(key string, kind Kind, method reflect.Value, deps []string) HandlerFunc {
	mt := method.Type()

	return func(raw namespace.Value, args map[string]namespace.Value) (namespace.Value, error) {
		var in []reflect.Value
		paramIdx := 0

		if kind == KindParse {
			pt := mt.In(paramIdx)
			rv, err := convertArg(raw, pt)
			if err != nil {
				return nil, &TypeError{Key: key, Want: pt.String(), Got: raw}
			}
			in = append(in, rv)
			paramIdx++
		}

		for _, dep := range deps {
			pt := mt.In(paramIdx)
			rv, err := convertArg(args[dep], pt)
			if err != nil {
				return nil, &TypeError{Key: dep, Want: pt.String(), Got: args[dep]}
			}
			in = append(in, rv)
			paramIdx++
		}

		out := method.Call(in)
		var resErr error
		if len(out) > 1 && !out[1].IsNil() {
			resErr = out[1].Interface().(error)
		}
		if resErr != nil {
			return nil, resErr
		}
		return out[0].Interface(), nil
	}
}

// convertArg converts v (any) into a reflect.Value assignable to t,
// converting numeric/string kinds where directly convertible.
func convertArg(v namespace.Value, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, errConvert
}

var errConvert = &TypeError{Want: "convertible type"}

// lowerFirst lower-cases the leading rune of s, turning e.g. "Theoryid"
// into "theoryid".
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
