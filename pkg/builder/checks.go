package builder

import (
	"fmt"
	"reflect"

	"github.com/matzehuels/reportengine/pkg/namespace"
)

// RequireOne builds a check ensuring at least one of names is either
// present (non-nil) in the namespace or produced by one of the CallSpec's
// own input nodes. Grounded on checks.py's require_one.
func RequireOne(names ...string) CheckFunc {
	return func(cs *CallSpec, ns *namespace.Stack, graph *Graph) error {
		inputs, err := graph.Inputs(cs)
		if err != nil {
			return err
		}
		produced := make(map[string]struct{}, len(inputs))
		for _, in := range inputs {
			produced[in.ResultName] = struct{}{}
		}
		for _, name := range names {
			if _, ok := produced[name]; ok {
				return nil
			}
			if v, ok := ns.Get(name); ok && v != nil {
				return nil
			}
		}
		return fmt.Errorf("you need to supply at least one of: %v", names)
	}
}

// RemoveOuter builds a check that, among names, keeps only the value found
// at the innermost (smallest-index) layer and nils out the rest. Grounded
// on checks.py's remove_outer.
func RemoveOuter(names ...string) CheckFunc {
	return func(cs *CallSpec, ns *namespace.Stack, graph *Graph) error {
		minIndex := ns.Len()
		indexes := make([]int, len(names))
		for i, name := range names {
			v, idx, ok := ns.GetWhere(name)
			indexes[i] = idx
			if ok && v != nil && idx < minIndex {
				minIndex = idx
			}
		}
		for i, name := range names {
			if indexes[i] > minIndex && indexes[i] < ns.Len() {
				if err := ns.SetAt(indexes[i], name, nil); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// CheckPositive builds a check that var resolves to a positive number.
// Grounded on checks.py's check_positive.
func CheckPositive(varName string) CheckFunc {
	return func(cs *CallSpec, ns *namespace.Stack, graph *Graph) error {
		v, ok := ns.Get(varName)
		if !ok {
			return fmt.Errorf("%q not found", varName)
		}
		n, ok := asFloat(v)
		if !ok || n <= 0 {
			return fmt.Errorf("%q must be positive, but it is %v", varName, v)
		}
		return nil
	}
}

// CheckNotEmpty builds a check that var resolves to a non-empty
// string/slice/map. Grounded on checks.py's check_not_empty.
func CheckNotEmpty(varName string) CheckFunc {
	return func(cs *CallSpec, ns *namespace.Stack, graph *Graph) error {
		v, ok := ns.Get(varName)
		if !ok {
			return fmt.Errorf("%q not found", varName)
		}
		if n, ok := lengthOf(v); ok && n == 0 {
			return fmt.Errorf("%q cannot be empty", varName)
		}
		return nil
	}
}

func asFloat(v namespace.Value) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func lengthOf(v namespace.Value) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}
