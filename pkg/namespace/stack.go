package namespace

import "fmt"

// Stack is an innermost-first stack of [Map] layers, the Go counterpart of a
// Python ChainMap. Layer 0 is the innermost (most recently pushed, checked
// first on lookup); the last layer is the document root.
type Stack struct {
	layers []Map
}

// NewStack creates a single-layer stack rooted at root.
func NewStack(root Map) *Stack {
	return &Stack{layers: []Map{root}}
}

// Push returns a new stack with layer prepended as the new innermost layer.
// The receiver is left unmodified, mirroring ChainMap.new_child.
func (s *Stack) Push(layer Map) *Stack {
	out := make([]Map, 0, len(s.layers)+1)
	out = append(out, layer)
	out = append(out, s.layers...)
	return &Stack{layers: out}
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layer returns the layer at depth i (0 = innermost).
func (s *Stack) Layer(i int) Map { return s.layers[i] }

// Root returns the outermost (document) layer.
func (s *Stack) Root() Map { return s.layers[len(s.layers)-1] }

// Get returns the first value bound to name, searching from the innermost
// layer outward.
func (s *Stack) Get(name string) (Value, bool) {
	for _, layer := range s.layers {
		if v, ok := layer[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// GetWhere returns both the value bound to name and the index of the layer
// it was found in. If name is not bound anywhere, it returns (nil, Len(),
// false) - the sentinel index used by [github.com/matzehuels/reportengine/pkg/builder]'s
// require-one and remove-outer checks to mean "not found, outermost
// possible".
func (s *Stack) GetWhere(name string) (Value, int, bool) {
	for i, layer := range s.layers {
		if v, ok := layer[name]; ok {
			return v, i, true
		}
	}
	return nil, len(s.layers), false
}

// Set writes name into the innermost layer, mirroring ChainMap.__setitem__.
func (s *Stack) Set(name string, value Value) {
	s.layers[0][name] = value
}

// SetAt writes name into the layer at depth index, used by the resource
// builder to place a provider's result in the same layer that its
// dependencies were resolved from.
func (s *Stack) SetAt(index int, name string, value Value) error {
	if index < 0 || index >= len(s.layers) {
		return fmt.Errorf("namespace: layer index %d out of range [0,%d)", index, len(s.layers))
	}
	s.layers[index][name] = value
	return nil
}

// ResolvePartial walks spec against the stack as far as it can, returning
// the unresolved remainder (possibly empty) and the stack reached so far.
// Grounded on namespaces.py's resolve_partial.
func (s *Stack) ResolvePartial(spec Spec) (Spec, *Stack, error) {
	res := s
	layer := s.Root()
	remainder := spec
	for len(remainder) > 0 {
		ele := remainder[0]
		val, ok := layer[ele.Name]
		if !ok {
			break
		}
		val, err := ExtractValue(layer, ele.Name)
		if err != nil {
			return nil, nil, err
		}
		switch v := val.(type) {
		case Map:
			if ele.HasIndex {
				return nil, nil, fmt.Errorf("namespace: %q is a mapping, but an index was given", ele.Name)
			}
			res = res.Push(v)
			layer = v
			remainder = remainder[1:]
		case []Map:
			if !ele.HasIndex {
				return nil, nil, fmt.Errorf("namespace: %q is a list, but no index was given", ele.Name)
			}
			if ele.Index < 0 || ele.Index >= len(v) {
				return nil, nil, fmt.Errorf("namespace: index %d out of range for %q (len %d)", ele.Index, ele.Name, len(v))
			}
			child := v[ele.Index]
			res = res.Push(child)
			layer = child
			remainder = remainder[1:]
		default:
			_ = val
			return nil, nil, fmt.Errorf("namespace: %q is not expandable as a namespace", ele.Name)
		}
	}
	return remainder, res, nil
}

// Resolve fully resolves spec against the stack, returning an error if any
// part of it cannot be expanded. Grounded on namespaces.py's resolve.
func (s *Stack) Resolve(spec Spec) (*Stack, error) {
	remainder, res, err := s.ResolvePartial(spec)
	if err != nil {
		return nil, err
	}
	if len(remainder) > 0 {
		return nil, fmt.Errorf("namespace: could not expand %s", remainder)
	}
	return res, nil
}

// ValueAt returns the value a single spec element addresses within ns,
// mirroring namespaces.py's value_from_spec_ele.
func ValueAt(ns *Stack, ele Element) (Value, error) {
	v, ok := ns.Get(ele.Name)
	if !ok {
		return nil, fmt.Errorf("namespace: no such key %q", ele.Name)
	}
	if !ele.HasIndex {
		return v, nil
	}
	list, ok := v.([]Map)
	if !ok {
		return nil, fmt.Errorf("namespace: %q is not indexable", ele.Name)
	}
	if ele.Index < 0 || ele.Index >= len(list) {
		return nil, fmt.Errorf("namespace: index %d out of range for %q", ele.Index, ele.Name)
	}
	return list[ele.Index], nil
}
