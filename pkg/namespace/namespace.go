// Package namespace implements the layered lookup environment that a runcard
// is resolved against: an innermost-first stack of mapping layers (mirroring
// Python's ChainMap), plus the handful of wrapper types that let a list or a
// dict of plain values stand in for a sequence of namespace layers.
//
// Grounded on _examples/original_source/src/reportengine/namespaces.py.
package namespace

import "fmt"

// Value is anything that can live in a namespace layer: a scalar, a nested
// Map, a slice, or one of the [Namespaceable] wrapper types.
type Value = any

// Map is a single layer of a [Stack]: the namespace-layer equivalent of one
// link in a Python ChainMap.
type Map map[string]Value

// Clone returns a shallow copy of m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// namespacesKey is the layer key under which expanded Namespaceable values
// are cached, mirroring reportengine's "_namespaces" shadow entry.
const namespacesKey = "_namespaces"

// Namespaceable is implemented by values that, when encountered in a
// namespace layer, expand into an ordered sequence of further layers rather
// than being used as-is. [NSList] and [NSDict] are the two built-in
// implementations.
type Namespaceable interface {
	// AsNamespace returns the ordered sequence of layers this value expands
	// into when it is entered as a namespace.
	AsNamespace() []Map
}

// NSList wraps a plain slice together with the name each element should be
// bound to when the list is entered as a namespace. Grounded on
// namespaces.py's NSList.
type NSList struct {
	ElementName string
	Items       []Value
}

// NewNSList creates an [NSList] binding each item to elementName.
func NewNSList(elementName string, items []Value) *NSList {
	return &NSList{ElementName: elementName, Items: items}
}

// Len returns the number of items.
func (l *NSList) Len() int { return len(l.Items) }

// At returns the item at index i.
func (l *NSList) At(i int) Value { return l.Items[i] }

// AsNamespace implements [Namespaceable]: element i becomes a single-key
// layer {ElementName: Items[i]}.
func (l *NSList) AsNamespace() []Map {
	out := make([]Map, len(l.Items))
	for i, item := range l.Items {
		out[i] = Map{l.ElementName: item}
	}
	return out
}

// NSDict wraps a plain string-keyed map together with the name each entry's
// value should be bound to when a single entry is extracted. Grounded on
// namespaces.py's NSItemsDict.
type NSDict struct {
	ElementName string
	Items       map[string]Value
	// order preserves deterministic iteration independent of Go's
	// randomized map order, since namespace expansion must be reproducible.
	order []string
}

// NewNSDict creates an [NSDict] binding each entry's value to elementName.
// order fixes iteration order for [NSDict.AsNamespace]; entries not listed
// in order are appended afterwards in unspecified order.
func NewNSDict(elementName string, items map[string]Value, order []string) *NSDict {
	d := &NSDict{ElementName: elementName, Items: items}
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := items[k]; ok && !seen[k] {
			d.order = append(d.order, k)
			seen[k] = true
		}
	}
	for k := range items {
		if !seen[k] {
			d.order = append(d.order, k)
			seen[k] = true
		}
	}
	return d
}

// Get returns the raw value stored under key.
func (d *NSDict) Get(key string) (Value, bool) {
	v, ok := d.Items[key]
	return v, ok
}

// NSItem returns the single-entry layer {ElementName: Items[key]}, mirroring
// NSItemsDict.nsitem.
func (d *NSDict) NSItem(key string) (Map, error) {
	v, ok := d.Items[key]
	if !ok {
		return nil, fmt.Errorf("namespace: no such entry %q", key)
	}
	return Map{d.ElementName: v}, nil
}

// AsNamespace implements [Namespaceable]: every entry becomes a single-key
// layer, in the order fixed at construction time.
func (d *NSDict) AsNamespace() []Map {
	out := make([]Map, len(d.order))
	for i, k := range d.order {
		out[i] = Map{d.ElementName: d.Items[k]}
	}
	return out
}

// ExtractValue looks up item in layer, expanding it through
// [Namespaceable.AsNamespace] if needed and caching the expansion under the
// layer's "_namespaces" entry so repeated lookups are stable. Grounded on
// namespaces.py's extract_nsval.
func ExtractValue(layer Map, item string) (Value, error) {
	val, ok := layer[item]
	if !ok {
		return nil, fmt.Errorf("namespace: no such key %q", item)
	}
	ns, ok := val.(Namespaceable)
	if !ok {
		return val, nil
	}
	cache, ok := layer[namespacesKey].(map[string]any)
	if !ok {
		cache = map[string]any{}
		layer[namespacesKey] = cache
	}
	if cached, ok := cache[item]; ok {
		return cached, nil
	}
	expanded := ns.AsNamespace()
	cache[item] = expanded
	return expanded, nil
}

// PushLevel records value as a lazily-enterable child namespace of layer
// under name, without actually pushing it onto any [Stack] yet. Grounded on
// namespaces.py's push_nslevel.
func PushLevel(layer Map, name string, value Map) {
	if value == nil {
		value = Map{}
	}
	cache, ok := layer[namespacesKey].(map[string]any)
	if !ok {
		cache = map[string]any{}
		layer[namespacesKey] = cache
	}
	cache[name] = value
}
