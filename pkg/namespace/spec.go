package namespace

import (
	"fmt"
	"strings"
)

// Element is one segment of a [Spec]: a bare name, or a (name, index) pair
// addressing one item of a list-valued namespace entry.
type Element struct {
	Name     string
	Index    int
	HasIndex bool
}

// Bare constructs a name-only spec element.
func Bare(name string) Element { return Element{Name: name} }

// Indexed constructs a (name, index) spec element.
func Indexed(name string, index int) Element {
	return Element{Name: name, Index: index, HasIndex: true}
}

// String renders the element the way reportengine prints spec tuples, e.g.
// "experiments" or "experiments[2]".
func (e Element) String() string {
	if e.HasIndex {
		return fmt.Sprintf("%s[%d]", e.Name, e.Index)
	}
	return e.Name
}

// Spec is a fully concrete namespace path: an ordered sequence of elements,
// each resolved to a specific list index where applicable. It corresponds to
// reportengine's nsspec once all fuzzy segments have been expanded.
type Spec []Element

// String joins the spec the way logs and error messages present it.
func (s Spec) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.String()
	}
	return strings.Join(parts, "/")
}

// Key returns a value usable as a map key that uniquely identifies this
// spec, for use by resolution caches.
func (s Spec) Key() string { return s.String() }

// FuzzySpec is a namespace path whose list-valued segments have not yet been
// bound to a concrete index; expanding it against a namespace produces the
// cartesian set of concrete [Spec] values. Grounded on reportengine's
// fuzzyspec (a tuple of plain names used by templateparser and the config
// resolver's elements_of machinery).
type FuzzySpec []string

// TokenizeFuzzy splits a "::"-joined fuzzy target string into its
// components, mirroring templateparser.tokenize_fuzzy.
func TokenizeFuzzy(s string) FuzzySpec {
	if s == "" {
		return nil
	}
	return strings.Split(s, "::")
}

// MissingNameError is returned by [Expand] when a fuzzy segment is not
// present anywhere in the namespace being expanded.
type MissingNameError struct {
	Name string
	At   Spec
}

func (e *MissingNameError) Error() string {
	return fmt.Sprintf("namespace: %q not found while expanding %s", e.Name, e.At)
}

// Expand recursively expands fuzzy against root, returning every concrete
// [Spec] obtained by binding each list-valued segment to every index of the
// corresponding value. A dict-valued segment simply descends one level
// without branching. Grounded on namespaces.py's expand_fuzzyspec_partial,
// collapsed from a two-way generator into a plain recursive function since
// nothing needs to resume it mid-walk.
func Expand(root Map, fuzzy FuzzySpec) ([]Spec, error) {
	return expand(root, fuzzy, nil)
}

func expand(layer Map, fuzzy FuzzySpec, prefix Spec) ([]Spec, error) {
	if len(fuzzy) == 0 {
		out := make(Spec, len(prefix))
		copy(out, prefix)
		return []Spec{out}, nil
	}
	name, rest := fuzzy[0], fuzzy[1:]
	val, err := ExtractValue(layer, name)
	if err != nil {
		return nil, &MissingNameError{Name: name, At: prefix}
	}

	switch v := val.(type) {
	case Map:
		return expand(v, rest, append(prefix, Bare(name)))
	case []Map:
		var results []Spec
		for i, child := range v {
			sub, err := expand(child, rest, append(append(Spec{}, prefix...), Indexed(name, i)))
			if err != nil {
				return nil, err
			}
			results = append(results, sub...)
		}
		return results, nil
	default:
		return nil, fmt.Errorf("namespace: segment %q must resolve to a mapping or a list of mappings, got %T", name, val)
	}
}
