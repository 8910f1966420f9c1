// Package namespace implements the layered environment a runcard is resolved
// against.
//
// # Overview
//
// A runcard is a nested mapping. Resolving a key for some provider happens
// not against the whole document but against a [Stack]: an innermost-first
// chain of [Map] layers, exactly like a Python ChainMap, built by descending
// into the document along a [Spec].
//
// Some entries are themselves collections that should be iterated rather
// than used as a single value - "run this action once per dataset" rather
// than "run it once, passing the list of datasets". [NSList] and [NSDict]
// mark such entries; when one is encountered it expands into an ordered
// sequence of single-key [Map] layers instead of being returned as-is.
//
// A [FuzzySpec] names a namespace path without committing to which index of
// each list-valued segment is meant; [Expand] turns it into the full
// cartesian set of concrete [Spec] values.
//
// [StackCache] memoizes the [Stack] resolved for a given [Spec] so that
// separate components walking the same path during one run share the
// result.
package namespace
