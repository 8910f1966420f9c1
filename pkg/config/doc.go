// Package config implements the configuration resolver: the component that
// lazily parses input values against a registry of handlers and collects
// each value's dependencies.
//
// A [Registry] holds [Handler]s keyed by input document key, either
// registered explicitly via [Registry.Handle]/[Registry.Produce]/
// [Registry.ElementOf], or scanned reflectively off a "rules" struct's
// ParseX/ProduceX methods via [Registry.Scan] (Go cannot recover a method's
// parameter names at runtime, so dependency lists are supplied alongside the
// struct rather than inferred).
//
// [Resolver] implements the key resolution algorithm against a
// [namespace.Stack]: already-resolved values are returned directly,
// KindProduce handlers run without requiring document presence, {from_: S}
// indirection re-targets resolution at another namespace's exposed view,
// registered handlers resolve their dependencies before running, and
// unhandled mappings are simply descended into.
//
// [ParseActions] flattens the document's actions_ tree (bare names,
// extra-args mappings, and nested namespace-prefixing mappings) into
// [FuzzyTarget]s, the resource builder's starting point.
package config
