// Package builder implements the resource builder: the component that turns
// a resolved configuration and a list of [FuzzyTarget]s into a [dag.DAG] of
// [CallSpec] nodes ready for an executor to run.
//
// A [Module] exposes provider functions as [Signature]s, each naming its
// parameters (Go cannot recover a function's parameter names at runtime, so
// a Signature supplies them explicitly alongside the function value).
// [Builder.ProcessTarget] resolves a single concrete target by walking its
// provider's parameters depth-first: each parameter is either already
// present in the configuration, itself a provider (recursed into), carries
// a declared default, or is missing entirely. [Collect] providers expand a
// fuzzy spec into one concrete spec per element, fetch a key from each, and
// place the ordered list behind a single aggregating CallSpec.
//
// Checks attached to a Signature run once its CallSpec exists, against the
// resolved namespace and the graph built so far; a failing check aborts
// target resolution with a ResourceError.
package builder
