// Package pkg collects reportengine's core libraries: resolving a runcard's
// requested actions into a dependency graph, executing that graph, and
// rendering a report template against the results.
//
// # Architecture
//
// The data flow through a single run:
//
//	input document (YAML/TOML)
//	         ↓
//	    [config] package (resolve actions_ and fuzzy namespaces)
//	         ↓
//	    [builder] package (intern CallSpecs into a DAG, via [dag])
//	         ↓
//	    [executor] package (drain the DAG: sequential or parallel)
//	         ↓
//	    [template] package (substitute "{@ ... @}" tags against results)
//
// [engine] wires these four stages behind a single Run call, the same
// sequence the CLI's run/validate/graph/inspect/serve commands all drive.
//
// # Supporting packages
//
// [namespace] - the fuzzy, layered key-value values a CallSpec resolves its
// arguments from and writes its result into.
//
// [rerrors] - the coded error type every package in this tree returns,
// distinguishing a bad input document from a cycle from a provider failure.
//
// [cache] - a byte-oriented Cache/Keyer pair used for memoizing expensive,
// serialization-safe artifacts (template scans), never raw runcard values.
//
// [providers] - the builder.Modules the CLI registers by default, plus a
// small named registry of optional modules "--extra-providers" can opt into.
//
// [buildinfo] - version/commit/date metadata injected at link time.
//
// [observability] - a process-wide registry of event hooks (CallSpec calls
// and whole runs, reported by the executors) that instrumentation backends
// register at startup.
package pkg
