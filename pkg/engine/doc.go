// Package engine wires together config resolution, graph building, and
// execution into the single entry point the CLI drives: load an input
// document, resolve its actions_ into a graph of CallSpecs, run the graph
// sequentially or in parallel, and - if the input carries a report
// template - render it once every template tag's target has a value.
//
// Grounded on resourcebuilder.py's top-level process_actions/execute loop
// and validphys's own runner, which perform exactly this sequence against
// a single runcard: parse it, build the DAG, execute it, and hand the
// results to whichever output (a report, a table, a plot) the runcard
// requested.
package engine
