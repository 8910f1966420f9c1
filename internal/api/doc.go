// Package api implements the read-only HTTP status server "reportengine
// serve" runs alongside an in-flight engine.Run: /status reports the run's
// current state and /graph dumps the resolved CallSpecs as JSON, for the
// duration of one run.
package api
