// Package observe provides observability primitives for warm-up runs.
//
// It wires OpenTelemetry tracing and metrics and a zerolog-backed structured
// logger behind small interfaces, so the warm-up packages can be instrumented
// without depending on exporter setup. Consumers build an Observer once at
// startup and pass its Logger and a Middleware to the caller and runner.
package observe
