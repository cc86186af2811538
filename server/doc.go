// Package server bootstraps a warm-up enabled HTTP service.
//
// A Server owns the route table, the memoized plan, the runner and the health
// aggregator. Start binds the listener, serves the table and hands the bound
// port to the caller before starting the warm-up, so every self-call reaches
// the real listener. /readyz reports 503 until the warm-up has finished when
// the plan enables the readiness gate.
//
// # Routes
//
// The server mounts these public routes:
//
//	GET /healthz   liveness
//	GET /readyz    readiness (aggregated checkers, including the warm-up gate)
//	GET /health    detailed JSON report
//	GET /metrics   Prometheus exposition
//
// When auth is enabled, every other route requires a bearer token signed with
// the configured secret; the caller mints one for its own requests.
package server
