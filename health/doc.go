// Package health reports liveness and readiness of the service.
//
// A Checker reports the state of one component. The Aggregator runs its
// checkers in registration order and folds their results into an overall
// Status. ReadinessGate is the checker that holds readiness back until the
// warm-up run has finished, when the plan asks for it.
//
// # HTTP Endpoints
//
//	/healthz  LivenessHandler, always 200 while the process serves requests
//	/readyz   ReadinessHandler, 503 while any checker is unhealthy
//	/health   DetailedHandler, JSON report of every checker
package health
