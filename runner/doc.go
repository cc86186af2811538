// Package runner executes the warm-up once the server is listening.
//
// OnServerStarted starts a single goroutine that obtains the plan and runs
// every initializer in order. Failures and panics are logged and never stop
// the process; the completion flag is set in every case, so readiness can
// not be held back forever.
package runner
