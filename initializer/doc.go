// Package initializer contains the warm-up steps the runner executes.
//
// Each Initializer contributes to the plan while it is assembled (Configure)
// and later performs its calls against the running server (WarmUp).
//
// Transient registers a throwaway probe route, calls it with a payload that
// exercises JSON decoding and validation, and removes the route again.
// Handlers discovers routes marked for warm-up in the route table and calls
// every endpoint of the plan, including repeated ones.
package initializer
