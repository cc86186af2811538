// Package router holds the service's live route table.
//
// A Table keeps an ordered list of routes and serves requests through a chi
// mux built from that list. Registering or unregistering a route changes the
// list only; Rebuild swaps in a new mux atomically, so in-flight requests keep
// the mux they started with.
//
// Routes can carry a WarmUp marker. The handlers initializer discovers marked
// routes through Routes and calls them once the server is listening.
package router
