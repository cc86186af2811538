// Package caller issues warm-up HTTP requests against the local server.
//
// A Caller resolves the server's bound port at call time, builds the URL from
// the plan's protocol and hostname, encodes the endpoint body by content type
// and sends the request through the plan's HTTP client. Non-2xx responses are
// logged and tolerated; only transport failures are returned.
package caller
