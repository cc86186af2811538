package plan

import (
	"net/http"
	"time"
)

// Default settings of a freshly built Plan.
const (
	DefaultProtocol        = "http"
	DefaultHostname        = "localhost"
	DefaultRepeatTimes     = 5
	DefaultRepeatInterval  = 500 * time.Millisecond
	DefaultCallTimeout     = 30 * time.Second
	defaultRedirectHopsMax = 10
)

// RepeatSpec replays the endpoints of a nested plan Times times, waiting
// Interval between runs.
type RepeatSpec struct {
	Times    int
	Interval time.Duration
	Plan     *Plan
}

// Plan is the frozen result of a Builder.
//
// Contract:
// - Concurrency: a Plan is never mutated after Build and is safe for concurrent reads.
// - Ownership: slice accessors return copies.
type Plan struct {
	endpoints         []Endpoint
	automaticEndpoint bool
	readiness         bool
	protocol          string
	hostname          string
	verifyTLS         bool
	httpClient        *http.Client
	repeats           []RepeatSpec
}

// Endpoints returns the endpoints in insertion order.
func (p *Plan) Endpoints() []Endpoint {
	out := make([]Endpoint, len(p.endpoints))
	copy(out, p.endpoints)
	return out
}

// AutomaticEndpointEnabled reports whether the transient probe endpoint is enabled.
func (p *Plan) AutomaticEndpointEnabled() bool {
	return p.automaticEndpoint
}

// ReadinessEnabled reports whether readiness is gated on warm-up completion.
func (p *Plan) ReadinessEnabled() bool {
	return p.readiness
}

// Protocol returns the URL scheme used for self-calls ("http" or "https").
func (p *Plan) Protocol() string {
	return p.protocol
}

// Hostname returns the host used for self-calls.
func (p *Plan) Hostname() string {
	return p.hostname
}

// TLSVerificationEnabled reports whether server certificates are verified.
func (p *Plan) TLSVerificationEnabled() bool {
	return p.verifyTLS
}

// HTTPClient returns the client used for self-calls.
func (p *Plan) HTTPClient() *http.Client {
	return p.httpClient
}

// RepeatSpecs returns the repeat specs in insertion order.
func (p *Plan) RepeatSpecs() []RepeatSpec {
	out := make([]RepeatSpec, len(p.repeats))
	copy(out, p.repeats)
	return out
}

// RequestsAutomaticEndpoint reports whether the plan or any first-level
// nested plan enables the transient probe endpoint.
func (p *Plan) RequestsAutomaticEndpoint() bool {
	if p.automaticEndpoint {
		return true
	}
	for _, r := range p.repeats {
		if r.Plan != nil && r.Plan.automaticEndpoint {
			return true
		}
	}
	return false
}
