package plan

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Customizer augments a Builder. It usually returns the builder it was given;
// returning a different builder replaces it for the rest of the chain, and
// returning nil keeps the current one.
type Customizer func(b *Builder) (*Builder, error)

// Builder accumulates warm-up settings and freezes them into a Plan.
//
// Every mutator returns the receiver so calls can be chained. The first error
// raised by a mutator is kept and reported by Build; later mutators still run
// but Build will fail.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	endpoints         []Endpoint
	automaticEndpoint bool
	readiness         bool
	protocol          string
	hostname          string
	verifyTLS         bool
	client            *http.Client
	transport         *http.Transport
	callTimeout       time.Duration
	repeats           []RepeatSpec
	err               error
}

// NewBuilder creates a Builder whose default transport is a clone of
// http.DefaultTransport.
func NewBuilder() *Builder {
	return NewBuilderWithTransport(nil)
}

// NewBuilderWithTransport creates a Builder with the given default transport.
// A nil transport clones http.DefaultTransport. The transport is cloned before
// TLS settings are changed, so the caller's TLS verification setting is never
// changed.
func NewBuilderWithTransport(transport *http.Transport) *Builder {
	if transport == nil {
		if dt, ok := http.DefaultTransport.(*http.Transport); ok {
			transport = dt.Clone()
		} else {
			transport = &http.Transport{}
		}
	}
	return &Builder{
		readiness:   true,
		protocol:    DefaultProtocol,
		hostname:    DefaultHostname,
		verifyTLS:   true,
		transport:   transport,
		callTimeout: DefaultCallTimeout,
	}
}

// AddEndpoint adds a fully described endpoint.
func (b *Builder) AddEndpoint(e Endpoint) *Builder {
	if err := e.Validate(); err != nil {
		b.fail(err)
		return b
	}
	b.endpoints = append(b.endpoints, e)
	return b
}

// AddPath adds a GET endpoint without body.
func (b *Builder) AddPath(path string) *Builder {
	return b.AddEndpoint(Get(path))
}

// AddRequest adds an endpoint without body.
func (b *Builder) AddRequest(method, path string) *Builder {
	return b.AddEndpoint(NewEndpoint(method, path))
}

// AddPost adds a POST endpoint with a JSON body.
func (b *Builder) AddPost(path string, body any) *Builder {
	return b.AddEndpoint(Post(path, body, ContentTypeJSON))
}

// AddPostAs adds a POST endpoint with a body of the given content type.
func (b *Builder) AddPostAs(path string, body any, contentType string) *Builder {
	return b.AddEndpoint(Post(path, body, contentType))
}

// AddRequestBody adds an endpoint with a JSON body.
func (b *Builder) AddRequestBody(method, path string, body any) *Builder {
	return b.AddEndpoint(NewEndpointWithBody(method, path, body, ContentTypeJSON))
}

// AddRequestBodyAs adds an endpoint with a body of the given content type.
func (b *Builder) AddRequestBodyAs(method, path string, body any, contentType string) *Builder {
	return b.AddEndpoint(NewEndpointWithBody(method, path, body, contentType))
}

// EnableAutomaticEndpoint registers a transient probe endpoint during
// warm-up. It exercises routing, JSON decoding and validation, and is
// removed again once warm-up is done.
//
// Disabled by default.
func (b *Builder) EnableAutomaticEndpoint() *Builder {
	b.automaticEndpoint = true
	return b
}

// DisableAutomaticEndpoint disables the transient probe endpoint.
func (b *Builder) DisableAutomaticEndpoint() *Builder {
	b.automaticEndpoint = false
	return b
}

// EnableReadiness makes readiness checks refuse traffic until warm-up is done.
//
// Enabled by default.
func (b *Builder) EnableReadiness() *Builder {
	b.readiness = true
	return b
}

// DisableReadiness makes readiness independent of warm-up.
func (b *Builder) DisableReadiness() *Builder {
	b.readiness = false
	return b
}

// SetProtocol sets the URL scheme for self-calls. Should be "http" or "https".
func (b *Builder) SetProtocol(protocol string) *Builder {
	b.protocol = protocol
	return b
}

// SetHostname sets the host used for self-calls.
func (b *Builder) SetHostname(hostname string) *Builder {
	b.hostname = hostname
	return b
}

// SetHTTPClient sets the client used for self-calls. It replaces the client
// that would otherwise be built from the default transport.
func (b *Builder) SetHTTPClient(client *http.Client) *Builder {
	b.client = client
	return b
}

// SetCallTimeout sets the per-request timeout of the default client.
func (b *Builder) SetCallTimeout(timeout time.Duration) *Builder {
	if timeout > 0 {
		b.callTimeout = timeout
	}
	return b
}

// DisableTLSVerification makes the default transport accept any server
// certificate. Intended for services that call themselves over https with a
// certificate that is not valid for the configured hostname.
func (b *Builder) DisableTLSVerification() *Builder {
	b.transport = withInsecureSkipVerify(b.transport, true)
	b.verifyTLS = false
	return b
}

// EnableTLSVerification restores certificate verification on the default
// transport.
func (b *Builder) EnableTLSVerification() *Builder {
	b.transport = withInsecureSkipVerify(b.transport, false)
	b.verifyTLS = true
	return b
}

// InitializingMultipleTimes builds a nested plan with customizer and replays
// its endpoints times times, interval apart. The nested builder starts from
// defaults and shares only the default transport with b.
//
// Calling InitializingMultipleTimes inside customizer is allowed but the
// resulting repeat specs are not evaluated.
func (b *Builder) InitializingMultipleTimes(times int, interval time.Duration, customizer Customizer) *Builder {
	if customizer == nil {
		b.fail(ErrNilCustomizer)
		return b
	}
	if times <= 0 || interval < 0 {
		b.fail(fmt.Errorf("%w: times=%d interval=%v", ErrInvalidRepeat, times, interval))
		return b
	}

	nested := NewBuilderWithTransport(b.transport)
	nested.callTimeout = b.callTimeout

	out, err := customizer(nested)
	if err != nil {
		b.fail(fmt.Errorf("nested customizer: %w", err))
		return b
	}
	if out == nil {
		out = nested
	}

	p, err := out.Build()
	if err != nil {
		b.fail(fmt.Errorf("nested plan: %w", err))
		return b
	}

	b.repeats = append(b.repeats, RepeatSpec{Times: times, Interval: interval, Plan: p})
	return b
}

// InitializingRepeatedly is InitializingMultipleTimes with DefaultRepeatTimes
// and DefaultRepeatInterval.
func (b *Builder) InitializingRepeatedly(customizer Customizer) *Builder {
	return b.InitializingMultipleTimes(DefaultRepeatTimes, DefaultRepeatInterval, customizer)
}

// Err returns the first error recorded by a mutator.
func (b *Builder) Err() error {
	return b.err
}

// Build freezes the current settings into a Plan. It may be called more than
// once; each call returns an equivalent, independent Plan.
func (b *Builder) Build() (*Plan, error) {
	if b.err != nil {
		return nil, b.err
	}

	client := b.client
	if client == nil {
		client = &http.Client{
			Transport:     b.transport,
			Timeout:       b.callTimeout,
			CheckRedirect: followRedirects,
		}
	}

	endpoints := make([]Endpoint, len(b.endpoints))
	copy(endpoints, b.endpoints)
	repeats := make([]RepeatSpec, len(b.repeats))
	copy(repeats, b.repeats)

	return &Plan{
		endpoints:         endpoints,
		automaticEndpoint: b.automaticEndpoint,
		readiness:         b.readiness,
		protocol:          b.protocol,
		hostname:          b.hostname,
		verifyTLS:         b.verifyTLS,
		httpClient:        client,
		repeats:           repeats,
	}, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func withInsecureSkipVerify(t *http.Transport, skip bool) *http.Transport {
	t = t.Clone()
	if t.TLSClientConfig == nil {
		t.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	// #nosec G402 -- opt-in for self-calls against the service's own listener.
	t.TLSClientConfig.InsecureSkipVerify = skip
	return t
}

var errTooManyRedirects = errors.New("plan: stopped after too many redirects")

func followRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= defaultRedirectHopsMax {
		return errTooManyRedirects
	}
	return nil
}
