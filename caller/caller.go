package caller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/warmup/observe"
	"github.com/jonwraymond/warmup/plan"
	"github.com/jonwraymond/warmup/resilience"
)

// RequestIDHeader carries a unique id for every warm-up request.
const RequestIDHeader = "X-Request-Id"

// maxDrain bounds how much of a response body is read before closing it.
const maxDrain = 1 << 20

// PortSource reports the port the local server is bound to.
// Zero means not yet bound.
type PortSource interface {
	Port() int
}

// PortFunc adapts a function to PortSource.
type PortFunc func() int

// Port calls f.
func (f PortFunc) Port() int { return f() }

// TokenProvider supplies bearer tokens for warm-up requests.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Option configures a Caller.
type Option func(*Caller)

// WithLogger sets the logger. Default: observe.NopLogger()
func WithLogger(l observe.Logger) Option {
	return func(c *Caller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMiddleware sets the telemetry middleware. Default: observe.NopMiddleware()
func WithMiddleware(mw *observe.Middleware) Option {
	return func(c *Caller) {
		if mw != nil {
			c.mw = mw
		}
	}
}

// WithTokenProvider adds an Authorization bearer header to every request.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Caller) {
		c.tokens = tp
	}
}

// WithUserAgent sets the User-Agent header. Default: "warmup"
func WithUserAgent(ua string) Option {
	return func(c *Caller) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each call. Default: plan.DefaultCallTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Caller) {
		c.timeout = resilience.NewTimeout(resilience.TimeoutConfig{Timeout: d})
	}
}

// WithRetry retries calls that fail in transport. Responses, whatever their
// status, are never retried. Default: a single attempt.
func WithRetry(r *resilience.Retry) Option {
	return func(c *Caller) {
		if r != nil {
			c.retry = r
		}
	}
}

// Caller issues warm-up requests against the local server.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: every request is bound to ctx and to the configured timeout.
// - Errors: only transport failures and encoding failures are returned.
type Caller struct {
	ports     PortSource
	logger    observe.Logger
	mw        *observe.Middleware
	tokens    TokenProvider
	userAgent string
	timeout   *resilience.Timeout
	retry     *resilience.Retry
	name      string
}

// New creates a Caller reading the port from ports.
func New(ports PortSource, opts ...Option) *Caller {
	c := &Caller{
		ports:     ports,
		logger:    observe.NopLogger(),
		mw:        observe.NopMiddleware(),
		userAgent: "warmup",
		timeout:   resilience.NewTimeout(resilience.TimeoutConfig{Timeout: plan.DefaultCallTimeout}),
		retry:     resilience.NewRetry(resilience.RetryConfig{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(observe.Component("caller"))
	return c
}

// Named returns a copy of c that tags telemetry with the initializer name.
func (c *Caller) Named(name string) *Caller {
	cp := *c
	cp.name = name
	cp.logger = c.logger.With(observe.String("initializer", name))
	return &cp
}

// URL returns the absolute URL for path on the local server.
func URL(protocol, hostname string, port int, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return protocol + "://" + net.JoinHostPort(hostname, strconv.Itoa(port)) + path
}

// Call sends one request for e using the settings of p.
func (c *Caller) Call(ctx context.Context, e plan.Endpoint, p *plan.Plan) error {
	port := 0
	if c.ports != nil {
		port = c.ports.Port()
	}
	if port <= 0 {
		return ErrNoPort
	}

	target := URL(p.Protocol(), p.Hostname(), port, e.Path)
	meta := observe.CallMeta{Initializer: c.name, Method: e.Method, Path: e.Path}

	call := c.mw.Wrap(func(ctx context.Context, _ observe.CallMeta) (int, error) {
		return c.send(ctx, target, e, p)
	})

	status, err := call(ctx, meta)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		c.logger.Warn(ctx, "warm-up call returned non-2xx status",
			observe.String("method", e.Method),
			observe.String("url", target),
			observe.Int("status", status),
		)
	}
	return nil
}

func (c *Caller) send(ctx context.Context, target string, e plan.Endpoint, p *plan.Plan) (int, error) {
	body, contentType, err := encodeBody(e)
	if err != nil {
		return 0, err
	}
	if body == nil && expectsBody(e.Method) {
		c.logger.Warn(ctx, "warm-up call has no request body",
			observe.String("method", e.Method),
			observe.String("url", target),
		)
	}

	client := p.HTTPClient()
	if client == nil {
		client = http.DefaultClient
	}

	var status int
	err = c.retry.Execute(ctx, func(ctx context.Context) error {
		return c.timeout.Execute(ctx, func(ctx context.Context) error {
			var err error
			status, err = c.do(ctx, client, target, e.Method, body, contentType)
			return err
		})
	})
	return status, err
}

func (c *Caller) do(ctx context.Context, client *http.Client, target, method string, body []byte, contentType string) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrCallFailed, method, target, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %s: token: %w", ErrCallFailed, method, target, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrCallFailed, method, target, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	return resp.StatusCode, nil
}

func expectsBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
