package plan

import (
	"fmt"
	"net/http"
	"strings"
)

// ContentTypeJSON is the content type used when a body is added without one.
const ContentTypeJSON = "application/json"

// Endpoint describes one HTTP call made during warm-up.
//
// Endpoint is a value type; copies are independent and a Plan never exposes
// its internal slice, so an Endpoint is effectively immutable once added.
type Endpoint struct {
	// Method is the HTTP method, e.g. GET.
	Method string

	// Path is the request path, relative to the local server.
	Path string

	// Body is the request body. Nil means the request has no body.
	Body any

	// ContentType is the content type of Body. Empty when Body is nil.
	ContentType string
}

// Get describes a GET endpoint without body.
func Get(path string) Endpoint {
	return NewEndpoint(http.MethodGet, path)
}

// NewEndpoint describes an endpoint without body.
func NewEndpoint(method, path string) Endpoint {
	return Endpoint{Method: method, Path: path}
}

// Post describes a POST endpoint with the given body.
func Post(path string, body any, contentType string) Endpoint {
	return NewEndpointWithBody(http.MethodPost, path, body, contentType)
}

// NewEndpointWithBody describes an endpoint with a body.
func NewEndpointWithBody(method, path string, body any, contentType string) Endpoint {
	return Endpoint{Method: method, Path: path, Body: body, ContentType: contentType}
}

// HasBody reports whether the endpoint carries a request body.
func (e Endpoint) HasBody() bool {
	return e.Body != nil
}

// Validate checks that the method is an HTTP token and the path is not empty.
func (e Endpoint) Validate() error {
	if !isToken(e.Method) {
		return fmt.Errorf("%w: method %q is not a valid HTTP token", ErrInvalidEndpoint, e.Method)
	}
	if strings.TrimSpace(e.Path) == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidEndpoint)
	}
	return nil
}

// String returns "METHOD path".
func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// isToken reports whether s is a non-empty RFC 9110 token.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0:
		default:
			return false
		}
	}
	return true
}
