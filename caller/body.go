package caller

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/jonwraymond/warmup/plan"
)

// IsJSON reports whether contentType is application/json or a +json type.
func IsJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == plan.ContentTypeJSON || strings.HasSuffix(mt, "+json")
}

// encodeBody returns the request body for e and the content type to send.
// A nil body means the request has none.
func encodeBody(e plan.Endpoint) ([]byte, string, error) {
	if !e.HasBody() {
		return nil, "", nil
	}

	ct := e.ContentType
	if ct == "" {
		ct = plan.ContentTypeJSON
	}

	switch b := e.Body.(type) {
	case []byte:
		return b, ct, nil
	case string:
		return []byte(b), ct, nil
	case json.RawMessage:
		return b, ct, nil
	}

	if IsJSON(ct) {
		data, err := json.Marshal(e.Body)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s: %w", ErrUnsupportedBody, ct, err)
		}
		return data, ct, nil
	}

	if v, ok := e.Body.(url.Values); ok && strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		return []byte(v.Encode()), ct, nil
	}

	return nil, "", fmt.Errorf("%w: %T as %s", ErrUnsupportedBody, e.Body, ct)
}
