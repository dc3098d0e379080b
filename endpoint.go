package lightnet

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout applies when an Endpoint does not set its own.
const DefaultTimeout = 30 * time.Second

// Endpoint describes one API call. Values are read-only to the pipeline;
// construct a fresh one per call.
//
// Zero values fall back to sensible defaults: Method defaults to GET and
// Timeout to DefaultTimeout. Headers and Query are copied into the built
// request; Body, when non-nil, is encoded through the client's codec and
// sent as the JSON document root with a Content-Type header.
type Endpoint struct {
	BaseURL string
	Path    string
	Method  string
	Headers map[string]string
	Query   map[string]string
	Body    any
	Timeout time.Duration
}

// fingerprint keys the retry bookkeeping. Calls sharing base and path
// share one retry counter slot.
func (e Endpoint) fingerprint() string {
	return e.BaseURL + e.Path
}

func (e Endpoint) method() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return e.Method
}

// buildRequest resolves the full URL, encodes query and body, and copies
// headers. URL composition failures surface as InvalidURL rather than
// being silently dropped; body encoding failures surface as Encoding.
func (c *Client) buildRequest(ctx context.Context, e Endpoint) (*http.Request, error) {
	if e.BaseURL == "" {
		return nil, newError(ErrorTypeInvalidURL, "endpoint base URL is empty")
	}

	full, err := url.JoinPath(e.BaseURL, e.Path)
	if err != nil {
		return nil, &Error{Type: ErrorTypeInvalidURL, Message: "invalid base URL or path", Cause: err}
	}

	u, err := url.Parse(full)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &Error{Type: ErrorTypeInvalidURL, Message: "cannot compose request URL", Cause: err}
	}

	if len(e.Query) > 0 {
		q := u.Query()
		for k, v := range e.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body []byte
	if e.Body != nil {
		body, err = c.codec.Encode(e.Body)
		if err != nil {
			return nil, &Error{Type: ErrorTypeEncoding, Message: "cannot encode request body", Cause: err}
		}
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	var req *http.Request
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, e.method(), u.String(), reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, e.method(), u.String(), nil)
	}
	if err != nil {
		return nil, &Error{Type: ErrorTypeInvalidURL, Message: "cannot build request", Cause: err}
	}

	for k, v := range e.Headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
