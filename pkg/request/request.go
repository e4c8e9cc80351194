package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/samvad-hq/simplest-networking/pkg/endpoint"
)

// Package request provides an immutable HTTP request value built step by step.

// Method is an HTTP verb.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

const (
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// Valid reports whether m is a non-empty HTTP token.
func (m Method) Valid() bool {
	if m == "" {
		return false
	}
	for i := 0; i < len(m); i++ {
		c := m[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte("()<>@,;:\\\"/[]?={}", c) >= 0 {
			return false
		}
	}
	return true
}

// Request is an immutable outgoing request. The zero value is not usable; start from New.
type Request struct {
	method Method
	url    url.URL
	header map[string]string
	body   []byte
	err    error
}

// New starts a request for ep with a JSON content type and no method or body.
func New(ep endpoint.Endpoint) Request {
	u, err := ep.URL()
	if err != nil {
		return Request{err: &BuildError{Op: "url", Err: fmt.Errorf("%w: %w", ErrInvalidURL, err)}}
	}
	return Request{
		url:    *u,
		header: map[string]string{HeaderContentType: ContentTypeJSON},
	}
}

// WithMethod returns a copy of r using method.
func (r Request) WithMethod(method Method) Request {
	if r.err != nil {
		return r
	}
	method = Method(strings.ToUpper(string(method)))
	if !method.Valid() {
		return r.fail("method", fmt.Errorf("%w: %q", ErrInvalidMethod, method))
	}
	return r.mutate(func(c *Request) { c.method = method })
}

// WithBody returns a copy of r whose body is the JSON encoding of v.
func (r Request) WithBody(v any) Request {
	if r.err != nil {
		return r
	}
	data, err := json.Marshal(v)
	if err != nil {
		return r.fail("body", fmt.Errorf("%w: %w", ErrEncodeBody, err))
	}
	return r.mutate(func(c *Request) { c.body = data })
}

// WithHeaders returns a copy of r with headers merged in. Supplied values win.
// Names must be HTTP tokens and values must not contain control characters.
func (r Request) WithHeaders(headers map[string]string) Request {
	if r.err != nil {
		return r
	}
	for k, v := range headers {
		if !httpguts.ValidHeaderFieldName(k) {
			return r.fail("headers", fmt.Errorf("%w: name %q", ErrInvalidHeader, k))
		}
		if !httpguts.ValidHeaderFieldValue(v) {
			return r.fail("headers", fmt.Errorf("%w: value for %q", ErrInvalidHeader, k))
		}
	}
	return r.mutate(func(c *Request) {
		for k, v := range headers {
			c.header[http.CanonicalHeaderKey(k)] = v
		}
	})
}

// mutate applies fn to a deep copy so the receiver is never touched.
func (r Request) mutate(fn func(*Request)) Request {
	c := r
	c.header = make(map[string]string, len(r.header))
	for k, v := range r.header {
		c.header[k] = v
	}
	if r.body != nil {
		c.body = bytes.Clone(r.body)
	}
	fn(&c)
	return c
}

func (r Request) fail(op string, err error) Request {
	return Request{err: &BuildError{Op: op, Err: err}}
}

// Err returns the construction error, if any step failed.
func (r Request) Err() error { return r.err }

// Method returns the configured verb; GET when none was set.
func (r Request) Method() Method {
	if r.method == "" {
		return MethodGet
	}
	return r.method
}

// HasMethod reports whether WithMethod was applied.
func (r Request) HasMethod() bool { return r.method != "" }

// URL returns a copy of the target URL, or nil when construction failed.
func (r Request) URL() *url.URL {
	if r.err != nil {
		return nil
	}
	u := r.url
	return &u
}

// Header returns the value for name, matched case-insensitively.
func (r Request) Header(name string) string {
	return r.header[http.CanonicalHeaderKey(name)]
}

// Headers returns a copy of all headers keyed by canonical name.
func (r Request) Headers() map[string]string {
	out := make(map[string]string, len(r.header))
	for k, v := range r.header {
		out[k] = v
	}
	return out
}

// Body returns a copy of the encoded body, or nil.
func (r Request) Body() []byte {
	if r.body == nil {
		return nil
	}
	return bytes.Clone(r.body)
}

// DecodeBody unmarshals the stored body into v.
func (r Request) DecodeBody(v any) error {
	if r.body == nil {
		return ErrNoBody
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// String renders the request line for logs.
func (r Request) String() string {
	if r.err != nil {
		return "<invalid request: " + r.err.Error() + ">"
	}
	return string(r.Method()) + " " + r.url.String()
}
