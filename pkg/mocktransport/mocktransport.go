package mocktransport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/samvad-hq/simplest-networking/pkg/httpclient"
)

// Package mocktransport intercepts outgoing requests and answers them with canned replies.

// ErrNoHandler is returned for requests that arrive before a handler is set.
var ErrNoHandler = errors.New("mocktransport: received unexpected request with no handler set")

// Reply is the canned response relayed back to the caller. A zero StatusCode means 200.
type Reply struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Handler produces the reply for req, or an error to relay as a transport failure.
type Handler func(req *http.Request) (Reply, error)

// Call records a request seen by the transport.
type Call struct {
	Method string
	URL    string
	Header http.Header
}

// Transport is an http.RoundTripper that accepts every request and never touches the network.
type Transport struct {
	mu      sync.RWMutex
	handler Handler
	calls   []Call
}

// New returns a transport answering with h.
func New(h Handler) *Transport {
	return &Transport{handler: h}
}

// SetHandler swaps the handler for subsequent requests.
func (t *Transport) SetHandler(h Handler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

// Calls returns the number of requests intercepted so far.
func (t *Transport) Calls() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.calls)
}

// Requests returns the intercepted requests in arrival order.
func (t *Transport) Requests() []Call {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Call(nil), t.calls...)
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		defer req.Body.Close()
	}

	t.mu.Lock()
	h := t.handler
	t.calls = append(t.calls, Call{Method: req.Method, URL: req.URL.String(), Header: req.Header.Clone()})
	t.mu.Unlock()

	if h == nil {
		return nil, ErrNoHandler
	}

	reply, err := h(req)
	if err != nil {
		return nil, err
	}
	return reply.response(req), nil
}

func (r Reply) response(req *http.Request) *http.Response {
	code := r.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	body := bytes.Clone(r.Body)
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// JSONReply builds a reply with a JSON content type.
func JSONReply(status int, body string) Reply {
	return Reply{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

// Static answers every request with reply.
func Static(reply Reply) Handler {
	return func(*http.Request) (Reply, error) { return reply, nil }
}

// Failure answers every request with err.
func Failure(err error) Handler {
	return func(*http.Request) (Reply, error) { return Reply{}, err }
}

// NewClient returns a resty-backed client whose requests all go through t.
func NewClient(t *Transport, timeout time.Duration, opts ...httpclient.Option) *httpclient.RestyClient {
	all := append([]httpclient.Option{httpclient.WithTransport(t)}, opts...)
	return httpclient.NewRestyClient(timeout, all...)
}
