package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// Option configures the underlying resty.Client.
type Option func(*resty.Client)

// WithTransport routes every request through rt instead of the default transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *resty.Client) {
		if rt != nil {
			c.SetTransport(rt)
		}
	}
}

// WithLogger replaces resty's internal logger.
func WithLogger(l resty.Logger) Option {
	return func(c *resty.Client) {
		if l != nil {
			c.SetLogger(l)
		}
	}
}

// NewRestyClient creates a new RestyClient with the specified timeout.
// A zero timeout keeps the transport default.
func NewRestyClient(timeout time.Duration, opts ...Option) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout, opts...)}
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration, opts ...Option) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetRetryCount(0)
	c.SetAllowGetMethodPayload(true)
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return r.Execute(ctx, http.MethodGet, url, headers, nil)
}

// Execute performs a single request and reads the whole response body.
func (r *RestyClient) Execute(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if len(body) > 0 {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
func (r *restyResponseAdapter) IsSuccess() bool     { return r.resp.IsSuccess() }
