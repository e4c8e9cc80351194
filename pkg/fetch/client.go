package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/simplest-networking/pkg/httpclient"
	"github.com/samvad-hq/simplest-networking/pkg/request"
)

// Package fetch sends built requests and decodes their JSON responses.

const defaultTimeout = 30 * time.Second

// Client issues single-shot requests over an injected transport.
type Client struct {
	http httpclient.Client
	log  Logger
}

// NewClient wires a fetch client. A nil http client falls back to resty with a 30s timeout.
func NewClient(http httpclient.Client, log Logger) *Client {
	if http == nil {
		http = httpclient.NewRestyClient(defaultTimeout)
	}
	return &Client{http: http, log: ensureLogger(log)}
}

// Do sends req and decodes a 2xx body into target. A nil target skips decoding.
// Construction errors carried by req are returned unchanged without any I/O.
func (c *Client) Do(ctx context.Context, req request.Request, target any) error {
	if err := req.Err(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id := uuid.NewString()
	method := string(req.Method())
	url := req.URL().String()
	start := time.Now()

	c.log.DebugObj("fetch started", "fetch_request", map[string]any{
		"request_id": id,
		"method":     method,
		"url":        url,
	})

	resp, err := c.http.Execute(ctx, method, url, req.Headers(), req.Body())
	if err != nil {
		c.log.WarnObj("fetch transport failed", "fetch_error", map[string]any{
			"request_id": id,
			"method":     method,
			"url":        url,
			"error":      err.Error(),
		})
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, url, err)
	}

	if !resp.IsSuccess() {
		statusErr := &StatusError{Code: resp.StatusCode(), Body: bodySnippet(resp.Body())}
		c.log.WarnObj("fetch returned error status", "fetch_error", map[string]any{
			"request_id":  id,
			"method":      method,
			"url":         url,
			"status_code": statusErr.Code,
		})
		return fmt.Errorf("%s %s: %w", method, url, statusErr)
	}

	if target != nil {
		if err := json.Unmarshal(resp.Body(), target); err != nil {
			c.log.WarnObj("fetch decode failed", "fetch_error", map[string]any{
				"request_id": id,
				"url":        url,
				"error":      err.Error(),
			})
			return fmt.Errorf("%w: %s %s: %w", ErrDecode, method, url, err)
		}
	}

	c.log.DebugObj("fetch completed", "fetch_result", map[string]any{
		"request_id":  id,
		"status_code": resp.StatusCode(),
		"bytes":       len(resp.Body()),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// Fetch sends req and decodes the response as T. On failure the zero value is returned.
func Fetch[T any](ctx context.Context, c *Client, req request.Request) (T, error) {
	var out T
	if c == nil {
		return out, fmt.Errorf("fetch client is nil")
	}
	if err := c.Do(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Result is the terminal outcome of an asynchronous fetch.
type Result[T any] struct {
	Value T
	Err   error
}

// FetchAsync starts Fetch in the background. The returned channel yields exactly one
// Result and is then closed. Abandoning the channel does not leak the goroutine;
// cancel ctx to stop the request itself.
func FetchAsync[T any](ctx context.Context, c *Client, req request.Request) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := Fetch[T](ctx, c, req)
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// Await blocks until ch resolves or ctx is done.
func Await[T any](ctx context.Context, ch <-chan Result[T]) (T, error) {
	select {
	case res, ok := <-ch:
		if !ok {
			var zero T
			return zero, fmt.Errorf("fetch result already consumed")
		}
		return res.Value, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
