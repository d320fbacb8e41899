package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/supportdesk/internal/client/dispatcher"
	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
	"golang.org/x/sync/errgroup"
)

// RequestOption adjusts a descriptor built by the verb helpers.
type RequestOption func(*dispatcher.Descriptor)

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(d *dispatcher.Descriptor) {
		if d.Header == nil {
			d.Header = http.Header{}
		}
		d.Header.Add(key, value)
	}
}

// WithQuery appends query parameters to the path.
func WithQuery(q url.Values) RequestOption {
	return func(d *dispatcher.Descriptor) {
		if len(q) == 0 {
			return
		}
		sep := "?"
		if strings.Contains(d.Path, "?") {
			sep = "&"
		}
		d.Path += sep + q.Encode()
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, opts []RequestOption) Result {
	d := dispatcher.NewDescriptor(method, path, body)
	for _, opt := range opts {
		opt(&d)
	}
	return c.Send(ctx, d)
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) Result {
	return c.do(ctx, http.MethodGet, path, nil, opts)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) Result {
	return c.do(ctx, http.MethodDelete, path, nil, opts)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) Result {
	return c.do(ctx, http.MethodPost, path, body, opts)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) Result {
	return c.do(ctx, http.MethodPut, path, body, opts)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) Result {
	return c.do(ctx, http.MethodPatch, path, body, opts)
}

// SendAll sends every descriptor concurrently, at most limit at a time
// (no limit when limit <= 0), and returns the outcomes in input order.
// Calls share one refresh when their credential expires together.
func (c *Client) SendAll(ctx context.Context, limit int, ds ...dispatcher.Descriptor) []Result {
	results := make([]Result, len(ds))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, d := range ds {
		g.Go(func() error {
			results[i] = c.Send(ctx, d)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Decode turns a raw result into a typed one by JSON-decoding the body.
// An empty body yields the zero value.
func Decode[T any](r Result) outcome.Outcome[T] {
	return outcome.Map(r, outcome.ServerFailure, func(resp *Response) (T, error) {
		var v T
		if len(bytes.TrimSpace(resp.Body)) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			return v, fmt.Errorf("decode response: %w", err)
		}
		return v, nil
	})
}

// GetJSON is Get followed by Decode.
func GetJSON[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) outcome.Outcome[T] {
	return Decode[T](c.Get(ctx, path, opts...))
}

// PostJSON is Post followed by Decode.
func PostJSON[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) outcome.Outcome[T] {
	return Decode[T](c.Post(ctx, path, body, opts...))
}
