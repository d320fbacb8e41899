package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/supportdesk/internal/common"
	"github.com/dmitrijs2005/supportdesk/internal/logging"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds every Send.
	DefaultTimeout = 10 * time.Second

	// MaxBodySize caps how much of a response body is read. Larger bodies
	// fail with ErrBodyTooLarge.
	MaxBodySize = 8 << 20

	defaultUserAgent = "supportdesk-client/1.0"
)

// ErrBodyTooLarge is the cause of a TransportError for a response body
// over MaxBodySize.
var ErrBodyTooLarge = fmt.Errorf("response body exceeds %d bytes", MaxBodySize)

// Dispatcher sends one request. access may be empty for anonymous calls.
type Dispatcher interface {
	Send(ctx context.Context, d Descriptor, access string) (*Response, error)
}

// Response is the raw result of a call that reached the remote endpoint.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsUnauthorized reports a 401 status.
func (r *Response) IsUnauthorized() bool {
	return r.Status == http.StatusUnauthorized
}

// TransportError means no response was received.
type TransportError struct {
	Method  string
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s %s: timed out: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPDispatcher is the net/http implementation of Dispatcher.
type HTTPDispatcher struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     logging.Logger
}

// Option configures an HTTPDispatcher.
type Option func(*HTTPDispatcher)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *HTTPDispatcher) { d.httpClient = c }
}

// WithTimeout sets the per-call timeout. Non-positive values are ignored.
func WithTimeout(t time.Duration) Option {
	return func(d *HTTPDispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(d *HTTPDispatcher) { d.userAgent = ua }
}

// WithLogger sets the logger used for per-request traces.
func WithLogger(l logging.Logger) Option {
	return func(d *HTTPDispatcher) { d.logger = l }
}

// NewHTTPDispatcher builds a dispatcher sending requests relative to baseURL.
func NewHTTPDispatcher(baseURL string, opts ...Option) (*HTTPDispatcher, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	d := &HTTPDispatcher{
		baseURL:    u,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		userAgent:  defaultUserAgent,
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Send performs a single call. It never retries.
func (h *HTTPDispatcher) Send(ctx context.Context, d Descriptor, access string) (*Response, error) {
	target := h.baseURL.String() + d.Path

	body, err := encodeBody(d.Body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, d.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, vs := range d.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get(common.RequestIDHeaderName) == "" {
		req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	if access != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+access)
	}

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Debug(ctx, "request failed", "method", d.Method, "path", d.Path, "error", err)
		return nil, &TransportError{
			Method:  d.Method,
			URL:     target,
			Timeout: isTimeout(err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &TransportError{Method: d.Method, URL: target, Timeout: isTimeout(err), Err: err}
	}
	if len(data) > MaxBodySize {
		return nil, &TransportError{Method: d.Method, URL: target, Err: ErrBodyTooLarge}
	}

	h.logger.Debug(ctx, "request done",
		"method", d.Method,
		"path", d.Path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(common.RequestIDHeaderName),
		"took", time.Since(start),
	)

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func encodeBody(v any) (io.Reader, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
