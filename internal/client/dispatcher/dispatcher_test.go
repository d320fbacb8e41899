package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPDispatcher_BaseURL(t *testing.T) {
	_, err := NewHTTPDispatcher("ftp://example.com")
	require.Error(t, err)

	_, err = NewHTTPDispatcher("://bad")
	require.Error(t, err)

	d, err := NewHTTPDispatcher("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", d.baseURL.String())
	assert.Equal(t, DefaultTimeout, d.timeout)
}

func TestSend_AttachesBearerAndHeaders(t *testing.T) {
	var got *http.Request
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"t-1"}`))
	}))
	defer srv.Close()

	d, err := NewHTTPDispatcher(srv.URL, WithUserAgent("test-agent"))
	require.NoError(t, err)

	desc := NewDescriptor(http.MethodPost, "/api/tickets", map[string]string{"subject": "printer"})
	desc.Header = http.Header{"X-Tenant": []string{"acme"}}

	resp, err := d.Send(context.Background(), desc, "A1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.True(t, resp.IsSuccess())
	assert.JSONEq(t, `{"id":"t-1"}`, string(resp.Body))

	require.NotNil(t, got)
	assert.Equal(t, "/api/tickets", got.URL.Path)
	assert.Equal(t, "Bearer A1", got.Header.Get("Authorization"))
	assert.Equal(t, "acme", got.Header.Get("X-Tenant"))
	assert.Equal(t, "test-agent", got.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"subject":"printer"}`, string(gotBody))
}

func TestSend_AnonymousHasNoAuthorization(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d, err := NewHTTPDispatcher(srv.URL)
	require.NoError(t, err)

	resp, err := d.Send(context.Background(), NewDescriptor(http.MethodGet, "/api/ping", nil), "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Empty(t, auth)
}

func TestSend_RawBodyIsVerbatim(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	d, err := NewHTTPDispatcher(srv.URL)
	require.NoError(t, err)

	_, err = d.Send(context.Background(), NewDescriptor(http.MethodPut, "/x", json.RawMessage(`{"a":1}`)), "")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(gotBody))
}

func TestSend_ReturnsUnauthorizedAsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	}))
	defer srv.Close()

	d, err := NewHTTPDispatcher(srv.URL)
	require.NoError(t, err)

	resp, err := d.Send(context.Background(), NewDescriptor(http.MethodGet, "/api/me", nil), "A1")
	require.NoError(t, err)
	assert.True(t, resp.IsUnauthorized())
	assert.False(t, resp.IsSuccess())
}

func TestSend_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d, err := NewHTTPDispatcher(srv.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = d.Send(context.Background(), NewDescriptor(http.MethodGet, "/slow", nil), "")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Timeout)
	assert.Equal(t, http.MethodGet, te.Method)
	assert.Contains(t, te.Error(), "timed out")
}

func TestSend_ConnectionRefusedIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d, err := NewHTTPDispatcher(url)
	require.NoError(t, err)

	_, err = d.Send(context.Background(), NewDescriptor(http.MethodGet, "/", nil), "")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.False(t, te.Timeout)
}

func TestSend_UnencodableBody(t *testing.T) {
	d, err := NewHTTPDispatcher("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = d.Send(context.Background(), NewDescriptor(http.MethodPost, "/x", make(chan int)), "")
	require.Error(t, err)
	var te *TransportError
	assert.False(t, errors.As(err, &te))
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Descriptor
		wantErr bool
	}{
		{"get ok", NewDescriptor(http.MethodGet, "/api/me", nil), false},
		{"post ok", NewDescriptor(http.MethodPost, "/api/tickets", map[string]string{}), false},
		{"delete ok", NewDescriptor(http.MethodDelete, "/api/tickets/1", nil), false},
		{"bad method", NewDescriptor("TRACE", "/", nil), true},
		{"empty method", NewDescriptor("", "/", nil), true},
		{"empty path", NewDescriptor(http.MethodGet, "", nil), true},
		{"relative path", NewDescriptor(http.MethodGet, "api/me", nil), true},
		{"get with body", NewDescriptor(http.MethodGet, "/api/me", "x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDescriptor_MarkRetriedCopies(t *testing.T) {
	d := NewDescriptor(http.MethodGet, "/api/me", nil)
	r := d.MarkRetried()
	assert.False(t, d.Retried())
	assert.True(t, r.Retried())
}

func TestSend_BodySizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "at limit", size: MaxBodySize},
		{name: "over limit", size: MaxBodySize + 11, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(make([]byte, tt.size))
			}))
			defer srv.Close()

			d, err := NewHTTPDispatcher(srv.URL)
			require.NoError(t, err)

			resp, err := d.Send(context.Background(), NewDescriptor(http.MethodGet, "/export", nil), "")
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Len(t, resp.Body, tt.size)
				return
			}
			require.Nil(t, resp)
			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.ErrorIs(t, err, ErrBodyTooLarge)
			assert.False(t, te.Timeout)
		})
	}
}
