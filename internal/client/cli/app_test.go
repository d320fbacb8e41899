package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/supportdesk/internal/client/client"
	"github.com/dmitrijs2005/supportdesk/internal/client/config"
	"github.com/dmitrijs2005/supportdesk/internal/client/credentials"
	"github.com/dmitrijs2005/supportdesk/internal/client/dispatcher"
	"github.com/dmitrijs2005/supportdesk/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI accepts access tokens listed in valid and rotates A1/R1 into A2/R2
// on refresh unless refreshRejected is set.
type fakeAPI struct {
	mu              sync.Mutex
	valid           map[string]bool
	refreshRejected bool
	refreshes       atomic.Int32
	logouts         atomic.Int32
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
			return
		}
		f.allow("A1")
		writeJSON(w, http.StatusOK, map[string]any{
			"access": "A1", "refresh": "R1",
			"user": map[string]string{"id": "u-1", "email": req["email"], "name": "Agent"},
		})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.allow("A1")
		writeJSON(w, http.StatusCreated, map[string]any{
			"access": "A1", "refresh": "R1",
			"user": map[string]string{"id": "u-2", "email": req["email"], "name": req["name"]},
		})
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		f.mu.Lock()
		rejected := f.refreshRejected
		f.mu.Unlock()
		if rejected {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "refresh token revoked"})
			return
		}
		f.allow("A2")
		writeJSON(w, http.StatusOK, map[string]string{"access": "A2", "refresh": "R2"})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		access := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		ok := f.valid[access]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expired"})
			return
		}
		if r.URL.Path == "/api/me" {
			writeJSON(w, http.StatusOK, map[string]string{"id": "u-1", "email": "agent@example.com", "name": "Agent"})
			return
		}
		body, _ := io.ReadAll(r.Body)
		writeJSON(w, http.StatusOK, map[string]any{"method": r.Method, "path": r.URL.Path, "body": string(body)})
	})
	return mux
}

func (f *fakeAPI) allow(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.valid == nil {
		f.valid = map[string]bool{}
	}
	f.valid[token] = true
}

func (f *fakeAPI) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.valid, token)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestApp(t *testing.T, api *fakeAPI, input string) (*App, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	d, err := dispatcher.NewHTTPDispatcher(srv.URL)
	require.NoError(t, err)

	var out bytes.Buffer
	a := &App{
		config:     &config.Config{ServerURL: srv.URL},
		logger:     logging.Nop(),
		reader:     bufio.NewReader(strings.NewReader(input)),
		out:        &out,
		closeStore: func() error { return nil },
	}
	a.client = client.New(d, credentials.NewMemoryStore(), client.WithSessionEndedHandler(a.sessionEnded))
	return a, &out
}

func TestGetStatus(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{}, "")
	assert.Equal(t, "", a.getStatus())

	a.setMode(ModeOnline)
	assert.Equal(t, "(online)", a.getStatus())

	require.NoError(t, a.client.SetCredential(context.Background(), credentials.Pair{Access: "A1", Refresh: "R1"}))
	assert.Equal(t, "(session online)", a.getStatus())
}

func TestSetMode_ChangesOnce(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{}, "")

	a.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, a.getMode())
	a.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, a.getMode())
	a.setMode(ModeOffline)
	assert.Equal(t, ModeOffline, a.getMode())
}

func TestCheckOnline(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestApp(t, api, "")

	// 401 still means the server answered
	a.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, a.getMode())

	d, err := dispatcher.NewHTTPDispatcher("http://127.0.0.1:1")
	require.NoError(t, err)
	a.client = client.New(d, credentials.NewMemoryStore())
	a.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, a.getMode())
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, closeFn, err := openStore(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &credentials.MemoryStore{}, mem)
	require.NoError(t, closeFn())

	s, closeFn, err := openStore(ctx, t.TempDir()+"/profile/credentials.db")
	require.NoError(t, err)
	assert.IsType(t, &credentials.SQLiteStore{}, s)
	require.NoError(t, s.Set(ctx, credentials.Pair{Access: "A", Refresh: "R"}))
	require.NoError(t, closeFn())
}
