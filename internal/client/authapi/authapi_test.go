package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/supportdesk/internal/client/credentials"
	"github.com/dmitrijs2005/supportdesk/internal/client/dispatcher"
	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, h http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	d, err := dispatcher.NewHTTPDispatcher(srv.URL)
	require.NoError(t, err)
	return New(d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_Success(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, LoginPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "agent@example.com", req.Email)
		assert.Equal(t, "secret", req.Password)

		writeJSON(w, http.StatusOK, map[string]any{
			"access":  "A1",
			"refresh": "R1",
			"user":    map[string]string{"id": "u-1", "email": "agent@example.com", "name": "Agent"},
		})
	})

	s, err := api.Login(context.Background(), "agent@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, credentials.Pair{Access: "A1", Refresh: "R1"}, s.Pair)
	assert.Equal(t, Profile{ID: "u-1", Email: "agent@example.com", Name: "Agent"}, s.Profile)
}

func TestLogin_Rejected(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	})

	_, err := api.Login(context.Background(), "agent@example.com", "wrong")
	require.ErrorIs(t, err, outcome.ErrAuthentication)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestLogin_MissingFieldsFailFast(t *testing.T) {
	called := false
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := api.Login(context.Background(), "", "secret")
	require.ErrorIs(t, err, outcome.ErrValidation)
	_, err = api.Register(context.Background(), "n", "a@b.c", "")
	require.ErrorIs(t, err, outcome.ErrValidation)
	assert.False(t, called)
}

func TestLogin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	d, err := dispatcher.NewHTTPDispatcher(srv.URL)
	require.NoError(t, err)

	_, err = New(d).Login(context.Background(), "a@b.c", "p")
	require.ErrorIs(t, err, outcome.ErrTransport)
}

func TestLogin_MalformedBody(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access": "A1"})
	})

	_, err := api.Login(context.Background(), "a@b.c", "p")
	require.ErrorIs(t, err, outcome.ErrServer)
}

func TestRegister_Conflict(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, RegisterPath, r.URL.Path)
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already exists"})
	})

	_, err := api.Register(context.Background(), "Agent", "a@b.c", "p")
	var f *outcome.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, outcome.ServerFailure, f.Kind)
	assert.Equal(t, http.StatusConflict, f.Status)
	assert.Equal(t, "already exists", f.Message)
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		want    credentials.Pair
		wantErr bool
	}{
		{name: "rotated pair", status: 200, body: map[string]string{"access": "A2", "refresh": "R2"}, want: credentials.Pair{Access: "A2", Refresh: "R2"}},
		{name: "invalid refresh credential", status: 400, body: map[string]string{"error": "invalid refresh credential"}, wantErr: true},
		{name: "server down", status: 503, body: map[string]string{"message": "maintenance"}, wantErr: true},
		{name: "half pair", status: 200, body: map[string]string{"access": "A2"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, RefreshPath, r.URL.Path)
				var req refreshRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "R1", req.Refresh)
				writeJSON(w, tt.status, tt.body)
			})

			p, err := api.Refresh(context.Background(), "R1")
			if tt.wantErr {
				require.ErrorIs(t, err, outcome.ErrRefresh)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestRefresh_UnreachableIsRefreshFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	d, err := dispatcher.NewHTTPDispatcher(srv.URL)
	require.NoError(t, err)

	_, err = New(d).Refresh(context.Background(), "R1")
	require.ErrorIs(t, err, outcome.ErrRefresh)
}

func TestLogout(t *testing.T) {
	var got string
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, LogoutPath, r.URL.Path)
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = req.Refresh
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, api.Logout(context.Background(), "R9"))
	assert.Equal(t, "R9", got)
}
