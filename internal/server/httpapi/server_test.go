package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/supportdesk/internal/logging"
	"github.com/dmitrijs2005/supportdesk/internal/server/auth"
	"github.com/dmitrijs2005/supportdesk/internal/server/config"
	"github.com/dmitrijs2005/supportdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/supportdesk/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    testSecret,
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	us := services.NewUserService(repomanager.NewInMemoryRepositoryManager(), cfg)
	return NewServer("127.0.0.1:0", logging.Nop(), us)
}

func do(t *testing.T, s *Server, method, path string, body any, access string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func registerAlice(t *testing.T, s *Server) tokenResponse {
	t.Helper()
	w := do(t, s, http.MethodPost, RegisterPath, credentialsRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[tokenResponse](t, w)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	reg := registerAlice(t, s)
	require.NotNil(t, reg.User)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.NotEmpty(t, reg.Access)
	assert.NotEmpty(t, reg.Refresh)

	w := do(t, s, http.MethodPost, LoginPath, credentialsRequest{Email: "alice@example.com", Password: "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[tokenResponse](t, w)
	assert.Equal(t, reg.User.ID, login.User.ID)

	w = do(t, s, http.MethodPost, LoginPath, credentialsRequest{Email: "alice@example.com", Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decode[map[string]string](t, w)["error"])
}

func TestRegister_Errors(t *testing.T) {
	s := newTestServer(t)
	registerAlice(t, s)

	w := do(t, s, http.MethodPost, RegisterPath, credentialsRequest{Email: "alice@example.com", Password: "secret1"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, s, http.MethodPost, RegisterPath, credentialsRequest{Email: "bad", Password: "secret1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "invalid email")

	req := httptest.NewRequest(http.MethodPost, RegisterPath, bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh_RotatesAndRejectsReuse(t *testing.T) {
	s := newTestServer(t)
	reg := registerAlice(t, s)

	w := do(t, s, http.MethodPost, RefreshPath, refreshRequest{Refresh: reg.Refresh}, "")
	require.Equal(t, http.StatusOK, w.Code)
	pair := decode[tokenResponse](t, w)
	assert.NotEqual(t, reg.Refresh, pair.Refresh)
	assert.Nil(t, pair.User)

	w = do(t, s, http.MethodPost, RefreshPath, refreshRequest{Refresh: reg.Refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, http.MethodPost, RefreshPath, refreshRequest{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	reg := registerAlice(t, s)

	w := do(t, s, http.MethodPost, LogoutPath, refreshRequest{Refresh: reg.Refresh}, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, s, http.MethodPost, RefreshPath, refreshRequest{Refresh: reg.Refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t)
	reg := registerAlice(t, s)

	expired, err := auth.GenerateToken(reg.User.ID, []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	forged, err := auth.GenerateToken(reg.User.ID, []byte("other"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		access  string
		code    int
		message string
	}{
		{name: "missing", code: http.StatusUnauthorized, message: "missing token"},
		{name: "expired", access: expired, code: http.StatusUnauthorized, message: "token expired"},
		{name: "forged", access: forged, code: http.StatusUnauthorized, message: "invalid token"},
		{name: "valid", access: reg.Access, code: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodGet, PingPath, nil, tt.access)
			assert.Equal(t, tt.code, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode[map[string]string](t, w)["error"])
			}
		})
	}
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	reg := registerAlice(t, s)

	w := do(t, s, http.MethodGet, MePath, nil, reg.Access)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[userResponse](t, w)
	assert.Equal(t, *reg.User, me)

	ghost, err := auth.GenerateToken("ghost", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	w = do(t, s, http.MethodGet, MePath, nil, ghost)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEcho(t *testing.T) {
	s := newTestServer(t)
	reg := registerAlice(t, s)

	w := do(t, s, http.MethodPut, EchoPath+"?x=1", map[string]int{"n": 7}, reg.Access)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Method string         `json:"method"`
		UserID string         `json:"user_id"`
		Query  string         `json:"query"`
		Body   map[string]int `json:"body"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, reg.User.ID, got.UserID)
	assert.Equal(t, "x=1", got.Query)
	assert.Equal(t, 7, got.Body["n"])

	req := httptest.NewRequest(http.MethodPost, EchoPath, bytes.NewBufferString("not json"))
	req.Header.Set("Authorization", "Bearer "+reg.Access)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestParseBearer(t *testing.T) {
	assert.Equal(t, "tok", parseBearer("Bearer tok"))
	assert.Equal(t, "tok", parseBearer("bearer  tok "))
	assert.Equal(t, "", parseBearer("Basic tok"))
	assert.Equal(t, "", parseBearer("tok"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
