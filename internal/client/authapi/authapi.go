// Package authapi talks to the remote authentication endpoints.
//
// Calls go through a dispatcher.Dispatcher without an access credential.
// Every error returned is a *outcome.Failure: login and register report
// AuthenticationFailure for rejected credentials and TransportFailure when
// the server is unreachable; refresh reports RefreshFailure for both, since
// either way the session cannot continue.
package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/supportdesk/internal/client/credentials"
	"github.com/dmitrijs2005/supportdesk/internal/client/dispatcher"
	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
)

const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	RefreshPath  = "/auth/refresh"
	LogoutPath   = "/auth/logout"
)

// Profile is the user data returned next to the tokens.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the result of a login or registration.
type Session struct {
	Pair    credentials.Pair
	Profile Profile
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenResponse struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
	User    *Profile `json:"user,omitempty"`
}

// API is the client of the auth endpoints.
type API struct {
	d dispatcher.Dispatcher
}

func New(d dispatcher.Dispatcher) *API {
	return &API{d: d}
}

// Login exchanges email and password for a session.
func (a *API) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, outcome.NewFailure(outcome.ValidationFailure, "email and password are required")
	}
	return a.session(ctx, LoginPath, loginRequest{Email: email, Password: password})
}

// Register creates an account and returns its first session.
func (a *API) Register(ctx context.Context, name, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, outcome.NewFailure(outcome.ValidationFailure, "email and password are required")
	}
	return a.session(ctx, RegisterPath, registerRequest{Name: name, Email: email, Password: password})
}

// Refresh mints a new pair. It satisfies refresh.Refresher.
func (a *API) Refresh(ctx context.Context, refreshToken string) (credentials.Pair, error) {
	resp, err := a.d.Send(ctx, dispatcher.NewDescriptor(http.MethodPost, RefreshPath, refreshRequest{Refresh: refreshToken}), "")
	if err != nil {
		return credentials.Pair{}, outcome.Wrap(outcome.RefreshFailure, err)
	}
	if !resp.IsSuccess() {
		return credentials.Pair{}, outcome.FromResponseAs(outcome.RefreshFailure, resp.Status, resp.Body)
	}

	tr, err := decodeTokens(resp.Body)
	if err != nil {
		return credentials.Pair{}, outcome.Wrap(outcome.RefreshFailure, err)
	}
	return credentials.Pair{Access: tr.Access, Refresh: tr.Refresh}, nil
}

// Logout revokes the refresh credential on the server.
func (a *API) Logout(ctx context.Context, refreshToken string) error {
	resp, err := a.d.Send(ctx, dispatcher.NewDescriptor(http.MethodPost, LogoutPath, refreshRequest{Refresh: refreshToken}), "")
	if err != nil {
		return outcome.Wrap(outcome.TransportFailure, err)
	}
	if !resp.IsSuccess() {
		return outcome.FromResponse(resp.Status, resp.Body)
	}
	return nil
}

func (a *API) session(ctx context.Context, path string, body any) (*Session, error) {
	resp, err := a.d.Send(ctx, dispatcher.NewDescriptor(http.MethodPost, path, body), "")
	if err != nil {
		var te *dispatcher.TransportError
		if errors.As(err, &te) {
			return nil, outcome.Wrap(outcome.TransportFailure, err)
		}
		return nil, outcome.Wrap(outcome.ValidationFailure, err)
	}
	if !resp.IsSuccess() {
		f := outcome.FromResponse(resp.Status, resp.Body)
		if resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden {
			f.Kind = outcome.AuthenticationFailure
		}
		return nil, f
	}

	tr, err := decodeTokens(resp.Body)
	if err != nil {
		return nil, outcome.Wrap(outcome.ServerFailure, err)
	}

	s := &Session{Pair: credentials.Pair{Access: tr.Access, Refresh: tr.Refresh}}
	if tr.User != nil {
		s.Profile = *tr.User
	}
	return s, nil
}

var errMalformedTokens = errors.New("malformed token response")

func decodeTokens(body []byte) (*tokenResponse, error) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, errMalformedTokens
	}
	if tr.Access == "" || tr.Refresh == "" {
		return nil, errMalformedTokens
	}
	return &tr, nil
}
