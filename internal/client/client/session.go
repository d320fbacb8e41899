package client

import (
	"context"

	"github.com/dmitrijs2005/supportdesk/internal/client/authapi"
	"github.com/dmitrijs2005/supportdesk/internal/client/credentials"
	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
)

// MePath is the profile endpoint of the API.
const MePath = "/api/me"

// Login authenticates and stores the issued pair.
func (c *Client) Login(ctx context.Context, email, password string) outcome.Outcome[authapi.Profile] {
	s, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return outcome.Fail[authapi.Profile](asFailure(err))
	}
	return c.startSession(ctx, s)
}

// Register creates an account and stores its first pair.
func (c *Client) Register(ctx context.Context, name, email, password string) outcome.Outcome[authapi.Profile] {
	s, err := c.auth.Register(ctx, name, email, password)
	if err != nil {
		return outcome.Fail[authapi.Profile](asFailure(err))
	}
	return c.startSession(ctx, s)
}

// asFailure keeps a *outcome.Failure as is and treats anything else as a
// failed exchange with the server.
func asFailure(err error) *outcome.Failure {
	if kind := outcome.KindOf(err); kind != "" {
		return outcome.Wrap(kind, err)
	}
	return outcome.Wrap(outcome.ServerFailure, err)
}

func (c *Client) startSession(ctx context.Context, s *authapi.Session) outcome.Outcome[authapi.Profile] {
	if err := c.store.Set(ctx, s.Pair); err != nil {
		return outcome.Fail[authapi.Profile](outcome.Wrap(outcome.TransportFailure, err))
	}

	c.mu.Lock()
	p := s.Profile
	c.profile = &p
	c.mu.Unlock()

	c.logger.Info(ctx, "session started", "user_id", s.Profile.ID)
	return outcome.Success(s.Profile)
}

// Logout revokes the refresh credential on the server (best effort) and
// clears the local session. It succeeds even when the server is unreachable.
func (c *Client) Logout(ctx context.Context) outcome.Outcome[struct{}] {
	pair, ok, err := c.store.Get(ctx)
	if err != nil {
		return outcome.Fail[struct{}](outcome.Wrap(outcome.TransportFailure, err))
	}
	if ok && pair.Refresh != "" {
		if err := c.auth.Logout(ctx, pair.Refresh); err != nil {
			c.logger.Warn(ctx, "server-side logout failed", "error", err)
		}
	}
	if err := c.ClearCredential(ctx); err != nil {
		return outcome.Fail[struct{}](outcome.Wrap(outcome.TransportFailure, err))
	}
	return outcome.Success(struct{}{})
}

// Me fetches the profile of the current user.
func (c *Client) Me(ctx context.Context) outcome.Outcome[authapi.Profile] {
	o := GetJSON[authapi.Profile](ctx, c, MePath)
	if o.Ok() {
		p := o.Value()
		c.mu.Lock()
		c.profile = &p
		c.mu.Unlock()
	}
	return o
}

// Profile returns the profile of the last login, registration or Me call.
func (c *Client) Profile() (authapi.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return authapi.Profile{}, false
	}
	return *c.profile, true
}

// GetCredential returns the stored pair.
func (c *Client) GetCredential(ctx context.Context) (credentials.Pair, bool, error) {
	return c.store.Get(ctx)
}

// SetCredential stores p, e.g. a pair obtained out of band.
func (c *Client) SetCredential(ctx context.Context, p credentials.Pair) error {
	return c.store.Set(ctx, p)
}

// ClearCredential removes the stored pair and the cached profile. Clearing
// an empty store is a no-op.
func (c *Client) ClearCredential(ctx context.Context) error {
	c.mu.Lock()
	c.profile = nil
	c.mu.Unlock()
	return c.store.Clear(ctx)
}
