package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/supportdesk/internal/client/authapi"
	"github.com/dmitrijs2005/supportdesk/internal/client/credentials"
	"github.com/dmitrijs2005/supportdesk/internal/client/dispatcher"
	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
	"github.com/dmitrijs2005/supportdesk/internal/client/refresh"
	"github.com/dmitrijs2005/supportdesk/internal/logging"
)

// Response is the payload of a successful raw call.
type Response = dispatcher.Response

// Result is the Outcome of a raw call.
type Result = outcome.Outcome[*Response]

// Client is the authenticated API client.
type Client struct {
	dispatcher  dispatcher.Dispatcher
	store       credentials.Store
	auth        *authapi.API
	coordinator *refresh.Coordinator
	logger      logging.Logger

	refresher      refresh.Refresher
	refreshTimeout time.Duration
	onSessionEnded func(reason error)

	mu      sync.RWMutex
	profile *authapi.Profile
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger shared by the client and its coordinator.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSessionEndedHandler registers fn, called once each time a refresh
// fails terminally. The host typically sends the user back to sign-in.
func WithSessionEndedHandler(fn func(reason error)) Option {
	return func(c *Client) { c.onSessionEnded = fn }
}

// WithRefreshTimeout bounds each refresh call.
func WithRefreshTimeout(t time.Duration) Option {
	return func(c *Client) { c.refreshTimeout = t }
}

// WithRefresher replaces the default refresher (POST /auth/refresh).
func WithRefresher(r refresh.Refresher) Option {
	return func(c *Client) { c.refresher = r }
}

// New builds a Client sending through d and keeping credentials in store.
func New(d dispatcher.Dispatcher, store credentials.Store, opts ...Option) *Client {
	c := &Client{
		dispatcher:     d,
		store:          store,
		auth:           authapi.New(d),
		logger:         logging.Nop(),
		refreshTimeout: refresh.DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.refresher == nil {
		c.refresher = c.auth
	}

	c.coordinator = refresh.NewCoordinator(store, c.refresher,
		refresh.WithTimeout(c.refreshTimeout),
		refresh.WithLogger(c.logger.With("component", "refresh")),
		refresh.WithSessionEnded(c.endSession),
	)
	return c
}

// Send dispatches d and returns its Outcome. See the package documentation
// for the refresh-and-replay algorithm.
func (c *Client) Send(ctx context.Context, d dispatcher.Descriptor) Result {
	if err := d.Validate(); err != nil {
		return outcome.Fail[*Response](outcome.Wrap(outcome.ValidationFailure, err))
	}

	pair, _, err := c.store.Get(ctx)
	if err != nil {
		return outcome.Fail[*Response](outcome.Wrap(outcome.TransportFailure, err))
	}

	return c.send(ctx, d, pair.Access)
}

func (c *Client) send(ctx context.Context, d dispatcher.Descriptor, access string) Result {
	resp, err := c.dispatcher.Send(ctx, d, access)
	if err != nil {
		return outcome.Fail[*Response](dispatchFailure(err))
	}

	if !resp.IsUnauthorized() {
		return transform(resp)
	}

	if d.Retried() {
		c.logger.Warn(ctx, "replayed request rejected", "method", d.Method, "path", d.Path)
		return outcome.Fail[*Response](outcome.FromResponseAs(outcome.AuthenticationFailure, resp.Status, resp.Body))
	}

	pair, err := c.coordinator.Resolve(ctx, access)
	switch {
	case err == nil:
		return c.send(ctx, d.MarkRetried(), pair.Access)
	case errors.Is(err, refresh.ErrNoSession):
		return outcome.Fail[*Response](outcome.FromResponseAs(outcome.AuthenticationFailure, resp.Status, resp.Body))
	case errors.Is(err, refresh.ErrStoreUnavailable):
		return outcome.Fail[*Response](outcome.Wrap(outcome.TransportFailure, err))
	case ctx.Err() != nil:
		return outcome.Fail[*Response](outcome.Wrap(outcome.TransportFailure, err))
	default:
		return outcome.Fail[*Response](outcome.Wrap(outcome.RefreshFailure, err))
	}
}

// endSession runs once per failed refresh ticket.
func (c *Client) endSession(reason error) {
	c.mu.Lock()
	c.profile = nil
	c.mu.Unlock()

	c.logger.Warn(context.Background(), "session ended", "reason", reason)

	if c.onSessionEnded != nil {
		c.onSessionEnded(reason)
	}
}

func transform(resp *Response) Result {
	if resp.IsSuccess() {
		return outcome.Success(resp)
	}
	return outcome.Fail[*Response](outcome.FromResponse(resp.Status, resp.Body))
}

// dispatchFailure classifies a dispatcher error: no response means
// TransportFailure, anything else failed while building the request.
func dispatchFailure(err error) *outcome.Failure {
	var te *dispatcher.TransportError
	if errors.As(err, &te) {
		return outcome.Wrap(outcome.TransportFailure, err)
	}
	return outcome.Wrap(outcome.ValidationFailure, err)
}

// RefreshState reports whether a refresh is in flight.
func (c *Client) RefreshState() refresh.State {
	return c.coordinator.State()
}

// Refreshes returns the number of refresh calls issued by this client.
func (c *Client) Refreshes() int64 {
	return c.coordinator.Refreshes()
}
