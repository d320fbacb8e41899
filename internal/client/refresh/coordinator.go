package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/supportdesk/internal/client/credentials"
	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
	"github.com/dmitrijs2005/supportdesk/internal/logging"
)

// DefaultRefreshTimeout bounds one refresh call.
const DefaultRefreshTimeout = 10 * time.Second

// ErrNoSession is returned by Resolve when there is no refresh credential to
// refresh with. No refresh call is made and the session-ended hook does not
// fire.
var ErrNoSession = errors.New("no session to refresh")

// ErrStoreUnavailable is returned by Resolve when the credential store
// could not be read. No refresh call is made.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// State of the Coordinator.
type State int32

const (
	StateIdle State = iota
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Refresher mints a new pair from a refresh credential.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (credentials.Pair, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (credentials.Pair, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (credentials.Pair, error) {
	return f(ctx, refreshToken)
}

// ticket is one in-flight refresh. done is closed exactly once, after pair
// and err are set; closing it releases every subscriber.
type ticket struct {
	done        chan struct{}
	subscribers int
	pair        credentials.Pair
	err         error
}

// Coordinator serializes refreshes for one credential store.
type Coordinator struct {
	store     credentials.Store
	refresher Refresher
	timeout   time.Duration
	logger    logging.Logger
	onEnded   func(reason error)

	mu     sync.Mutex
	ticket *ticket

	refreshes atomic.Int64
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout bounds each refresh call. Non-positive values are ignored.
func WithTimeout(t time.Duration) Option {
	return func(c *Coordinator) {
		if t > 0 {
			c.timeout = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithSessionEnded registers fn, called once per failed refresh after the
// store was cleared and before waiters are released.
func WithSessionEnded(fn func(reason error)) Option {
	return func(c *Coordinator) { c.onEnded = fn }
}

func NewCoordinator(store credentials.Store, refresher Refresher, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     store,
		refresher: refresher,
		timeout:   DefaultRefreshTimeout,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports whether a refresh is in flight.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticket != nil {
		return StateRefreshing
	}
	return StateIdle
}

// Subscribers returns how many callers joined the in-flight ticket, owner
// included. It is zero when Idle.
func (c *Coordinator) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticket == nil {
		return 0
	}
	return c.ticket.subscribers
}

// Refreshes returns how many refresh calls were issued so far.
func (c *Coordinator) Refreshes() int64 {
	return c.refreshes.Load()
}

// Resolve is called after a request sent with staleAccess came back 401.
// It joins the in-flight refresh or starts one, and returns the pair to
// replay with.
//
// If the store already holds a different access credential (a refresh
// completed after the request was sent), that pair is returned without a
// new refresh.
//
// If the store was replaced while the refresh was in flight, the refresh
// result is discarded and waiters get the replacing pair, or ErrNoSession
// when the store was cleared.
//
// Errors: ErrNoSession when nothing can be refreshed, ErrStoreUnavailable
// when the store could not be read, a *outcome.Failure of kind
// RefreshFailure when the refresh failed, or ctx.Err() when the caller
// stopped waiting.
func (c *Coordinator) Resolve(ctx context.Context, staleAccess string) (credentials.Pair, error) {
	c.mu.Lock()

	t := c.ticket
	if t == nil {
		current, ok, err := c.store.Get(ctx)
		if err != nil {
			c.mu.Unlock()
			return credentials.Pair{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if ok && current.Access != "" && current.Access != staleAccess {
			c.mu.Unlock()
			return current, nil
		}
		if !ok || current.Refresh == "" {
			c.mu.Unlock()
			return credentials.Pair{}, ErrNoSession
		}

		t = &ticket{done: make(chan struct{})}
		c.ticket = t
		c.refreshes.Add(1)
		go c.run(t, current.Refresh)
	}
	t.subscribers++

	c.mu.Unlock()

	select {
	case <-t.done:
		return t.pair, t.err
	case <-ctx.Done():
		return credentials.Pair{}, ctx.Err()
	}
}

// run performs the refresh call and resolves t.
func (c *Coordinator) run(t *ticket, refreshToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	c.logger.Info(ctx, "refreshing credentials")

	pair, err := c.refresher.Refresh(ctx, refreshToken)
	var failure *outcome.Failure
	switch {
	case err != nil && ctx.Err() != nil:
		failure = &outcome.Failure{
			Kind:    outcome.RefreshFailure,
			Message: fmt.Sprintf("refresh timed out after %s", c.timeout),
			Err:     err,
		}
	case err != nil:
		failure = outcome.Wrap(outcome.RefreshFailure, err)
	case pair.Access == "" || pair.Refresh == "":
		failure = outcome.NewFailure(outcome.RefreshFailure, "refresh returned an incomplete credential pair")
	}

	// the store is written before the ticket is dropped, under the same lock
	c.mu.Lock()
	current, ok, getErr := c.store.Get(context.Background())
	superseded := getErr == nil && (!ok || current.Refresh != refreshToken)
	switch {
	case superseded:
		// a login, logout or SetCredential replaced the session meanwhile
		failure = nil
		if ok && current.Access != "" {
			t.pair = current
		} else {
			t.err = ErrNoSession
		}
	case failure == nil:
		if err := c.store.Set(context.Background(), pair); err != nil {
			failure = outcome.Wrap(outcome.RefreshFailure, fmt.Errorf("store refreshed credentials: %w", err))
		}
	}
	if failure != nil {
		if err := c.store.Clear(context.Background()); err != nil {
			c.logger.Error(ctx, "failed to clear credentials", "error", err)
		}
		t.err = failure
	} else if !superseded {
		t.pair = pair
	}
	c.ticket = nil
	c.mu.Unlock()

	if superseded {
		c.logger.Info(ctx, "credentials replaced during refresh, refresh result discarded", "took", time.Since(start))
		close(t.done)
		return
	}

	if t.err != nil {
		c.logger.Warn(ctx, "refresh failed, session ended", "error", t.err, "took", time.Since(start))
		if c.onEnded != nil {
			c.onEnded(t.err)
		}
	} else {
		c.logger.Info(ctx, "credentials refreshed", "took", time.Since(start))
	}

	close(t.done)
}
