package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/supportdesk/internal/client/client"
	"github.com/dmitrijs2005/supportdesk/internal/client/config"
	"github.com/dmitrijs2005/supportdesk/internal/client/credentials"
	"github.com/dmitrijs2005/supportdesk/internal/client/dispatcher"
	"github.com/dmitrijs2005/supportdesk/internal/client/outcome"
	"github.com/dmitrijs2005/supportdesk/internal/filex"
	"github.com/dmitrijs2005/supportdesk/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// PingPath is probed by the reachability watcher.
const PingPath = "/api/ping"

type App struct {
	config     *config.Config
	client     *client.Client
	logger     logging.Logger
	reader     *bufio.Reader
	out        io.Writer
	closeStore func() error

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	d, err := dispatcher.NewHTTPDispatcher(c.ServerURL,
		dispatcher.WithTimeout(c.RequestTimeout),
		dispatcher.WithLogger(logger.With("component", "dispatcher")),
	)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(ctx, c.CredentialsDB)
	if err != nil {
		logger.Error(ctx, "error initializing credential store", "error", err)
		return nil, err
	}

	a := &App{
		config:     c,
		logger:     logger,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
		closeStore: closeStore,
	}
	a.client = client.New(d, store,
		client.WithLogger(logger),
		client.WithRefreshTimeout(c.RefreshTimeout),
		client.WithSessionEndedHandler(a.sessionEnded),
	)
	return a, nil
}

// openStore keeps credentials in SQLite when path is set, in memory otherwise.
func openStore(ctx context.Context, path string) (credentials.Store, func() error, error) {
	if path == "" {
		return credentials.NewMemoryStore(), func() error { return nil }, nil
	}
	path, err := filex.EnsureParentDir(path)
	if err != nil {
		return nil, nil, err
	}
	db, err := credentials.InitDatabase(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return credentials.NewSQLiteStore(db), db.Close, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.closeStore(); err != nil {
			a.logger.Error(ctx, "error closing credential store", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	_, ok, err := a.client.GetCredential(context.Background())
	return err == nil && ok
}

func (a *App) sessionEnded(reason error) {
	a.println("Session expired, please log in again:", reason)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// checkOnline probes the API once. Any HTTP response, including 401, means
// the server is reachable.
func (a *App) checkOnline(ctx context.Context) {
	res := a.client.Get(ctx, PingPath)
	if f := res.Failure(); f != nil && f.Kind == outcome.TransportFailure {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
