// Package server initializes and runs the reference API server. It picks a
// storage backend, runs migrations, starts the HTTP server and the expired
// token janitor, and shuts everything down on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/supportdesk/internal/logging"
	"github.com/dmitrijs2005/supportdesk/internal/server/config"
	"github.com/dmitrijs2005/supportdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/supportdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/supportdesk/internal/server/services"
	"github.com/gin-gonic/gin"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	userService *services.UserService
	httpServer  *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.Verbose)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rm, err := openRepositories(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	if !c.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	us := services.NewUserService(rm, c)
	hs := httpapi.NewServer(c.EndpointAddr, logger, us)

	return &App{config: c, logger: logger, repomanager: rm, userService: us, httpServer: hs}, nil
}

// openRepositories selects PostgreSQL when dsn is set and in-memory storage
// otherwise.
func openRepositories(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
	if dsn == "" {
		return repomanager.NewInMemoryRepositoryManager(), nil
	}
	db, err := repomanager.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return repomanager.NewPostgresRepositoryManager(db), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startJanitor purges expired refresh tokens every CleanupInterval until ctx
// is done.
func (app *App) startJanitor(ctx context.Context) {
	if app.config.CleanupInterval <= 0 {
		return
	}

	ticker := time.NewTicker(app.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.cleanup(ctx)
		}
	}
}

func (app *App) cleanup(ctx context.Context) {
	n, err := app.userService.CleanupExpired(ctx)
	if err != nil {
		app.logger.Error(ctx, "refresh token cleanup failed", "error", err)
		return
	}
	if n > 0 {
		app.logger.Info(ctx, "expired refresh tokens removed", "count", n)
	}
}

// Run blocks until ctx is cancelled or a signal arrives, then waits for the
// HTTP server and the janitor to stop and closes the storage.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startJanitor(ctx)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
