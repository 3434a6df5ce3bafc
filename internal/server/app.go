// Package server wires the record store: it opens the configured storage
// backend, serves the records API over HTTP and the health service over
// gRPC, and shuts both down gracefully on SIGINT, SIGTERM or SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/xtbe/arcbp-editor/internal/logging"
	"github.com/xtbe/arcbp-editor/internal/server/config"
	"github.com/xtbe/arcbp-editor/internal/server/httpapi"
	"github.com/xtbe/arcbp-editor/internal/server/store"

	gs "github.com/xtbe/arcbp-editor/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repo       store.Repository
	closeStore func() error
	httpServer *http.Server
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSON(os.Stdout, slog.LevelInfo))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repo, closeStore, err := store.Open(ctx, c.StoreDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	h := httpapi.NewHandler(repo, httpapi.Options{
		Collection: c.Collection,
		MaxPerPage: c.MaxPerPage,
	}, logger)

	app := &App{
		config:     c,
		logger:     logger,
		repo:       repo,
		closeStore: closeStore,
		httpServer: &http.Server{Addr: c.HTTPAddr, Handler: h.Routes()},
	}
	if c.GRPCAddr != "" {
		app.grpcServer = gs.NewGRPCServer(c.GRPCAddr, logger)
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server",
		"address", app.config.HTTPAddr,
		"collection", app.config.Collection,
		"store", app.config.StoreDriver,
	)

	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.grpcServer.SetServing(true)
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled, or a listener fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.closeStore(); err != nil {
		app.logger.Error(ctx, "close store", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
