package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"AllocDesk/internal/usecase"
	pkgch "AllocDesk/pkg/clickhouse"
	"AllocDesk/pkg/config"
	xhttp "AllocDesk/pkg/http"
	applogger "AllocDesk/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP server plus the
// history sinks that need an orderly close on shutdown.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	history    *usecase.History
	chClient   *pkgch.Client
	httpServer *xhttp.Server
	log        *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	history *usecase.History,
	chClient *pkgch.Client,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		handler:  handler,
		history:  history,
		chClient: chClient,
		log:      log,
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops the server and closes the history sinks.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.history != nil {
		a.history.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
