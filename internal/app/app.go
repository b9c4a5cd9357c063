package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"salachat/internal/config"
	"salachat/internal/core"
	transporthttp "salachat/internal/transport/http"
)

// App wires together the hub and the transport layer.
type App struct {
	server          *stdhttp.Server
	hub             *core.Hub
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	hub := core.NewHub(logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		hub:             hub,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
}

// Run starts the hub and the HTTP server and blocks until context
// cancellation or a fatal listen error.
func (a *App) Run(ctx context.Context) error {
	// The hub outlives ctx slightly so connections can still deregister
	// while the HTTP server drains.
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	serverErr := make(chan error, 1)
	go func() {
		err := a.server.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			// Hijacked chat connections are not drained by Shutdown; force
			// them closed once the timeout expires.
			a.log.Warn().Err(err).Msg("graceful shutdown incomplete, closing server")
			_ = a.server.Close()
		}
		return <-serverErr
	}
}
