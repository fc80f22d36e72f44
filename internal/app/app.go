package app

import (
	"context"
	"errors"
	stdhttp "net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/pollchat-server/internal/admin"
	"github.com/vovakirdan/pollchat-server/internal/config"
	"github.com/vovakirdan/pollchat-server/internal/core"
	"github.com/vovakirdan/pollchat-server/internal/dispatch"
	"github.com/vovakirdan/pollchat-server/internal/transport"
)

// App wires the registry, dispatcher, and both listeners into one
// explicit object; all server state hangs off it instead of package
// globals.
type App struct {
	cfg        config.Config
	log        *zerolog.Logger
	registry   *core.Registry
	dispatcher *dispatch.Dispatcher
	chat       *transport.Server
	admin      *stdhttp.Server
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	registry := core.NewRegistry()
	handler := transport.NewHandler(registry, cfg.ConnTimeout, logger)
	dispatcher := dispatch.New(cfg.Workers, cfg.QueueCapacity, handler.Handle, logger)

	return &App{
		cfg:        cfg,
		log:        logger,
		registry:   registry,
		dispatcher: dispatcher,
		chat:       transport.NewServer(cfg.ChatAddr, dispatcher, logger),
		admin:      admin.NewServer(cfg.AdminAddr, registry, dispatcher, logger),
	}
}

// Run starts the worker pool and both servers, blocking until the
// context is cancelled or a listener fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.chat.Listen(); err != nil {
		return err
	}

	a.dispatcher.Start()
	defer a.dispatcher.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.chat.Serve(ctx)
	})

	g.Go(func() error {
		a.log.Info().Str("addr", a.cfg.AdminAddr).Msg("admin server listening")
		if err := a.admin.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down admin server")
		return a.admin.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
