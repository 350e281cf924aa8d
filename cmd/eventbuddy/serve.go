package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"eventbuddy/internal/adapters/calendar"
	delivery "eventbuddy/internal/delivery/http"
	"eventbuddy/internal/delivery/http/controllers"
	"eventbuddy/internal/repository/postgres"
	"eventbuddy/migrations"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Apply pending migrations before serving (postgres storage only)."},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()

			if a.db != nil {
				if c.Bool("migrate") {
					if _, err := migrations.Apply(ctx, a.db, logger); err != nil {
						return err
					}
				}
				listener := postgres.NewListener(cfg.DBUrl, a.hub, logger.With("component", "listener"))
				go func() {
					if err := listener.Run(ctx); err != nil {
						logger.Error("event listener stopped", "error", err)
					}
				}()
			}

			sessions := controllers.NewSessionController(logger, a.profileService)
			sessions.OnLookupFailure = func(uid string, err error) {
				logger.Error("admin resolution failed, caller treated as non-admin", "uid", uid, "error", err)
			}
			handler := delivery.NewHandler(delivery.RouterConfig{
				Logger:   logger,
				Auth:     a.authService,
				Accounts: controllers.NewAuthController(logger, a.authService),
				Session:  sessions,
				Events:   controllers.NewEventController(logger, a.eventService, calendar.NewFeed("EventBuddy")),
				Streams:  controllers.NewStreamController(logger, a.eventService),
				Users:    controllers.NewUserController(logger, a.profileService),
			}, cfg.CORSAllowedOrigins)

			// Request contexts end when shutdown starts so live streams let go.
			baseCtx, cancelBase := context.WithCancel(context.Background())
			defer cancelBase()
			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return baseCtx },
			}
			srv.RegisterOnShutdown(cancelBase)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment, "storage", cfg.Storage)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down: %w", err)
			}
			return nil
		},
	}
}
