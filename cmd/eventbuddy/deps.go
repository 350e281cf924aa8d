package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"eventbuddy/config"
	"eventbuddy/internal/adapters/auth"
	"eventbuddy/internal/adapters/email"
	"eventbuddy/internal/domain"
	"eventbuddy/internal/realtime"
	"eventbuddy/internal/repository/memory"
	"eventbuddy/internal/repository/postgres"
	"eventbuddy/internal/services"
)

// app holds everything built from the configuration. close releases it.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	hub    *realtime.Hub

	events      domain.EventRepository
	profiles    domain.UserProfileRepository
	credentials domain.CredentialRepository
	sessions    domain.AuthSessionRepository

	authService    domain.AuthService
	eventService   domain.EventService
	profileService domain.ProfileService
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, config.NewLogger(), nil
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return db, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, hub: realtime.NewHub(logger.With("component", "realtime"))}

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		a.events = memory.NewEventRepository(a.hub, logger)
		a.profiles = memory.NewProfileRepository()
		a.credentials = memory.NewCredentialRepository()
		a.sessions = memory.NewAuthSessionRepository()
	default:
		db, err := openDB(ctx, cfg.DBUrl)
		if err != nil {
			a.hub.Close()
			return nil, err
		}
		a.db = db
		a.events = postgres.NewEventRepository(db, a.hub, logger)
		a.profiles = postgres.NewProfileRepository(db)
		a.credentials = postgres.NewCredentialRepository(db)
		a.sessions = postgres.NewAuthSessionRepository(db)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	tokens := auth.NewJWT(cfg.JWTSecret)
	a.authService = services.NewAuthService(
		a.credentials, a.profiles, a.sessions,
		auth.NewBcryptHasher(cfg.BcryptCost), tokens, tokens,
		emailService, cfg.JWTExpiry, cfg.ContextTimeout, logger,
	)
	a.eventService = services.NewEventService(a.events, a.profiles, cfg.ContextTimeout, logger)
	a.profileService = services.NewProfileService(a.profiles, a.events, cfg.ContextTimeout)
	return a, nil
}

func (a *app) close() {
	a.hub.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
}
