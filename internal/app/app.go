// Package app wires the token authority, its persistence and logging into
// a runnable daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voicebridge/lwauth/internal/store"
	"github.com/voicebridge/lwauth/pkg/lwa"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	// rotationHistory is how many rotated refresh tokens are kept in the
	// database as a fallback window.
	rotationHistory = 5
)

// Application encapsulates the lwauthd daemon with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        *store.Store
	authority *lwa.Authority
}

// New creates a new Application instance with all dependencies initialized.
// The authority starts refreshing as soon as New returns successfully.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: newLogger(cfg),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initAuthority(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run blocks until a shutdown signal arrives, then tears everything down.
func (app *Application) Run() error {
	app.logger.Info("lwauthd started", "version", BuildVersion, "endpoint", app.cfg.TokenEndpoint)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sig := <-shutdown
	app.logger.Info("shutdown signal received", "signal", sig.String())

	return app.Shutdown()
}

// Shutdown stops the authority and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down lwauthd...")

	app.authority.Shutdown()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("lwauthd stopped")
	return nil
}

// databaseDSN builds the modernc.org/sqlite connection string. Pragmas use
// the driver's _pragma query form; mattn-style parameters like
// _busy_timeout are silently ignored by this driver.
func databaseDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// initDatabase opens the SQLite store and applies migrations.
func (app *Application) initDatabase() error {
	db, err := store.New(databaseDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initAuthority builds the refresh authority, seeding from the most recent
// persisted rotation when one exists, and registers the observers that log
// transitions and persist rotated tokens.
func (app *Application) initAuthority() error {
	refreshToken := app.cfg.RefreshToken

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	persisted, err := app.db.LatestRefreshToken(ctx)
	switch {
	case err == nil:
		// A rotation from a previous run supersedes the configured seed.
		app.logger.Info("resuming from persisted refresh token")
		refreshToken = persisted
	case errors.Is(err, store.ErrNotFound):
		// First run, use the configured seed.
	default:
		return fmt.Errorf("failed to load persisted refresh token: %w", err)
	}

	authority, err := lwa.New(
		lwa.Config{
			ClientID:      app.cfg.ClientID,
			ClientSecret:  app.cfg.ClientSecret,
			RefreshToken:  refreshToken,
			TokenEndpoint: app.cfg.TokenEndpoint,
			RefreshMargin: app.cfg.RefreshMargin,
			BackoffFloor:  app.cfg.BackoffFloor,
			BackoffCap:    app.cfg.BackoffCap,
		},
		lwa.NewHTTPPoster(),
		lwa.WithLogger(app.logger),
		lwa.WithTokenUpdateFunc(app.persistRotation),
	)
	if err != nil {
		return fmt.Errorf("failed to create token authority: %w", err)
	}
	app.authority = authority

	authority.AddObserver(&stateLogger{logger: app.logger})
	return nil
}

// persistRotation stores each rotated refresh token. Runs on the
// authority's refresh goroutine, so failures are logged rather than
// propagated; the in-memory token remains in use either way.
func (app *Application) persistRotation(refreshToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.db.SaveRefreshToken(ctx, refreshToken, time.Now()); err != nil {
		app.logger.Error("failed to persist rotated refresh token", "error", err)
		return
	}
	if err := app.db.PruneRefreshTokens(ctx, rotationHistory); err != nil {
		app.logger.Error("failed to prune refresh token history", "error", err)
	}
}

// stateLogger logs every authority transition.
type stateLogger struct {
	logger *slog.Logger
}

func (l *stateLogger) OnAuthStateChange(state lwa.State) {
	switch {
	case state.Terminal():
		l.logger.Error("authorization permanently failed, re-provision credentials",
			"state", state.String())
	case state == lwa.StateExpired:
		l.logger.Warn("access token expired before refresh", "state", state.String())
	default:
		l.logger.Info("authorization state", "state", state.String())
	}
}
