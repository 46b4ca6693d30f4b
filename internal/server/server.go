// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

// Package server assembles the application: configuration, database,
// services, routes and the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"github.com/hexago/unimatch/internal/config"
	"github.com/hexago/unimatch/internal/database"
	"github.com/hexago/unimatch/internal/handlers"
	"github.com/hexago/unimatch/internal/i18n"
	"github.com/hexago/unimatch/internal/repository"
	"github.com/hexago/unimatch/internal/services/account"
	"github.com/hexago/unimatch/internal/services/mailer"
	"github.com/hexago/unimatch/internal/services/matching"
	"github.com/hexago/unimatch/internal/services/session"
	"github.com/hexago/unimatch/internal/view"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run inside Open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository and services
	repo := repository.New(db)
	accounts := account.NewService(repo)
	sessions := session.NewService(repo, cfg.Auth.SessionTTL)
	matches := matching.NewService(repo, cfg.Matching.RecommendationsPath)
	mail := mailer.NewService(&cfg.SMTP, cfg.Server.BaseURL)
	cookies := handlers.NewSessionCookie(&cfg.Auth)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := view.New()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	e.Renderer = renderer

	setupMiddleware(e)

	h := handlers.New(repo, accounts, sessions, matches, mail, cookies)
	h.Register(e)

	// Expired sessions are treated as absent by reads; the sweep just
	// keeps the table from growing without bound.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, repo)

	return startWithGracefulShutdown(ctx, e, cfg)
}

func sweepSessions(ctx context.Context, repo *repository.Repository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpiredSessions(ctx); err != nil {
				slog.Warn("session_sweep_failed", "error", err)
			}
		}
	}
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
