package main

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

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/harvest/internal/app"
	"github.com/MrJamesThe3rd/harvest/internal/config"
	harvestHttp "github.com/MrJamesThe3rd/harvest/internal/http"
	advanceHandler "github.com/MrJamesThe3rd/harvest/internal/http/advance"
	collectionHandler "github.com/MrJamesThe3rd/harvest/internal/http/collection"
	matchingHandler "github.com/MrJamesThe3rd/harvest/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/harvest/internal/http/report"
	statementHandler "github.com/MrJamesThe3rd/harvest/internal/http/statement"
	webhookHandler "github.com/MrJamesThe3rd/harvest/internal/http/webhook"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	scheduler, err := a.Scheduler()
	if err != nil {
		slog.Error("invalid collections schedule", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("scheduler stopped", "error", err)
		}
	}()

	router := harvestHttp.New(harvestHttp.Handlers{
		Advances:    advanceHandler.NewHandler(a.Advances, a.Collections),
		Collections: collectionHandler.NewHandler(a.Runner, a.Dispatcher, a.Collections, cfg.Location()),
		Reports:     reportHandler.NewHandler(a.Aging, cfg.Location()),
		Webhooks:    webhookHandler.NewHandler(a.Webhooks),
		Statements:  statementHandler.NewHandler(a.Statements),
		Matching:    matchingHandler.NewHandler(a.Matching),
	}, harvestHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		JWTSecret:   cfg.Server.JWTSecret,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
