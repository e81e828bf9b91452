package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"studydash/internal/auth"
	"studydash/internal/config"
	"studydash/internal/dashboard"
	httpserver "studydash/internal/http"
	"studydash/internal/jobs"
	"studydash/internal/store"
	"studydash/internal/ui"
)

func main() {
	log.Println("Starting studydash server...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("failed to create db pool: %v", err)
	}
	defer pool.Close()

	stor := store.New(pool)
	if err := stor.Migrate(ctx); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	sessionManager := auth.NewSessionManager([]byte(cfg.Session.Secret), cfg.SecureCookies())
	authService, err := auth.NewService(ctx, cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.RedirectURL(), sessionManager, stor)
	if err != nil {
		log.Fatalf("failed to initialize auth service: %v", err)
	}

	dashService := dashboard.New(cfg.Location, cfg.StudyCalendarName, nil)
	uiHandler := ui.NewHandler(cfg, authService, dashService, nil)

	cleanup := jobs.NewSessionCleanup(stor)
	if err := cleanup.Start(); err != nil {
		log.Fatalf("failed to start session cleanup: %v", err)
	}
	defer cleanup.Stop()

	r := httpserver.NewRouter(cfg, stor, authService, uiHandler)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
