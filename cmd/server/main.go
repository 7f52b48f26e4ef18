package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kewo/kewo-rechner/internal/config"
	"github.com/kewo/kewo-rechner/internal/db"
	"github.com/kewo/kewo-rechner/internal/logging"
	"github.com/kewo/kewo-rechner/internal/migrations"
	"github.com/kewo/kewo-rechner/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	for _, warning := range cfg.Warnings() {
		logger.Warn("config warning", zap.String("warning", warning))
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if purger, ok := store.(session.Purger); ok {
		go session.RunSweeper(ctx, purger, session.SweepInterval(cfg.SessionTTL), logger)
	}

	srv := newServer(store, cfg.SessionSecret, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", httpServer.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("session_backend", cfg.SessionBackend),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore builds the configured session backend and returns a cleanup func.
func openStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil

	case config.BackendRedis:
		store := session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		database, err := db.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(ctx, database); err != nil {
			_ = database.Close()
			return nil, nil, err
		}
		return session.NewSQLiteStore(database, cfg.SessionTTL), func() { _ = database.Close() }, nil
	}
}
