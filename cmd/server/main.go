// Package main is the entry point for the campos API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/compress/gzhttp"

	"campos/internal/config"
	"campos/internal/domain/auth"
	"campos/internal/domain/profitability"
	v1 "campos/internal/infrastructure/http/v1"
	"campos/internal/infrastructure/storage/postgres"
	"campos/internal/infrastructure/storage/postgres/profitability_repo"
	"campos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting campos server", "environment", cfg.Server.Environment)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.DSN)
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns
	poolCfg.MaxConnLifetime = cfg.DB.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.DB.MaxConnIdleTime
	poolCfg.StatementTimeout = cfg.DB.StatementTimeout

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	pool.LogStats(ctx)

	txm := postgres.NewTxManager(pool, cfg.DB.StatementTimeout)

	// --- Profitability ---
	repo := profitability_repo.New(txm)
	profitabilityService := profitability.NewService(repo, repo.Sources(), txm, profitability.ServiceConfig{
		ParallelSources: cfg.Report.ParallelSources,
		MaxFields:       cfg.Report.MaxFields,
	})

	// --- JWT Service ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.AccessTokenTTL,
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		DB:            pool,
		Logger:        log,
		JWTValidator:  jwtService,
		Profitability: profitabilityService,
		Development:   !cfg.Server.IsProduction(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infow("server starting",
			"port", cfg.Server.Port,
			"parallel_sources", cfg.Report.ParallelSources,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
