// Package main implements bridged, the asset bridge daemon. It serves the
// bridge REST API and runs the background transfer sweeper.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	app "github.com/R3E-Network/bridge_layer/internal/app"
	"github.com/R3E-Network/bridge_layer/internal/app/httpapi"
	"github.com/R3E-Network/bridge_layer/internal/app/metrics"
	"github.com/R3E-Network/bridge_layer/internal/app/storage/postgres"
	"github.com/R3E-Network/bridge_layer/internal/config"
	"github.com/R3E-Network/bridge_layer/internal/middleware"
	"github.com/R3E-Network/bridge_layer/internal/platform/migrations"
	"github.com/R3E-Network/bridge_layer/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	auditPath := flag.String("audit-log", "", "path to JSONL audit log file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewDefault("bridged").WithError(err).Fatal("load configuration")
	}

	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := app.Deps{}
	if cfg.Database.Driver == "postgres" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.WithError(err).Fatal("open database")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.WithError(err).Fatal("ping database")
		}
		if err := migrations.Apply(ctx, db); err != nil {
			log.WithError(err).Fatal("apply migrations")
		}
		deps.Store = postgres.New(db)
		log.Info("using postgres storage")
	} else {
		log.Info("using in-memory storage")
	}

	application, err := app.New(ctx, cfg, deps, log)
	if err != nil {
		log.WithError(err).Fatal("build application")
	}

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Fatal("start application")
	}

	handler, err := httpapi.NewHandler(application.Bridge, log, *auditPath)
	if err != nil {
		log.WithError(err).Fatal("build http handler")
	}

	skipAuth := []string{"/health", "/metrics"}
	auth := middleware.NewAuth(cfg.Auth.JWTSecret, log, skipAuth)
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, log)
	limiter.StartCleanup(time.Minute)

	chain := middleware.RequestID(auth.Handler(limiter.Handler(metrics.InstrumentHandler(handler))))

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("bridge API listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("application stop")
	}

	log.Info("bridge daemon stopped")
}
