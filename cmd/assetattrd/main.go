// Package main is the entry point for the asset attribute catalog server.
// It wires all dependencies together and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pitabwire/assetattr/internal/catalog"
	"github.com/pitabwire/assetattr/internal/config"
	"github.com/pitabwire/assetattr/internal/observability"
	"github.com/pitabwire/assetattr/internal/openapi"
	"github.com/pitabwire/assetattr/internal/preference"
	"github.com/pitabwire/assetattr/internal/seed"
	"github.com/pitabwire/assetattr/internal/transport"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Step 1: Parse CLI flags and the optional .env file.
	configPath := flag.String("config", "", "path to configuration file (defaults only when empty)")
	envPath := flag.String("env", ".env", "path to a dotenv file; missing files are ignored")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "env file error: %v\n", err)
		return 1
	}

	// Step 2: Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	// Step 3: Initialize telemetry (logger, tracer, metrics).
	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "assetattrd", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.InitMetrics(reg)

	// Step 4: Load the API document.
	api, err := openapi.Load()
	if err != nil {
		logger.Error("API document load failed", zap.Error(err))
		return 1
	}

	// Step 5: Load and validate seed data, then build the catalog.
	def, err := seed.Load(cfg.Seed.Directories)
	if err != nil {
		var verrs *seed.ValidationErrors
		if errors.As(err, &verrs) {
			for _, ve := range verrs.Errors {
				logger.Error("seed validation error", zap.String("path", ve.Path), zap.String("error", ve.Message))
			}
		}
		logger.Error("seed loading failed", zap.Error(err))
		return 1
	}

	store, err := catalog.NewStore(def,
		catalog.WithLogger(logger.Named("catalog")),
		catalog.WithRecorder(metrics),
	)
	if err != nil {
		logger.Error("catalog initialization failed", zap.Error(err))
		return 1
	}

	// Step 6: Open the preference backend.
	kv, closeKV, err := preference.Open(ctx, cfg.Preferences)
	if err != nil {
		logger.Error("preference store initialization failed", zap.Error(err))
		return 1
	}
	defer closeKV()
	prefs := preference.New(kv,
		preference.WithLogger(logger.Named("preference")),
		preference.WithRecorder(metrics),
	)

	// Step 7: Build HTTP router.
	router := transport.NewRouter(transport.Dependencies{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Preferences: prefs,
		API:         api,
		Metrics:     metrics,
		Gatherer:    reg,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Step 8: Start HTTP server.
	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("seed_checksum", def.Checksum),
		zap.Int("attributes", len(def.Attributes)),
		zap.Int("categories", len(def.Categories)),
		zap.Int("manufacturers", len(def.Manufacturers)),
		zap.String("preference_driver", cfg.Preferences.Driver),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	// Graceful shutdown sequence.
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Flush telemetry.
	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete", zap.Uint64("catalog_version", store.Version()))
	return 0
}
