package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/codewinder/contests/internal/aggregate"
	"github.com/codewinder/contests/internal/config"
	"github.com/codewinder/contests/internal/metrics"
	"github.com/codewinder/contests/internal/server"
	"github.com/codewinder/contests/internal/source"
	"github.com/codewinder/contests/internal/store"
)

func main() {
	cfgPath := flag.String("config", "config.yml", "Path to YAML config file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the config")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load env file", "path", *envFile, "error", err)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		slog.Error("build logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := store.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.CreateSchema(db); err != nil {
		return err
	}
	logger.Info("database schema ready", "driver", cfg.Database.Driver)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sources, err := source.NewFromConfig(cfg.Sources, logger)
	if err != nil {
		return fmt.Errorf("build sources: %w", err)
	}
	coord := aggregate.New(logger, m, sources...)

	metricsPath := ""
	if cfg.Metrics.Enabled() {
		metricsPath = cfg.Metrics.Path
	}
	srv := server.New(server.Options{
		Server:      cfg.Server,
		AdminKey:    cfg.Admin.Key,
		MetricsPath: metricsPath,
		Gatherer:    reg,
	}, coord, store.New(db, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", cfg.Server.ListenAddress, "sources", len(sources))
		errCh <- srv.Serve()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
