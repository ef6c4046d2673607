package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/config"
	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/core"
	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/databricks"
	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/logging"
	"github.com/bkuan/databrick-apps-csv-uploader-app/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.EffectiveLevel(), cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_file_size", cfg.Upload.MaxFileSize,
		"history_limit", cfg.Upload.HistoryLimit,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	service := core.NewService(core.ServiceOptions{
		MaxFileSize:  cfg.Upload.MaxFileSize,
		HistoryLimit: cfg.Upload.HistoryLimit,
		SampleRows:   cfg.Upload.SampleRows,
		SessionTTL:   cfg.Upload.SessionTTL,
	})

	// The workspace client is optional: without DATABRICKS_HOST the editor
	// still runs, and upload/execute requests fail with a config error.
	var remote *databricks.Client
	if cfg.Databricks.Host != "" {
		remote, err = databricks.NewClient(databricks.Config{
			Host:              cfg.Databricks.Host,
			Token:             cfg.Databricks.Token,
			ClientID:          cfg.Databricks.ClientID,
			ClientSecret:      cfg.Databricks.ClientSecret,
			WarehouseHTTPPath: cfg.Databricks.WarehouseHTTPPath,
			Timeout:           cfg.Databricks.Timeout,
			MaxConcurrent:     cfg.Databricks.MaxConcurrent,
		})
		if err != nil {
			slog.Error("failed to create Databricks client", "error", err)
			os.Exit(1)
		}
		slog.Info("Databricks workspace configured",
			"host", cfg.Databricks.Host,
			"catalog", cfg.Databricks.Catalog,
			"schema", cfg.Databricks.Schema,
			"volume", cfg.Databricks.Volume,
		)
	} else {
		slog.Warn("no Databricks workspace configured; upload and execute are disabled")
	}

	server := web.NewServer(service, remote, cfg)

	// Background sweep of idle edit sessions
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionSweeper(jobCtx, cfg.Upload.SweepInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
