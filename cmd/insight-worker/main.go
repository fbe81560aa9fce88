package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/work4inventions/financeInsight/internal/amqp"
	"github.com/work4inventions/financeInsight/internal/config"
	"github.com/work4inventions/financeInsight/internal/export"
	"github.com/work4inventions/financeInsight/internal/export/sheets"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/storage"
	"github.com/work4inventions/financeInsight/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting insight-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker reads the same SQLite database the web server writes
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err, log.FieldDBPath, cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize ledger exporter", log.FieldError, err)
		os.Exit(1)
	}
	if exporter == nil {
		logger.Info("Ledger export disabled, no GOOGLE_SPREADSHEET_ID provided")
		<-ctx.Done()
		return
	}
	logger.Info("Ledger exporter initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	exportWorker := worker.NewExportWorker(repo, exporter, logger, cfg.ExportBatchSize)

	g, gctx := errgroup.WithContext(ctx)

	// Fast path: mutation events from the web server
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeTransactionEvents(gctx, exportWorker.HandleEvent)
		})
	} else {
		logger.Info("AMQP disabled, relying on the periodic export sweep only")
	}

	// Catch-up path: periodic sweep of rows the event path missed
	g.Go(func() error {
		return exportWorker.Run(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// newExporter builds the Sheets exporter from configuration. It returns
// (nil, nil) when no spreadsheet is configured.
func newExporter(ctx context.Context, cfg *config.Config) (export.Exporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, nil
	}

	clientJSON, err := readCredential(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("load OAuth client config: %w", err)
	}
	tokenJSON, err := readCredential(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("load OAuth token: %w", err)
	}

	if clientJSON != nil && tokenJSON != nil {
		return sheets.NewOAuth(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, clientJSON, tokenJSON)
	}
	return sheets.NewFromEnv(ctx)
}

// readCredential prefers the inline JSON value and falls back to the file.
func readCredential(inline, file string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if file == "" {
		return nil, nil
	}
	return os.ReadFile(file)
}
