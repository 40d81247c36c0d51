package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/analysis"
	"bilancio/internal/backend"
	"bilancio/internal/config"
	"bilancio/internal/export"
	"bilancio/internal/openrouter"
	"bilancio/internal/summary"
	"bilancio/internal/worker"
)

func main() {
	// Load .env for local development; ignore errors in production.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting bilancio-worker")

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", "error", err)
		os.Exit(1)
	}

	st, cleanup, err := backend.Open(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		PostgresURL:  cfg.DatabaseURL,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}()
	}

	chatClient, err := openrouter.NewClient(openrouter.Config{
		BaseURL:      cfg.OpenRouterBaseURL,
		APIKey:       cfg.OpenRouterAPIKey,
		DefaultModel: cfg.OpenRouterModel,
	})
	if err != nil {
		logger.Error("Failed to initialize completion client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sheets export is optional.
	var exporter worker.SummaryExporter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsExporter, err := export.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheetsExporter
		logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	summaries := summary.NewService(st, st)
	generator := analysis.NewGenerator(chatClient, st, cfg.OpenRouterModel)
	analysisWorker := worker.NewAnalysisWorker(summaries, generator, exporter)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Keep consuming until shutdown; on a broken channel wait the
		// configured interval before reconnecting.
		for {
			err := amqpClient.ConsumeAnalysisRequests(gctx, analysisWorker.HandleRequest)
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("Message consumption failed, retrying", "error", err, "retry_in", cfg.AnalysisInterval)

			select {
			case <-gctx.Done():
				return nil
			case <-time.After(cfg.AnalysisInterval):
			}
		}
	})

	logger.Info("Worker ready", "queue", cfg.AMQPQueue, "model", cfg.OpenRouterModel)

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
