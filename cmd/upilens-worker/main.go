package main

import (
	"context"
	"errors"
	"os"
	"time"

	"google.golang.org/genai"

	"upilens/internal/amqp"
	"upilens/internal/cache"
	"upilens/internal/cli"
	"upilens/internal/log"
	"upilens/internal/rag"
	"upilens/internal/storage"
	"upilens/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("starting upilens-worker")

	if cfg.GeminiAPIKey == "" {
		logger.Error("GEMINI_API_KEY is required for the index worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize sqlite repository",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize amqp client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Error("failed to initialize Gemini client", log.FieldError, err)
		os.Exit(1)
	}

	embedCache := cache.NewLRUCache[[]float32](8192, 24*time.Hour)
	embed := rag.NewGeminiEmbedder(genaiClient, cfg.EmbedModel, embedCache)

	w := worker.NewIndexWorker(worker.Config{
		IndexDir:      cfg.IndexDir,
		BatchSize:     cfg.IndexBatchSize,
		SweepInterval: cfg.ReindexInterval,
	}, repo, amqpClient, embed, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// pick up anything ingested while the worker was down
	if err := w.Sweep(ctx); err != nil {
		logger.Error("startup sweep failed", log.FieldError, err)
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
