package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"google.golang.org/genai"

	"upilens/internal/backend"
	"upilens/internal/cache"
	"upilens/internal/categorize"
	"upilens/internal/cli"
	apphttp "upilens/internal/http"
	"upilens/internal/log"
	"upilens/internal/rag"
	"upilens/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	result, err := backend.Build(cfg, logger)
	if err != nil {
		logger.Error("failed to build backend", log.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	categorizer, err := loadCategorizer(cfg.RulesPath)
	if err != nil {
		logger.Error("failed to load category rules", log.FieldError, err)
		os.Exit(1)
	}

	ingest := services.NewIngestService(result.Store, categorizer, result.AMQP)

	// The question pipeline is optional: without an API key the
	// dashboard still works, only /api/ask is disabled.
	var answerer apphttp.Answerer
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			logger.Error("failed to initialize Gemini client", log.FieldError, err)
			os.Exit(1)
		}
		embedCache := cache.NewLRUCache[[]float32](2048, 24*time.Hour)
		answerCache := cache.NewLRUCache[rag.Answer](256, 10*time.Minute)
		embed := rag.NewGeminiEmbedder(client, cfg.EmbedModel, embedCache)
		gen := rag.NewGenerator(client, cfg.GeminiModel)
		answerer = rag.NewPipeline(rag.Config{
			IndexDir: cfg.IndexDir,
			TopK:     cfg.TopK,
			FinalK:   cfg.FinalK,
		}, result.Store, embed, gen, answerCache, logger)
		logger.Info("question answering enabled", "model", cfg.GeminiModel)
	} else {
		logger.Warn("GEMINI_API_KEY not set, question answering disabled")
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           ":" + cfg.Port,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, result.Store, ingest, answerer, logger)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("starting upilens server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}

func loadCategorizer(rulesPath string) (*categorize.Categorizer, error) {
	if rulesPath == "" {
		return categorize.NewDefault(), nil
	}
	rules, err := categorize.LoadRuleset(rulesPath)
	if err != nil {
		return nil, err
	}
	return categorize.New(rules), nil
}
