package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"coanime/internal/app"
	"coanime/internal/config"
	"coanime/internal/jobs"
	"coanime/internal/util"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := util.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("could not init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	jobs.RegisterHandlers(a.Queue, a.EnrichHandler())

	logger.Info("enrichment worker started",
		zap.String("task", jobs.TaskEnrichTitle),
		zap.Int("concurrency", cfg.EnrichConcurrency),
	)

	// Run blocks until SIGINT/SIGTERM and drains in-flight jobs.
	if err := a.Queue.Run(); err != nil {
		logger.Error("worker stopped", zap.Error(err))
	}
}
