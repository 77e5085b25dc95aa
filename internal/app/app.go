// Package app wires the shared dependencies of the coanime commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coanime/database"
	"coanime/internal/config"
	"coanime/internal/ingestion/jikan"
	"coanime/internal/jobs"
	"coanime/internal/media"
	"coanime/internal/microservices/http-api/repository"
	"coanime/internal/translate"
)

// App holds the long-lived clients shared by the sync CLI, the enrichment
// worker and the admin API.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	DB    *gorm.DB
	Redis *redis.Client
	Queue *jobs.Queue

	Titles     *repository.TitleRepo
	Runs       *repository.SyncRunRepo
	Catalog    *jikan.Client
	Reconciler *jikan.Reconciler
	Sync       *jikan.SyncService
	Trigger    *jobs.EnrichmentTrigger
}

// New connects to Postgres and Redis and builds the enrichment pipeline.
// Titles created or reconciled through App.Reconciler schedule enrichment
// through the queue.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Setup(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  rdb,
		Titles: repository.NewTitleRepo(db),
		Runs:   repository.NewSyncRunRepo(db),
	}

	a.Queue = jobs.NewQueue(jobs.QueueConfig{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		Concurrency:   cfg.EnrichConcurrency,
	}, logger)
	a.Trigger = jobs.NewEnrichmentTrigger(a.Queue, logger)

	a.Catalog = jikan.NewClient(jikan.ClientConfig{
		BaseURL:       cfg.JikanAPIURL,
		RatePerSecond: cfg.JikanRatePerSecond,
		Timeout:       cfg.JikanHTTPTimeout,
	}, logger)

	translator, err := newTranslator(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	library := media.NewLibrary(media.Config{
		Root: filepath.Clean(cfg.MediaPath),
	}, repository.NewMediaRepo(db), logger)

	a.Reconciler = jikan.NewReconciler(a.Titles, translator, jikan.NewCoverAttacher(library), logger)
	a.Reconciler.SetAfterSave(a.Trigger.AfterSave)

	a.Sync = jikan.NewSyncService(a.Catalog, a.Titles, a.Reconciler, jikan.SyncConfig{
		PagesPerSeason: cfg.SyncPagesPerSeason,
		Locker:         jikan.NewSyncLock(rdb, jikan.DefaultSyncLockKey, cfg.SyncLockTTL),
		Runs:           a.Runs,
	}, logger)

	return a, nil
}

// EnrichHandler builds the asynq handler for enrich:title jobs.
func (a *App) EnrichHandler() *jobs.EnrichTitleHandler {
	return jobs.NewEnrichTitleHandler(a.Titles, a.Catalog, a.Reconciler, a.Logger)
}

// Close releases every connection. It is safe to call on a partially built App.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			a.Logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func newTranslator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (jikan.Translator, error) {
	if !cfg.TranslationEnabled() {
		logger.Info("GEMINI_API_KEY not set, synopses are stored untranslated")
		return translate.Passthrough{}, nil
	}
	t, err := translate.NewGeminiTranslator(ctx, translate.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Target:  cfg.TranslateTarget,
		Timeout: 30 * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}
	return t, nil
}
