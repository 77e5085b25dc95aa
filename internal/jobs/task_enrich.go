package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"coanime/internal/ingestion/jikan"
)

// EnrichTitleHandler fills a title's missing fields from its best catalog match.
type EnrichTitleHandler struct {
	store      jikan.TitleStore
	catalog    jikan.Catalog
	reconciler *jikan.Reconciler
	logger     *zap.Logger
}

func NewEnrichTitleHandler(store jikan.TitleStore, catalog jikan.Catalog, reconciler *jikan.Reconciler, logger *zap.Logger) *EnrichTitleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichTitleHandler{
		store:      store,
		catalog:    catalog,
		reconciler: reconciler,
		logger:     logger.Named("enrich-title"),
	}
}

// ProcessTask is safe to run more than once for the same title: a title
// with nothing missing is left alone.
func (h *EnrichTitleHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload EnrichTitlePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal: %v: %w", err, asynq.SkipRetry)
	}
	return h.Enrich(ctx, payload.TitleID)
}

func (h *EnrichTitleHandler) Enrich(ctx context.Context, titleID uint) error {
	log := h.logger.With(zap.Uint("title_id", titleID))

	title, err := h.store.FindByID(ctx, titleID)
	if errors.Is(err, jikan.ErrTitleNotFound) {
		log.Info("title gone, nothing to enrich")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load title %d: %w", titleID, err)
	}

	// may have been fixed by hand since the job was queued
	if !jikan.NeedsEnrichment(title) {
		log.Debug("title complete, skipping")
		return nil
	}

	token, ok := jikan.TitleTypeToken(title)
	if !ok {
		return nil
	}

	candidates, err := h.catalog.Search(ctx, title.Name, token)
	if err != nil {
		return fmt.Errorf("search catalog for %q: %w", title.Name, err)
	}

	match, ok := jikan.SelectMatch(candidates, title.Name, token)
	if !ok {
		log.Info("no catalog match", zap.String("name", title.Name), zap.String("type", token))
		return nil
	}

	report, err := h.reconciler.Reconcile(ctx, title, match, jikan.ReconcileOptions{SuppressTrigger: true})
	if err != nil {
		var parseErr *jikan.FieldParseError
		if errors.As(err, &parseErr) {
			// the same record fails the same way on every retry
			return fmt.Errorf("reconcile title %d: %v: %w", titleID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("reconcile title %d: %w", titleID, err)
	}

	log.Info("title enriched",
		zap.Int("mal_id", match.MalID),
		zap.Strings("fields", report.Changed),
		zap.Bool("cover", report.CoverAttached),
	)
	return nil
}
