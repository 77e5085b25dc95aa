package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"coanime/internal/ingestion/jikan"
	"coanime/internal/microservices/http-api/models"
)

type Enqueuer interface {
	EnqueueUnique(ctx context.Context, taskType string, payload interface{}, uniqueID string, opts ...asynq.Option) (bool, error)
}

// EnrichmentTrigger schedules background enrichment after title writes.
type EnrichmentTrigger struct {
	queue  Enqueuer
	logger *zap.Logger
}

func NewEnrichmentTrigger(queue Enqueuer, logger *zap.Logger) *EnrichmentTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichmentTrigger{queue: queue, logger: logger.Named("enrich-trigger")}
}

// MaybeSchedule enqueues an enrichment job when t still misses catalog
// data and its type maps to a catalog type. It reports whether a new job
// was enqueued; a job already pending for t counts as not enqueued.
func (tr *EnrichmentTrigger) MaybeSchedule(ctx context.Context, t *models.Title) (bool, error) {
	if t == nil || t.ID == 0 || !jikan.NeedsEnrichment(t) {
		return false, nil
	}
	return tr.Schedule(ctx, t.ID)
}

// Schedule enqueues an enrichment job for titleID without checking the title.
func (tr *EnrichmentTrigger) Schedule(ctx context.Context, titleID uint) (bool, error) {
	enqueued, err := tr.queue.EnqueueUnique(ctx, TaskEnrichTitle, EnrichTitlePayload{TitleID: titleID}, EnrichTaskID(titleID), enrichOptions()...)
	if err != nil {
		return false, fmt.Errorf("schedule enrichment for title %d: %w", titleID, err)
	}
	if enqueued {
		tr.logger.Info("enrichment scheduled", zap.Uint("title_id", titleID))
	}
	return enqueued, nil
}

// AfterSave adapts MaybeSchedule to the reconciler hook. Scheduling errors
// are logged; the write that triggered them already succeeded.
func (tr *EnrichmentTrigger) AfterSave(ctx context.Context, t *models.Title) {
	if _, err := tr.MaybeSchedule(ctx, t); err != nil {
		tr.logger.Warn("enrichment not scheduled", zap.Uint("title_id", t.ID), zap.Error(err))
	}
}
