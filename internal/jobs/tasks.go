package jobs

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

type EnrichTitlePayload struct {
	TitleID uint `json:"title_id"`
}

// EnrichTaskID is the deterministic task id that keeps at most one
// enrichment job per title in the queue.
func EnrichTaskID(titleID uint) string {
	return fmt.Sprintf("%s:%d", TaskEnrichTitle, titleID)
}

func enrichOptions() []asynq.Option {
	return []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(2 * time.Minute),
	}
}

// RegisterHandlers wires every task handler into the queue.
func RegisterHandlers(q *Queue, enrich *EnrichTitleHandler) {
	q.RegisterHandler(TaskEnrichTitle, enrich)
}
