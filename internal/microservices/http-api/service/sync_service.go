package service

import (
	"context"

	"coanime/internal/ingestion/jikan"
	"coanime/internal/microservices/http-api/models"
)

// SingleSyncer runs one explicit season page.
type SingleSyncer interface {
	RunSingleSync(ctx context.Context, year int, season string, page int) (*jikan.SyncResult, error)
}

type SyncRunLister interface {
	Recent(ctx context.Context, limit int) ([]models.SyncRun, error)
}

type SyncService interface {
	RunSingle(ctx context.Context, year int, season string, page int) (*jikan.SyncResult, error)
	RecentRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
}

type syncService struct {
	syncer SingleSyncer
	runs   SyncRunLister
}

func NewSyncService(syncer SingleSyncer, runs SyncRunLister) SyncService {
	return &syncService{syncer: syncer, runs: runs}
}

func (s *syncService) RunSingle(ctx context.Context, year int, season string, page int) (*jikan.SyncResult, error) {
	if page < 1 {
		page = 1
	}
	return s.syncer.RunSingleSync(ctx, year, season, page)
}

func (s *syncService) RecentRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runs.Recent(ctx, limit)
}
