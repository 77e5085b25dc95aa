package repository

import (
	"context"
	"fmt"

	"coanime/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type SyncRunRepo struct {
	db *gorm.DB
}

func NewSyncRunRepo(db *gorm.DB) *SyncRunRepo {
	return &SyncRunRepo{db: db}
}

func (r *SyncRunRepo) RecordRun(ctx context.Context, run *models.SyncRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record sync run: %w", err)
	}
	return nil
}

func (r *SyncRunRepo) Recent(ctx context.Context, limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	if err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}
