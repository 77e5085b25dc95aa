package repository

import (
	"context"
	"fmt"

	"coanime/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MediaRepo struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) *MediaRepo {
	return &MediaRepo{db: db}
}

// UpsertAsset stores the single asset of (model_type, model_id, collection),
// replacing the previous row if any.
func (r *MediaRepo) UpsertAsset(ctx context.Context, a *models.MediaAsset) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_type"}, {Name: "model_id"}, {Name: "collection"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"file_name", "path", "mime_type", "size", "source_url", "updated_at",
		}),
	}).Create(a).Error
	if err != nil {
		return fmt.Errorf("upsert media asset: %w", err)
	}
	return nil
}
