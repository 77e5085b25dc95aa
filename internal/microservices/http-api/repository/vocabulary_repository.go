package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"coanime/internal/microservices/http-api/models"
)

// VocabularyRepo reads the seeded genre and title type tables.
type VocabularyRepo struct {
	db *gorm.DB
}

func NewVocabularyRepo(db *gorm.DB) *VocabularyRepo {
	return &VocabularyRepo{db: db}
}

func (r *VocabularyRepo) Genres(ctx context.Context) ([]models.Genre, error) {
	var list []models.Genre
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return list, nil
}

func (r *VocabularyRepo) Types(ctx context.Context) ([]models.TitleType, error) {
	var list []models.TitleType
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get title types: %w", err)
	}
	return list, nil
}
