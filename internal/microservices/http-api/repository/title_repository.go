package repository

import (
	"context"
	"fmt"
	"strings"

	"coanime/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

// genreRows keeps association writes to the join table; genres are seeded
// and never created through a title.
const genreRows = "Genres.*"

// withRelations preloads everything the reconciler's missingness checks read.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Type").
		Preload("Genres").
		Preload("Cover", "collection = ?", models.CollectionCover)
}

// likeEscaper makes % and _ in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns the ILIKE pattern matching q anywhere.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

func (r *TitleRepo) GetAll(ctx context.Context, page, pageSize int, query string) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Title{})
	if q := strings.TrimSpace(query); q != "" {
		p := containsPattern(q)
		db = db.Where(`name ILIKE ? ESCAPE '\' OR other_titles ILIKE ? ESCAPE '\' OR slug ILIKE ? ESCAPE '\'`, p, p, p)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize

	if err := withRelations(db).
		Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *TitleRepo) FindByID(ctx context.Context, id uint) (*models.Title, error) {
	var t models.Title
	if err := withRelations(r.db.WithContext(ctx)).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// ExistsBySlug reports whether any live title of any type uses slug.
func (r *TitleRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return count > 0, nil
}

// Create inserts the title and its genre links. A (slug, type_id) collision
// returns an error matching ErrDuplicateKey.
func (r *TitleRepo) Create(ctx context.Context, t *models.Title) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		genres := t.Genres
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		if len(genres) > 0 {
			if err := tx.Model(t).Omit(genreRows).Association("Genres").Replace(genres); err != nil {
				return fmt.Errorf("link genres: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create title: %w", translate(err))
	}
	return nil
}

// SaveReconciled writes the title columns and optionally replaces the whole
// genre set in one transaction.
func (r *TitleRepo) SaveReconciled(ctx context.Context, t *models.Title, replaceGenres bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return err
		}
		if replaceGenres {
			if err := tx.Model(t).Omit(genreRows).Association("Genres").Replace(t.Genres); err != nil {
				return fmt.Errorf("replace genres: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save title: %w", translate(err))
	}
	return nil
}

// Delete soft-deletes the title.
func (r *TitleRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete title: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
