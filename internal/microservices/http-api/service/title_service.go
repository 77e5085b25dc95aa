package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"coanime/internal/ingestion/jikan"
	"coanime/internal/microservices/http-api/dto"
	"coanime/internal/microservices/http-api/models"
	"coanime/internal/microservices/http-api/repository"
)

var (
	ErrTitleNotFound  = errors.New("title not found")
	ErrTitleConflict  = errors.New("a title with this slug and type already exists")
	ErrNotEnrichable  = errors.New("title type has no catalog equivalent")
	ErrInvalidPayload = errors.New("invalid payload")
)

// TitleRepository is the persistence the title service needs.
type TitleRepository interface {
	GetAll(ctx context.Context, page, pageSize int, query string) ([]models.Title, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	SaveReconciled(ctx context.Context, t *models.Title, replaceGenres bool) error
	Delete(ctx context.Context, id uint) error
}

// EnrichmentScheduler queues catalog enrichment for titles.
type EnrichmentScheduler interface {
	MaybeSchedule(ctx context.Context, t *models.Title) (bool, error)
	Schedule(ctx context.Context, titleID uint) (bool, error)
}

type TitleService interface {
	List(ctx context.Context, page, pageSize int, query string) ([]dto.TitleResponse, int64, error)
	Get(ctx context.Context, id uint) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id uint) error
	// Enrich queues an enrichment job now, regardless of missing fields.
	Enrich(ctx context.Context, id uint) (bool, error)
}

type titleService struct {
	repo      TitleRepository
	scheduler EnrichmentScheduler
	logger    *zap.Logger
}

func NewTitleService(repo TitleRepository, scheduler EnrichmentScheduler, logger *zap.Logger) TitleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &titleService{repo: repo, scheduler: scheduler, logger: logger.Named("title-service")}
}

func (s *titleService) List(ctx context.Context, page, pageSize int, query string) ([]dto.TitleResponse, int64, error) {
	titles, total, err := s.repo.GetAll(ctx, page, pageSize, strings.TrimSpace(query))
	if err != nil {
		return nil, 0, err
	}
	return dto.FromTitles(titles), total, nil
}

func (s *titleService) Get(ctx context.Context, id uint) (*dto.TitleResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromTitle(t)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	t, err := req.ToModel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := prepareTitle(t); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.Info("title created", zap.Uint("title_id", t.ID), zap.String("slug", t.Slug))

	return s.afterWrite(ctx, t.ID)
}

func (s *titleService) Update(ctx context.Context, id uint, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	replaceGenres, err := req.ApplyTo(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := prepareTitle(t); err != nil {
		return nil, err
	}

	if err := s.repo.SaveReconciled(ctx, t, replaceGenres); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.Info("title updated", zap.Uint("title_id", t.ID))

	return s.afterWrite(ctx, t.ID)
}

func (s *titleService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

func (s *titleService) Enrich(ctx context.Context, id uint) (bool, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return false, err
	}
	if _, ok := jikan.TitleTypeToken(t); !ok {
		return false, ErrNotEnrichable
	}
	return s.scheduler.Schedule(ctx, t.ID)
}

// afterWrite reloads the saved title with its relations, so missingness sees
// genres and cover, and hands it to the enrichment trigger. Scheduling
// failures never fail the write.
func (s *titleService) afterWrite(ctx context.Context, id uint) (*dto.TitleResponse, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.scheduler != nil {
		if _, err := s.scheduler.MaybeSchedule(ctx, t); err != nil {
			s.logger.Warn("enrichment scheduling failed", zap.Uint("title_id", id), zap.Error(err))
		}
	}

	resp := dto.FromTitle(t)
	return &resp, nil
}

func (s *titleService) find(ctx context.Context, id uint) (*models.Title, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return t, nil
}

// prepareTitle validates t and derives its slug from the name, so a rename
// moves the slug the batch sync dedupes on.
func prepareTitle(t *models.Title) error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPayload)
	}
	t.Slug = jikan.GenerateSlug(t.Name)
	if t.Slug == "" {
		return fmt.Errorf("%w: name %q has no characters usable in a slug", ErrInvalidPayload, t.Name)
	}
	if !knownType(t.TypeID) {
		return fmt.Errorf("%w: unknown type_id %d", ErrInvalidPayload, t.TypeID)
	}
	if t.Status != "" && !jikan.ValidStatus(t.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, t.Status)
	}
	for _, id := range t.GenreIDs() {
		if !jikan.KnownGenreID(id) {
			return fmt.Errorf("%w: unknown genre id %d", ErrInvalidPayload, id)
		}
	}
	if t.Episodies != nil && *t.Episodies < 0 {
		return fmt.Errorf("%w: episodies must not be negative", ErrInvalidPayload)
	}
	if t.BroadTime != nil && t.BroadFinish != nil && t.BroadFinish.Before(*t.BroadTime) {
		return fmt.Errorf("%w: broad_finish is before broad_time", ErrInvalidPayload)
	}
	return nil
}

func knownType(id uint) bool {
	for _, s := range jikan.TypeSeeds {
		if s.ID == id {
			return true
		}
	}
	return false
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTitleNotFound
	case repository.IsDuplicateKey(err):
		return ErrTitleConflict
	default:
		return err
	}
}
