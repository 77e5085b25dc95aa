package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coanime/internal/ingestion/jikan"
	"coanime/internal/microservices/http-api/dto"
	"coanime/internal/microservices/http-api/models"
	"coanime/internal/microservices/http-api/repository"
)

type MockTitleRepo struct {
	mock.Mock
}

func (m *MockTitleRepo) GetAll(ctx context.Context, page, pageSize int, query string) ([]models.Title, int64, error) {
	args := m.Called(ctx, page, pageSize, query)
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleRepo) FindByID(ctx context.Context, id uint) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepo) Create(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	if args.Error(0) == nil {
		t.ID = 42
	}
	return args.Error(0)
}

func (m *MockTitleRepo) SaveReconciled(ctx context.Context, t *models.Title, replaceGenres bool) error {
	args := m.Called(ctx, t, replaceGenres)
	return args.Error(0)
}

func (m *MockTitleRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) MaybeSchedule(ctx context.Context, t *models.Title) (bool, error) {
	args := m.Called(ctx, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduler) Schedule(ctx context.Context, titleID uint) (bool, error) {
	args := m.Called(ctx, titleID)
	return args.Bool(0), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestTitleService_CreateSchedulesEnrichment(t *testing.T) {
	repo := new(MockTitleRepo)
	sched := new(MockScheduler)
	svc := NewTitleService(repo, sched, nil)

	saved := &models.Title{Name: "Mushishi", Slug: "mushishi", TypeID: jikan.TypeTV}
	saved.ID = 42

	repo.On("Create", mock.Anything, mock.MatchedBy(func(t *models.Title) bool {
		return t.Slug == "mushishi" && len(t.Genres) == 2
	})).Return(nil)
	repo.On("FindByID", mock.Anything, uint(42)).Return(saved, nil)
	sched.On("MaybeSchedule", mock.Anything, saved).Return(true, nil)

	resp, err := svc.Create(context.Background(), dto.CreateTitleDTO{
		Name:     " Mushishi ",
		TypeID:   jikan.TypeTV,
		GenreIDs: []uint{1, 2},
	})

	require.NoError(t, err)
	assert.Equal(t, uint(42), resp.ID)
	assert.Equal(t, "mushishi", resp.Slug)
	repo.AssertExpectations(t)
	sched.AssertExpectations(t)
}

func TestTitleService_CreateValidation(t *testing.T) {
	repo := new(MockTitleRepo)
	sched := new(MockScheduler)
	svc := NewTitleService(repo, sched, nil)

	_, err := svc.Create(context.Background(), dto.CreateTitleDTO{Name: "X", TypeID: 999})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = svc.Create(context.Background(), dto.CreateTitleDTO{Name: "X", TypeID: jikan.TypeTV, BroadTime: strPtr("yesterday")})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = svc.Create(context.Background(), dto.CreateTitleDTO{
		Name: "X", TypeID: jikan.TypeTV,
		BroadTime: strPtr("2020-05-01"), BroadFinish: strPtr("2020-01-01"),
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitleService_CreateConflict(t *testing.T) {
	repo := new(MockTitleRepo)
	sched := new(MockScheduler)
	svc := NewTitleService(repo, sched, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(errors.Join(repository.ErrDuplicateKey, errors.New("23505")))

	_, err := svc.Create(context.Background(), dto.CreateTitleDTO{Name: "Mushishi", TypeID: jikan.TypeTV})
	assert.ErrorIs(t, err, ErrTitleConflict)
	sched.AssertNotCalled(t, "MaybeSchedule", mock.Anything, mock.Anything)
}

func TestTitleService_SchedulingFailureDoesNotFailWrite(t *testing.T) {
	repo := new(MockTitleRepo)
	sched := new(MockScheduler)
	svc := NewTitleService(repo, sched, nil)

	saved := &models.Title{Name: "Mushishi", Slug: "mushishi", TypeID: jikan.TypeTV}
	saved.ID = 42
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindByID", mock.Anything, uint(42)).Return(saved, nil)
	sched.On("MaybeSchedule", mock.Anything, saved).Return(false, errors.New("redis down"))

	resp, err := svc.Create(context.Background(), dto.CreateTitleDTO{Name: "Mushishi", TypeID: jikan.TypeTV})
	require.NoError(t, err)
	assert.Equal(t, uint(42), resp.ID)
}

func TestTitleService_Update(t *testing.T) {
	repo := new(MockTitleRepo)
	sched := new(MockScheduler)
	svc := NewTitleService(repo, sched, nil)

	existing := &models.Title{Name: "Old", Slug: "old", TypeID: jikan.TypeTV, Genres: []models.Genre{{ID: 3}}}
	existing.ID = 7

	repo.On("FindByID", mock.Anything, uint(7)).Return(existing, nil)
	repo.On("SaveReconciled", mock.Anything, existing, true).Return(nil)
	sched.On("MaybeSchedule", mock.Anything, existing).Return(false, nil)

	genres := []uint{}
	resp, err := svc.Update(context.Background(), 7, dto.UpdateTitleDTO{
		Sinopsis: strPtr("Una historia."),
		GenreIDs: &genres,
	})

	require.NoError(t, err)
	assert.Equal(t, "Una historia.", resp.Sinopsis)
	assert.Empty(t, existing.Genres)
	repo.AssertExpectations(t)
	sched.AssertExpectations(t)
}

func TestTitleService_UpdateKeepsGenresWhenAbsent(t *testing.T) {
	repo := new(MockTitleRepo)
	sched := new(MockScheduler)
	svc := NewTitleService(repo, sched, nil)

	existing := &models.Title{Name: "Old", Slug: "old", TypeID: jikan.TypeTV}
	existing.ID = 7
	repo.On("FindByID", mock.Anything, uint(7)).Return(existing, nil)
	repo.On("SaveReconciled", mock.Anything, existing, false).Return(nil)
	sched.On("MaybeSchedule", mock.Anything, existing).Return(true, nil)

	_, err := svc.Update(context.Background(), 7, dto.UpdateTitleDTO{Name: strPtr("New")})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTitleService_RenameRegeneratesSlug(t *testing.T) {
	repo := new(MockTitleRepo)
	sched := new(MockScheduler)
	svc := NewTitleService(repo, sched, nil)

	existing := &models.Title{Name: "Viejo", Slug: "viejo", TypeID: jikan.TypeTV}
	existing.ID = 7
	repo.On("FindByID", mock.Anything, uint(7)).Return(existing, nil)
	repo.On("SaveReconciled", mock.Anything, mock.MatchedBy(func(t *models.Title) bool {
		return t.Slug == "nuevo-titulo"
	}), false).Return(nil)
	sched.On("MaybeSchedule", mock.Anything, existing).Return(false, nil)

	resp, err := svc.Update(context.Background(), 7, dto.UpdateTitleDTO{Name: strPtr("Nuevo Título")})

	require.NoError(t, err)
	assert.Equal(t, "nuevo-titulo", resp.Slug)
	repo.AssertExpectations(t)
}

func TestTitleService_RejectsValuesOutsideVocabulary(t *testing.T) {
	tests := []struct {
		name string
		in   dto.CreateTitleDTO
	}{
		{"unknown status", dto.CreateTitleDTO{Name: "Mushishi", TypeID: jikan.TypeTV, Status: strPtr("Finished Airing")}},
		{"unknown genre", dto.CreateTitleDTO{Name: "Mushishi", TypeID: jikan.TypeTV, GenreIDs: []uint{1, 9999}}},
		{"name without slug characters", dto.CreateTitleDTO{Name: "蟲師", TypeID: jikan.TypeTV}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTitleRepo)
			svc := NewTitleService(repo, new(MockScheduler), nil)

			_, err := svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestTitleService_UpdateRejectsUnknownGenre(t *testing.T) {
	repo := new(MockTitleRepo)
	svc := NewTitleService(repo, new(MockScheduler), nil)

	existing := &models.Title{Name: "Mushishi", Slug: "mushishi", TypeID: jikan.TypeTV, Status: jikan.StatusFinished}
	existing.ID = 7
	repo.On("FindByID", mock.Anything, uint(7)).Return(existing, nil)

	genres := []uint{9999}
	_, err := svc.Update(context.Background(), 7, dto.UpdateTitleDTO{GenreIDs: &genres})

	assert.ErrorIs(t, err, ErrInvalidPayload)
	repo.AssertNotCalled(t, "SaveReconciled", mock.Anything, mock.Anything, mock.Anything)
}

func TestTitleService_NotFound(t *testing.T) {
	repo := new(MockTitleRepo)
	svc := NewTitleService(repo, new(MockScheduler), nil)

	repo.On("FindByID", mock.Anything, uint(9)).Return(nil, repository.ErrNotFound)
	repo.On("Delete", mock.Anything, uint(9)).Return(repository.ErrNotFound)

	_, err := svc.Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrTitleNotFound)

	_, err = svc.Update(context.Background(), 9, dto.UpdateTitleDTO{})
	assert.ErrorIs(t, err, ErrTitleNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), 9), ErrTitleNotFound)
}

func TestTitleService_Enrich(t *testing.T) {
	repo := new(MockTitleRepo)
	sched := new(MockScheduler)
	svc := NewTitleService(repo, sched, nil)

	tv := &models.Title{Name: "Mushishi", TypeID: jikan.TypeTV}
	tv.ID = 1
	novel := &models.Title{Name: "Kino", TypeID: 999}
	novel.ID = 2

	repo.On("FindByID", mock.Anything, uint(1)).Return(tv, nil)
	repo.On("FindByID", mock.Anything, uint(2)).Return(novel, nil)
	sched.On("Schedule", mock.Anything, uint(1)).Return(true, nil)

	queued, err := svc.Enrich(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, queued)

	_, err = svc.Enrich(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotEnrichable)
}
