package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coanime/internal/ingestion/jikan"
	"coanime/internal/microservices/http-api/models"
)

type memTitles struct {
	titles map[uint]*models.Title
	saves  int
}

func (m *memTitles) FindByID(_ context.Context, id uint) (*models.Title, error) {
	t, ok := m.titles[id]
	if !ok {
		return nil, jikan.ErrTitleNotFound
	}
	return t, nil
}

func (m *memTitles) ExistsBySlug(context.Context, string) (bool, error) { return false, nil }

func (m *memTitles) Create(context.Context, *models.Title) error { return nil }

func (m *memTitles) SaveReconciled(_ context.Context, t *models.Title, _ bool) error {
	m.saves++
	m.titles[t.ID] = t
	return nil
}

type stubCatalog struct {
	results []jikan.Record
	err     error
	queries []string
}

func (s *stubCatalog) GetSeason(context.Context, int, string, int) (*jikan.SeasonPage, error) {
	return &jikan.SeasonPage{}, nil
}

func (s *stubCatalog) Search(_ context.Context, query, typeToken string) ([]jikan.Record, error) {
	s.queries = append(s.queries, query+"|"+typeToken)
	return s.results, s.err
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func fooRecord(typ string) jikan.Record {
	return jikan.Record{
		MalID:    77,
		Title:    "Foo",
		Type:     strp(typ),
		Episodes: intp(12),
		Status:   "Currently Airing",
		Synopsis: strp("A story."),
		Rating:   strp("PG-13 - Teens 13 or older"),
		Genres:   []jikan.NamedEntry{{Name: "Comedy"}},
	}
}

func enrichTask(t *testing.T, id uint) *asynq.Task {
	data, err := json.Marshal(EnrichTitlePayload{TitleID: id})
	require.NoError(t, err)
	return asynq.NewTask(TaskEnrichTitle, data)
}

type handlerFixture struct {
	store   *memTitles
	catalog *stubCatalog
	hooks   int
	handler *EnrichTitleHandler
}

func newHandlerFixture(titles ...*models.Title) *handlerFixture {
	f := &handlerFixture{store: &memTitles{titles: map[uint]*models.Title{}}, catalog: &stubCatalog{}}
	for _, t := range titles {
		f.store.titles[t.ID] = t
	}
	reconciler := jikan.NewReconciler(f.store, nil, nil, nil)
	reconciler.SetAfterSave(func(context.Context, *models.Title) { f.hooks++ })
	f.handler = NewEnrichTitleHandler(f.store, f.catalog, reconciler, nil)
	return f
}

func TestEnrichTitle_ReconcilesWithoutRetriggering(t *testing.T) {
	f := newHandlerFixture(incompleteTitle(5))
	f.catalog.results = []jikan.Record{fooRecord("Movie"), fooRecord("TV")}

	require.NoError(t, f.handler.ProcessTask(context.Background(), enrichTask(t, 5)))

	assert.Equal(t, []string{"Foo|tv"}, f.catalog.queries)
	assert.Equal(t, 1, f.store.saves)
	assert.Zero(t, f.hooks)

	title := f.store.titles[5]
	assert.Equal(t, "A story.", title.Sinopsis)
	assert.Equal(t, jikan.StatusAiring, title.Status)
	assert.Equal(t, 12, *title.Episodies)
	assert.Equal(t, []uint{6}, title.GenreIDs())
}

func TestEnrichTitle_Noops(t *testing.T) {
	t.Run("TitleGone", func(t *testing.T) {
		f := newHandlerFixture()
		assert.NoError(t, f.handler.ProcessTask(context.Background(), enrichTask(t, 404)))
		assert.Empty(t, f.catalog.queries)
	})

	t.Run("NoMatch", func(t *testing.T) {
		f := newHandlerFixture(incompleteTitle(5))
		f.catalog.results = []jikan.Record{fooRecord("Movie")}
		assert.NoError(t, f.handler.ProcessTask(context.Background(), enrichTask(t, 5)))
		assert.Zero(t, f.store.saves)
	})

	t.Run("UntypedTitle", func(t *testing.T) {
		title := incompleteTitle(5)
		title.TypeID = 99
		f := newHandlerFixture(title)
		assert.NoError(t, f.handler.ProcessTask(context.Background(), enrichTask(t, 5)))
		assert.Empty(t, f.catalog.queries)
	})

	t.Run("RunningTwiceIsIdempotent", func(t *testing.T) {
		f := newHandlerFixture(incompleteTitle(5))
		f.catalog.results = []jikan.Record{fooRecord("TV")}
		ctx := context.Background()

		require.NoError(t, f.handler.ProcessTask(ctx, enrichTask(t, 5)))
		require.NoError(t, f.handler.ProcessTask(ctx, enrichTask(t, 5)))
		assert.Equal(t, 1, f.store.saves)
	})
}

func TestEnrichTitle_Errors(t *testing.T) {
	t.Run("CatalogUnavailableIsRetried", func(t *testing.T) {
		f := newHandlerFixture(incompleteTitle(5))
		f.catalog.err = &jikan.CatalogUnavailableError{Endpoint: "/anime", StatusCode: 503}

		err := f.handler.ProcessTask(context.Background(), enrichTask(t, 5))
		assert.ErrorIs(t, err, jikan.ErrCatalogUnavailable)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("BadPayloadSkipsRetry", func(t *testing.T) {
		f := newHandlerFixture()
		err := f.handler.ProcessTask(context.Background(), asynq.NewTask(TaskEnrichTitle, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("ParseFailureSkipsRetry", func(t *testing.T) {
		f := newHandlerFixture(incompleteTitle(5))
		rec := fooRecord("TV")
		rec.Aired = &jikan.DateRange{From: strp("someday")}
		f.catalog.results = []jikan.Record{rec}

		err := f.handler.ProcessTask(context.Background(), enrichTask(t, 5))
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Zero(t, f.store.saves)
	})
}
