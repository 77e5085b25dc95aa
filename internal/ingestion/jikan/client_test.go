package jikan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seasonBody = `{
  "pagination": {"last_visible_page": 4, "has_next_page": true, "current_page": 2,
                 "items": {"count": 1, "total": 90, "per_page": 25}},
  "data": [{
    "mal_id": 52991,
    "title": "Sousou no Frieren",
    "titles": [{"type": "Default", "title": "Sousou no Frieren"}, {"type": "English", "title": "Frieren: Beyond Journey's End"}],
    "type": "TV",
    "episodes": 28,
    "status": "Finished Airing",
    "aired": {"from": "2023-09-29T00:00:00+00:00", "to": "2024-03-22T00:00:00+00:00"},
    "rating": "PG-13 - Teens 13 or older",
    "synopsis": "An elf mage outlives her party.",
    "trailer": {"youtube_id": "qgQoK1qRyJg", "url": null},
    "images": {"jpg": {"image_url": "https://cdn/x.jpg", "large_image_url": "https://cdn/x-l.jpg"}},
    "genres": [{"mal_id": 2, "type": "anime", "name": "Adventure"}],
    "demographics": [{"mal_id": 27, "type": "anime", "name": "Shounen"}]
  }]
}`

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{BaseURL: url, RatePerSecond: 100, Burst: 10}, nil)
}

func TestClient_GetSeason(t *testing.T) {
	var gotPath, gotPage, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("page")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(seasonBody))
	}))
	defer srv.Close()

	page, err := newTestClient(srv.URL).GetSeason(context.Background(), 2023, "Fall", 2)
	require.NoError(t, err)

	assert.Equal(t, "/seasons/2023/fall", gotPath)
	assert.Equal(t, "2", gotPage)
	assert.Equal(t, "Coanime/1.0", gotAgent)

	assert.True(t, page.Pagination.HasNextPage)
	require.Len(t, page.Data, 1)
	rec := page.Data[0]
	assert.Equal(t, 52991, rec.MalID)
	assert.Equal(t, "tv", rec.TypeToken())
	assert.Equal(t, 28, *rec.Count())
	assert.Equal(t, "https://www.youtube.com/watch?v=qgQoK1qRyJg", rec.TrailerURL())
	assert.Equal(t, "https://cdn/x-l.jpg", rec.CoverURL())
	assert.Equal(t, []string{"Adventure", "Shounen"}, rec.GenreNames())
}

func TestClient_SearchEndpoints(t *testing.T) {
	var paths, types []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		types = append(types, r.URL.Query().Get("type"))
		assert.Equal(t, "Berserk", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"data": [{"mal_id": 2, "title": "Berserk", "type": "Manga"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := context.Background()

	recs, err := c.Search(ctx, "Berserk", "manga")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].MalID)

	_, err = c.Search(ctx, "Berserk", "light novel")
	require.NoError(t, err)
	_, err = c.Search(ctx, "Berserk", "tv")
	require.NoError(t, err)

	assert.Equal(t, []string{"/manga", "/manga", "/anime"}, paths)
	assert.Equal(t, []string{"manga", "lightnovel", "tv"}, types)
}

func TestClient_Unavailable(t *testing.T) {
	t.Run("ServerError", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "upstream down", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).GetSeason(context.Background(), 2024, "spring", 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCatalogUnavailable))

		var unavailable *CatalogUnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.Equal(t, http.StatusInternalServerError, unavailable.StatusCode)
		assert.Equal(t, "upstream down", unavailable.Body)
		assert.Equal(t, 1, calls, "no retries")
	})

	t.Run("BadJSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data": [`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).Search(context.Background(), "x", "tv")
		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	})

	t.Run("Transport", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := newTestClient(url).GetSeason(context.Background(), 2024, "spring", 1)
		var unavailable *CatalogUnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.Zero(t, unavailable.StatusCode)
	})
}
