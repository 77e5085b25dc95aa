package jikan

import (
	"context"
	"errors"
	"fmt"

	"coanime/internal/microservices/http-api/models"
)

// --- HELPERS ---

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func uintPtr(u uint) *uint    { return &u }

// --- FAKE STORE ---

type memStore struct {
	titles   map[uint]*models.Title
	nextID   uint
	creates  int
	saves    int
	createFn func(t *models.Title) error
}

func newMemStore(existing ...*models.Title) *memStore {
	s := &memStore{titles: map[uint]*models.Title{}, nextID: 1}
	for _, t := range existing {
		if t.ID == 0 {
			t.ID = s.nextID
		}
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		s.titles[t.ID] = t
	}
	return s
}

func (s *memStore) FindByID(_ context.Context, id uint) (*models.Title, error) {
	t, ok := s.titles[id]
	if !ok {
		return nil, ErrTitleNotFound
	}
	return t, nil
}

func (s *memStore) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	for _, t := range s.titles {
		if t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Create(_ context.Context, t *models.Title) error {
	if s.createFn != nil {
		if err := s.createFn(t); err != nil {
			return err
		}
	}
	s.creates++
	t.ID = s.nextID
	s.nextID++
	s.titles[t.ID] = t
	return nil
}

func (s *memStore) SaveReconciled(_ context.Context, t *models.Title, _ bool) error {
	s.saves++
	s.titles[t.ID] = t
	return nil
}

// --- FAKE CATALOG ---

type fakeCatalog struct {
	pages    map[string]*SeasonPage
	pageErrs map[string]error
	results  []Record
	calls    []string
}

func pageKey(year int, season string, page int) string {
	return fmt.Sprintf("%d/%s/%d", year, season, page)
}

func (c *fakeCatalog) GetSeason(_ context.Context, year int, season string, page int) (*SeasonPage, error) {
	key := pageKey(year, season, page)
	c.calls = append(c.calls, key)
	if err, ok := c.pageErrs[key]; ok {
		return nil, err
	}
	if p, ok := c.pages[key]; ok {
		return p, nil
	}
	return &SeasonPage{}, nil
}

func (c *fakeCatalog) Search(_ context.Context, query, typeToken string) ([]Record, error) {
	c.calls = append(c.calls, "search:"+query+":"+typeToken)
	return c.results, nil
}

// --- FAKE TRANSLATOR / COVERS ---

type prefixTranslator struct {
	prefix string
	err    error
	calls  int
}

func (p *prefixTranslator) Translate(_ context.Context, text string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.prefix + text, nil
}

type fakeCovers struct {
	urls []string
	err  error
}

func (f *fakeCovers) AttachCover(_ context.Context, t *models.Title, imageURL string) (*models.MediaAsset, error) {
	f.urls = append(f.urls, imageURL)
	if f.err != nil {
		return nil, f.err
	}
	return &models.MediaAsset{ID: uint(len(f.urls)), ModelType: "titles", ModelID: t.ID, Collection: models.CollectionCover, SourceURL: imageURL}, nil
}

var errBoom = errors.New("boom")

// fullRecord is a catalog record that can fill every field.
func fullRecord(name, typ string) Record {
	return Record{
		MalID: 5114,
		Images: Images{JPG: ImageSet{
			LargeImageURL: "https://cdn.myanimelist.net/images/anime/1/5114l.jpg",
		}},
		Trailer:       Trailer{YoutubeID: strPtr("abc123")},
		Titles:        []TitleVariant{{Type: "Default", Title: name}, {Type: "English", Title: name + " EN"}, {Type: "Japanese", Title: "名前"}},
		Title:         name,
		Type:          strPtr(typ),
		Episodes:      intPtr(64),
		Status:        "Finished Airing",
		Aired:         &DateRange{From: strPtr("2009-04-05T00:00:00+00:00"), To: strPtr("2010-07-04T00:00:00+00:00")},
		Rating:        strPtr("R - 17+ (violence & profanity)"),
		Synopsis:      strPtr("Two brothers search for a stone."),
		Genres:        []NamedEntry{{Name: "Action"}, {Name: "Drama"}, {Name: "Not A Genre"}},
		Demographics:  []NamedEntry{{Name: "Shounen"}},
	}
}
