package dto

import (
	"fmt"
	"strings"
	"time"

	"coanime/internal/microservices/http-api/models"
)

const dateLayout = "2006-01-02"

// CreateTitleDTO used for POST /api/titles
type CreateTitleDTO struct {
	Name        string  `json:"name" binding:"required"`
	TypeID      uint    `json:"type_id" binding:"required"`
	OtherTitles *string `json:"other_titles,omitempty"`
	Sinopsis    *string `json:"sinopsis,omitempty"`
	TrailerURL  *string `json:"trailer_url,omitempty"`
	RatingID    *uint   `json:"rating_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	Episodies   *int    `json:"episodies,omitempty"`
	BroadTime   *string `json:"broad_time,omitempty"`   // YYYY-MM-DD
	BroadFinish *string `json:"broad_finish,omitempty"` // YYYY-MM-DD
	GenreIDs    []uint  `json:"genre_ids,omitempty"`
}

// UpdateTitleDTO used for PUT /api/titles/:id (partial updates allowed)
type UpdateTitleDTO struct {
	Name        *string `json:"name,omitempty"`
	TypeID      *uint   `json:"type_id,omitempty"`
	OtherTitles *string `json:"other_titles,omitempty"`
	Sinopsis    *string `json:"sinopsis,omitempty"`
	TrailerURL  *string `json:"trailer_url,omitempty"`
	RatingID    *uint   `json:"rating_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	Episodies   *int    `json:"episodies,omitempty"`
	BroadTime   *string `json:"broad_time,omitempty"`
	BroadFinish *string `json:"broad_finish,omitempty"`
	// GenreIDs replaces the genre set when present, an empty list clears it.
	GenreIDs *[]uint `json:"genre_ids,omitempty"`
}

// TitleResponse DTO for responses
type TitleResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Type        string     `json:"type,omitempty"`
	TypeID      uint       `json:"type_id"`
	OtherTitles string     `json:"other_titles,omitempty"`
	Sinopsis    string     `json:"sinopsis,omitempty"`
	TrailerURL  string     `json:"trailer_url,omitempty"`
	RatingID    *uint      `json:"rating_id,omitempty"`
	Status      string     `json:"status,omitempty"`
	Episodies   *int       `json:"episodies,omitempty"`
	BroadTime   *string    `json:"broad_time,omitempty"`
	BroadFinish *string    `json:"broad_finish,omitempty"`
	MalID       *int       `json:"mal_id,omitempty"`
	Genres      []GenreRef `json:"genres"`
	CoverPath   *string    `json:"cover_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type GenreRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Converters

// ToModel builds an unsaved title. The slug is derived by the service.
func (d CreateTitleDTO) ToModel() (*models.Title, error) {
	t := &models.Title{
		Name:      strings.TrimSpace(d.Name),
		TypeID:    d.TypeID,
		RatingID:  d.RatingID,
		Episodies: d.Episodies,
	}
	if d.OtherTitles != nil {
		t.OtherTitles = *d.OtherTitles
	}
	if d.Sinopsis != nil {
		t.Sinopsis = *d.Sinopsis
	}
	if d.TrailerURL != nil {
		t.TrailerURL = *d.TrailerURL
	}
	if d.Status != nil {
		t.Status = *d.Status
	}

	var err error
	if t.BroadTime, err = parseDate("broad_time", d.BroadTime); err != nil {
		return nil, err
	}
	if t.BroadFinish, err = parseDate("broad_finish", d.BroadFinish); err != nil {
		return nil, err
	}

	for _, id := range d.GenreIDs {
		t.Genres = append(t.Genres, models.Genre{ID: id})
	}
	return t, nil
}

// ApplyTo copies the supplied fields onto t and reports whether the genre
// set was replaced.
func (d UpdateTitleDTO) ApplyTo(t *models.Title) (bool, error) {
	if d.Name != nil {
		t.Name = strings.TrimSpace(*d.Name)
	}
	if d.TypeID != nil {
		t.TypeID = *d.TypeID
		t.Type = nil
	}
	if d.OtherTitles != nil {
		t.OtherTitles = *d.OtherTitles
	}
	if d.Sinopsis != nil {
		t.Sinopsis = *d.Sinopsis
	}
	if d.TrailerURL != nil {
		t.TrailerURL = *d.TrailerURL
	}
	if d.RatingID != nil {
		t.RatingID = d.RatingID
	}
	if d.Status != nil {
		t.Status = *d.Status
	}
	if d.Episodies != nil {
		t.Episodies = d.Episodies
	}
	if d.BroadTime != nil {
		v, err := parseDate("broad_time", d.BroadTime)
		if err != nil {
			return false, err
		}
		t.BroadTime = v
	}
	if d.BroadFinish != nil {
		v, err := parseDate("broad_finish", d.BroadFinish)
		if err != nil {
			return false, err
		}
		t.BroadFinish = v
	}

	if d.GenreIDs == nil {
		return false, nil
	}
	t.Genres = make([]models.Genre, 0, len(*d.GenreIDs))
	for _, id := range *d.GenreIDs {
		t.Genres = append(t.Genres, models.Genre{ID: id})
	}
	return true, nil
}

func FromTitle(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		TypeID:      t.TypeID,
		OtherTitles: t.OtherTitles,
		Sinopsis:    t.Sinopsis,
		TrailerURL:  t.TrailerURL,
		RatingID:    t.RatingID,
		Status:      t.Status,
		Episodies:   t.Episodies,
		BroadTime:   formatDate(t.BroadTime),
		BroadFinish: formatDate(t.BroadFinish),
		MalID:       t.MalID,
		Genres:      make([]GenreRef, 0, len(t.Genres)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Type != nil {
		resp.Type = t.Type.Name
	}
	for _, g := range t.Genres {
		resp.Genres = append(resp.Genres, GenreRef{ID: g.ID, Name: g.Name, Slug: g.Slug})
	}
	if t.Cover != nil && t.Cover.ID != 0 {
		path := t.Cover.Path
		resp.CoverPath = &path
	}
	return resp
}

func FromTitles(ts []models.Title) []TitleResponse {
	out := make([]TitleResponse, 0, len(ts))
	for i := range ts {
		out = append(out, FromTitle(&ts[i]))
	}
	return out
}

func parseDate(field string, v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, strings.TrimSpace(*v))
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD", field)
	}
	return &d, nil
}

func formatDate(d *time.Time) *string {
	if d == nil || d.IsZero() {
		return nil
	}
	s := d.Format(dateLayout)
	return &s
}
