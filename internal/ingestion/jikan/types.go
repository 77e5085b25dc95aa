package jikan

import "strings"

// ============================================
// API RESPONSE STRUCTURES
// ============================================

// SeasonPage is one page of GET /seasons/{year}/{season}.
type SeasonPage struct {
	Pagination Pagination `json:"pagination"`
	Data       []Record   `json:"data"`
}

// SearchResponse is the body of GET /anime and GET /manga.
type SearchResponse struct {
	Pagination Pagination `json:"pagination"`
	Data       []Record   `json:"data"`
}

// Pagination contains paging metadata
type Pagination struct {
	LastVisiblePage int             `json:"last_visible_page"`
	HasNextPage     bool            `json:"has_next_page"`
	CurrentPage     int             `json:"current_page"`
	Items           PaginationItems `json:"items"`
}

// PaginationItems contains item counts
type PaginationItems struct {
	Count   int `json:"count"`
	Total   int `json:"total"`
	PerPage int `json:"per_page"`
}

// Record is a single anime or manga entry. Anime and manga share most fields;
// the ones that differ (episodes/chapters, aired/published) are both present
// and read through accessors.
type Record struct {
	MalID         int            `json:"mal_id"`
	URL           string         `json:"url"`
	Images        Images         `json:"images"`
	Trailer       Trailer        `json:"trailer"`
	Titles        []TitleVariant `json:"titles"`
	Title         string         `json:"title"`
	TitleEnglish  *string        `json:"title_english"`
	TitleJapanese *string        `json:"title_japanese"`
	Type          *string        `json:"type"`
	Episodes      *int           `json:"episodes"`
	Chapters      *int           `json:"chapters"`
	Status        string         `json:"status"`
	Aired         *DateRange     `json:"aired"`
	Published     *DateRange     `json:"published"`
	Rating        *string        `json:"rating"`
	Synopsis      *string        `json:"synopsis"`
	Season        *string        `json:"season"`
	Year          *int           `json:"year"`
	Genres        []NamedEntry   `json:"genres"`
	ExplicitGenre []NamedEntry   `json:"explicit_genres"`
	Themes        []NamedEntry   `json:"themes"`
	Demographics  []NamedEntry   `json:"demographics"`
}

// TitleVariant is one localized or alternative title
type TitleVariant struct {
	Type  string `json:"type"` // Default, Synonym, Japanese, English, ...
	Title string `json:"title"`
}

// Images groups image URLs by format
type Images struct {
	JPG  ImageSet `json:"jpg"`
	WebP ImageSet `json:"webp"`
}

// ImageSet contains image URLs by size
type ImageSet struct {
	ImageURL      string `json:"image_url"`
	SmallImageURL string `json:"small_image_url"`
	LargeImageURL string `json:"large_image_url"`
}

// Trailer contains trailer links (anime only)
type Trailer struct {
	YoutubeID *string `json:"youtube_id"`
	URL       *string `json:"url"`
	EmbedURL  *string `json:"embed_url"`
}

// DateRange is the aired/published interval
type DateRange struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// NamedEntry is a genre, theme or demographic reference
type NamedEntry struct {
	MalID int    `json:"mal_id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
}

// ============================================
// ACCESSORS
// ============================================

// TypeToken returns the lower-cased media type ("tv", "light novel"), or "" when absent.
func (r *Record) TypeToken() string {
	if r.Type == nil {
		return ""
	}
	return normalize(*r.Type)
}

// Count returns the episode count for anime and the chapter count for manga.
func (r *Record) Count() *int {
	if r.Episodes != nil {
		return r.Episodes
	}
	return r.Chapters
}

// Dates returns the aired range for anime and the published range for manga.
func (r *Record) Dates() DateRange {
	if r.Aired != nil {
		return *r.Aired
	}
	if r.Published != nil {
		return *r.Published
	}
	return DateRange{}
}

// SynopsisText returns the synopsis or "".
func (r *Record) SynopsisText() string {
	if r.Synopsis == nil {
		return ""
	}
	return strings.TrimSpace(*r.Synopsis)
}

// RatingText returns the rating string or "".
func (r *Record) RatingText() string {
	if r.Rating == nil {
		return ""
	}
	return *r.Rating
}

// TrailerURL returns the trailer URL or "".
func (r *Record) TrailerURL() string {
	if r.Trailer.URL != nil && *r.Trailer.URL != "" {
		return *r.Trailer.URL
	}
	if r.Trailer.YoutubeID != nil && *r.Trailer.YoutubeID != "" {
		return "https://www.youtube.com/watch?v=" + *r.Trailer.YoutubeID
	}
	return ""
}

// CoverURL returns the largest JPG image, falling back to WebP.
func (r *Record) CoverURL() string {
	for _, u := range []string{
		r.Images.JPG.LargeImageURL,
		r.Images.JPG.ImageURL,
		r.Images.WebP.LargeImageURL,
		r.Images.WebP.ImageURL,
	} {
		if u != "" {
			return u
		}
	}
	return ""
}

// GenreNames returns genres, explicit genres, themes and demographics.
func (r *Record) GenreNames() []string {
	names := make([]string, 0, len(r.Genres)+len(r.ExplicitGenre)+len(r.Themes)+len(r.Demographics))
	for _, group := range [][]NamedEntry{r.Genres, r.ExplicitGenre, r.Themes, r.Demographics} {
		for _, g := range group {
			names = append(names, g.Name)
		}
	}
	return names
}

// PrimaryTitle returns the default title, falling back to the first "Default" variant.
func (r *Record) PrimaryTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	for _, v := range r.Titles {
		if v.Type == "Default" {
			return strings.TrimSpace(v.Title)
		}
	}
	return ""
}
