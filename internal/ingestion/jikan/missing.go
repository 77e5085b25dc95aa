package jikan

import (
	"strings"
	"time"

	"coanime/internal/microservices/http-api/models"
)

// ZeroDateSentinel is how legacy rows spell "no date".
const ZeroDateSentinel = "0000-00-00 00:00:00"

// synopsisPlaceholders are sentences editors left in place of a synopsis.
// Compared lower-cased with trailing dots and ellipses removed.
var synopsisPlaceholders = map[string]bool{
	"sinopsis no disponible":           true,
	"pendiente de agregar sinopsis":    true,
	"sinopsis en proceso":              true,
	"sin sinopsis":                     true,
	"sinopsis pendiente":               true,
	"no hay sinopsis disponible":       true,
	"aún no hay sinopsis":              true,
	"próximamente sinopsis":            true,
	"no synopsis information has been": true,
}

// SynopsisMissing reports whether s is blank or a known placeholder.
func SynopsisMissing(s string) bool {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.TrimRight(k, ".…! ")
	return k == "" || synopsisPlaceholders[k]
}

// TrailerMissing reports whether a trailer should be filled. Trailers never
// apply to the manga family.
func TrailerMissing(t *models.Title, typeToken string) bool {
	if IsMangaType(typeToken) {
		return false
	}
	return strings.TrimSpace(t.TrailerURL) == ""
}

// RatingMissing reports whether the rating is unset or the unrated default.
func RatingMissing(t *models.Title) bool {
	return t.RatingID == nil || *t.RatingID == 0 || *t.RatingID == RatingUnrated
}

// EpisodesMissing reports whether the episode/chapter count is unset or zero.
func EpisodesMissing(t *models.Title) bool {
	return t.Episodies == nil || *t.Episodies <= 0
}

// DateMissing reports whether d is unset or the zero-date sentinel.
func DateMissing(d *time.Time) bool {
	return d == nil || d.IsZero() || d.Year() <= 0
}

// OtherTitlesMissing reports whether the alternate name list is blank.
func OtherTitlesMissing(t *models.Title) bool {
	return strings.TrimSpace(t.OtherTitles) == ""
}

// GenresMissing reports whether no genre is attached. Genres must be loaded.
func GenresMissing(t *models.Title) bool {
	return len(t.Genres) == 0
}

// CoverMissing reports whether no cover asset is attached. Cover must be loaded.
func CoverMissing(t *models.Title) bool {
	return t.Cover == nil || t.Cover.ID == 0
}

// TitleTypeToken resolves the catalog type token of a title, preferring
// the loaded type's slug over the raw type id.
func TitleTypeToken(t *models.Title) (string, bool) {
	if t.Type != nil && t.Type.Slug != "" {
		if token, ok := ExternalTypeForSlug(t.Type.Slug); ok {
			return token, true
		}
	}
	return ExternalTypeForID(t.TypeID)
}

// MissingFields lists the fields of t the reconciler would try to fill.
// Status is not listed: it is kept in sync rather than filled once.
//
// broad_finish only counts once the title is finished; an airing show has
// no end date yet.
func MissingFields(t *models.Title) []string {
	token, _ := TitleTypeToken(t)

	var missing []string
	if SynopsisMissing(t.Sinopsis) {
		missing = append(missing, "sinopsis")
	}
	if TrailerMissing(t, token) {
		missing = append(missing, "trailer_url")
	}
	if RatingMissing(t) {
		missing = append(missing, "rating_id")
	}
	if EpisodesMissing(t) {
		missing = append(missing, "episodies")
	}
	if DateMissing(t.BroadTime) {
		missing = append(missing, "broad_time")
	}
	if t.Status == StatusFinished && DateMissing(t.BroadFinish) {
		missing = append(missing, "broad_finish")
	}
	if OtherTitlesMissing(t) {
		missing = append(missing, "other_titles")
	}
	if GenresMissing(t) {
		missing = append(missing, "genres")
	}
	if CoverMissing(t) {
		missing = append(missing, "cover")
	}
	return missing
}

// NeedsEnrichment reports whether any external-derived field is missing
// and the title's type resolves to a catalog type.
func NeedsEnrichment(t *models.Title) bool {
	if t == nil {
		return false
	}
	if _, ok := TitleTypeToken(t); !ok {
		return false
	}
	return len(MissingFields(t)) > 0
}
