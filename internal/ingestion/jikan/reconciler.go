package jikan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"coanime/internal/microservices/http-api/models"
)

// TitleStore persists titles. FindByID must load Type, Genres and Cover.
type TitleStore interface {
	FindByID(ctx context.Context, id uint) (*models.Title, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, t *models.Title) error
	// SaveReconciled writes the title's columns and, when replaceGenres is
	// set, replaces its genre set, as one transaction.
	SaveReconciled(ctx context.Context, t *models.Title, replaceGenres bool) error
}

// Translator localizes synopsis text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// CoverStore attaches a cover image to a saved title.
type CoverStore interface {
	AttachCover(ctx context.Context, t *models.Title, imageURL string) (*models.MediaAsset, error)
}

// AfterSaveHook runs after a title write that was not suppressed.
type AfterSaveHook func(ctx context.Context, t *models.Title)

// ReconcileOptions tunes a single reconciliation.
type ReconcileOptions struct {
	// SuppressTrigger skips the after-save hook, used by the enrichment job
	// so its own write does not schedule another job.
	SuppressTrigger bool
}

// ReconcileReport describes what a reconciliation changed.
type ReconcileReport struct {
	Changed       []string
	Saved         bool
	CoverAttached bool
}

// Reconciler fills missing title fields from a matched catalog record
// without overwriting values already considered valid.
type Reconciler struct {
	store      TitleStore
	translator Translator
	covers     CoverStore
	afterSave  AfterSaveHook
	logger     *zap.Logger
}

// NewReconciler creates a reconciler. translator and covers may be nil.
func NewReconciler(store TitleStore, translator Translator, covers CoverStore, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:      store,
		translator: translator,
		covers:     covers,
		logger:     logger.Named("reconciler"),
	}
}

// SetAfterSave installs the hook called after unsuppressed writes.
func (r *Reconciler) SetAfterSave(hook AfterSaveHook) {
	r.afterSave = hook
}

// Reconcile fills the missing fields of an existing title from rec.
// It writes at most once, and not at all when nothing was missing.
func (r *Reconciler) Reconcile(ctx context.Context, t *models.Title, rec *Record, opts ReconcileOptions) (*ReconcileReport, error) {
	token, _ := TitleTypeToken(t)

	changed, replaceGenres, err := r.fill(ctx, t, rec, token)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Changed: changed}
	if len(changed) > 0 {
		if err := r.store.SaveReconciled(ctx, t, replaceGenres); err != nil {
			return nil, fmt.Errorf("save title %d: %w", t.ID, err)
		}
		report.Saved = true
		r.logger.Info("title reconciled",
			zap.Uint("title_id", t.ID),
			zap.String("slug", t.Slug),
			zap.Strings("fields", changed),
		)
	}

	report.CoverAttached = r.attachCover(ctx, t, rec)

	if report.Saved && !opts.SuppressTrigger && r.afterSave != nil {
		r.afterSave(ctx, t)
	}

	return report, nil
}

// CreateFromRecord builds a new title from rec, saves it once and attaches
// its cover. Nothing is written when a field fails to convert.
func (r *Reconciler) CreateFromRecord(ctx context.Context, rec *Record, typeID uint, opts ReconcileOptions) (*models.Title, error) {
	name := rec.PrimaryTitle()
	if name == "" {
		return nil, fmt.Errorf("record %d has no title", rec.MalID)
	}

	slug := GenerateSlug(name)
	if slug == "" {
		return nil, fmt.Errorf("record %d %q: %w", rec.MalID, name, ErrEmptySlug)
	}

	malID := rec.MalID
	t := &models.Title{
		Name:   name,
		Slug:   slug,
		TypeID: typeID,
		MalID:  &malID,
	}
	token := rec.TypeToken()

	if _, _, err := r.fill(ctx, t, rec, token); err != nil {
		return nil, err
	}
	if t.RatingID == nil {
		rating := RatingUnrated
		t.RatingID = &rating
	}

	if err := r.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create title %q: %w", t.Slug, err)
	}
	r.logger.Info("title created", zap.Uint("title_id", t.ID), zap.String("slug", t.Slug), zap.Int("mal_id", malID))

	r.attachCover(ctx, t, rec)

	if !opts.SuppressTrigger && r.afterSave != nil {
		r.afterSave(ctx, t)
	}

	return t, nil
}

// fill assigns every missing field of t that rec can supply and returns the
// changed column names. Values that can fail to convert are computed before
// anything is assigned.
func (r *Reconciler) fill(ctx context.Context, t *models.Title, rec *Record, token string) ([]string, bool, error) {
	dates := rec.Dates()

	var from, to *time.Time
	var err error
	if DateMissing(t.BroadTime) && dates.From != nil {
		if from, err = ParseCatalogDate("broad_time", *dates.From); err != nil {
			return nil, false, err
		}
	}
	if DateMissing(t.BroadFinish) && dates.To != nil {
		if to, err = ParseCatalogDate("broad_finish", *dates.To); err != nil {
			return nil, false, err
		}
	}

	var changed []string
	replaceGenres := false

	if SynopsisMissing(t.Sinopsis) {
		if text := CleanSynopsis(rec.SynopsisText()); text != "" {
			if localized := r.translate(ctx, text); localized != t.Sinopsis {
				t.Sinopsis = localized
				changed = append(changed, "sinopsis")
			}
		}
	}

	if TrailerMissing(t, token) {
		if u := rec.TrailerURL(); u != "" {
			t.TrailerURL = u
			changed = append(changed, "trailer_url")
		}
	}

	if RatingMissing(t) {
		rating := MapRating(rec.RatingText())
		if t.RatingID == nil || *t.RatingID != rating {
			t.RatingID = &rating
			changed = append(changed, "rating_id")
		}
	}

	if EpisodesMissing(t) {
		if n := rec.Count(); n != nil && *n > 0 {
			count := *n
			t.Episodies = &count
			changed = append(changed, "episodies")
		}
	}

	if from != nil {
		t.BroadTime = from
		changed = append(changed, "broad_time")
	}
	if to != nil {
		t.BroadFinish = to
		changed = append(changed, "broad_finish")
	}

	if status, ok := MapStatus(rec.Status); ok {
		if status != t.Status {
			t.Status = status
			changed = append(changed, "status")
		}
	} else if t.Status == "" {
		t.Status = StatusFinished
		changed = append(changed, "status")
	}

	if OtherTitlesMissing(t) {
		if other := BuildOtherTitles(rec); other != "" {
			t.OtherTitles = other
			changed = append(changed, "other_titles")
		}
	}

	if GenresMissing(t) {
		if ids := MapGenres(rec.GenreNames()); len(ids) > 0 {
			t.Genres = make([]models.Genre, 0, len(ids))
			for _, id := range ids {
				t.Genres = append(t.Genres, models.Genre{ID: id})
			}
			replaceGenres = true
			changed = append(changed, "genres")
		}
	}

	if t.MalID == nil && rec.MalID > 0 {
		malID := rec.MalID
		t.MalID = &malID
		changed = append(changed, "mal_id")
	}

	return changed, replaceGenres, nil
}

// translate returns the localized text, or the original when translation fails.
func (r *Reconciler) translate(ctx context.Context, text string) string {
	if r.translator == nil {
		return text
	}
	localized, err := r.translator.Translate(ctx, text)
	if err != nil || localized == "" {
		r.logger.Warn("synopsis translation failed, keeping original text", zap.Error(err))
		return text
	}
	return localized
}

// attachCover stores the record's cover when the title has none. Failures
// are logged and swallowed.
func (r *Reconciler) attachCover(ctx context.Context, t *models.Title, rec *Record) bool {
	if r.covers == nil || !CoverMissing(t) {
		return false
	}
	imageURL := rec.CoverURL()
	if !UsableCoverURL(imageURL) {
		return false
	}

	asset, err := r.covers.AttachCover(ctx, t, imageURL)
	if err != nil {
		r.logger.Warn("cover attachment failed",
			zap.Uint("title_id", t.ID),
			zap.String("url", imageURL),
			zap.Error(err),
		)
		return false
	}
	t.Cover = asset
	return asset != nil
}
