package jikan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RunFullSync imports the current and next season, up to pagesPerSeason
// pages each. A failed page becomes an error line and the remaining pages
// still run; an error is returned only when every page fetch failed.
func (s *SyncService) RunFullSync(ctx context.Context, now time.Time) (*SyncResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	year, season := CurrentSeason(now)
	nextYear, nextSeason := NextSeason(year, season)

	total := newSyncResult()
	fetched, failed := 0, 0

	for _, batch := range []struct {
		year   int
		season string
	}{{year, season}, {nextYear, nextSeason}} {
		for page := 1; page <= s.pagesPerSeason; page++ {
			res, hasNext, err := s.syncPage(ctx, batch.year, batch.season, page)
			fetched++
			if err != nil {
				failed++
				line := fmt.Sprintf("%s %d page %d: %v", batch.season, batch.year, page, err)
				total.Errors = append(total.Errors, line)
				s.logger.Error("season page failed",
					zap.Int("year", batch.year),
					zap.String("season", batch.season),
					zap.Int("page", page),
					zap.Error(err),
				)
				continue
			}
			total.merge(res)
			if !hasNext {
				break
			}
		}
	}

	s.logger.Info("full sync completed",
		zap.Int("saved", total.Saved),
		zap.Int("skipped", total.Skipped),
		zap.Int("invalid_type", total.InvalidType),
		zap.Int("errors", len(total.Errors)),
	)
	s.record(ctx, ModeFull, started, total)

	if fetched > 0 && failed == fetched {
		return total, fmt.Errorf("full sync: all %d page fetches failed: %w", fetched, ErrCatalogUnavailable)
	}
	return total, nil
}

// RunSingleSync imports one explicit (year, season, page) batch. A page
// fetch failure is returned to the caller.
func (s *SyncService) RunSingleSync(ctx context.Context, year int, season string, page int) (*SyncResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	res, err := s.SyncSeasonPage(ctx, year, season, page)
	if err != nil {
		failed := newSyncResult()
		failed.Errors = append(failed.Errors, err.Error())
		s.record(ctx, ModeSingle, started, failed)
		return nil, err
	}
	s.record(ctx, ModeSingle, started, res)
	return res, nil
}

// SyncSeasonPage fetches one listing page and imports every record on it.
// Per-record failures are collected in the result; only a failed page fetch
// is returned as an error.
func (s *SyncService) SyncSeasonPage(ctx context.Context, year int, season string, page int) (*SyncResult, error) {
	res, _, err := s.syncPage(ctx, year, season, page)
	return res, err
}

func (s *SyncService) syncPage(ctx context.Context, year int, season string, page int) (*SyncResult, bool, error) {
	season = strings.ToLower(strings.TrimSpace(season))
	if !ValidSeason(season) {
		return nil, false, fmt.Errorf("invalid season %q", season)
	}
	if page < 1 {
		page = 1
	}

	listing, err := s.catalog.GetSeason(ctx, year, season, page)
	if err != nil {
		return nil, false, err
	}

	res := newSyncResult()
	res.progressf("%s %d page %d: %d records", season, year, page, len(listing.Data))

	for i := range listing.Data {
		rec := &listing.Data[i]
		name := rec.PrimaryTitle()

		outcome, err := s.processRecord(ctx, rec)
		switch {
		case err != nil:
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
			s.logger.Warn("record failed", zap.Int("mal_id", rec.MalID), zap.String("name", name), zap.Error(err))
		case outcome == outcomeSaved:
			res.Saved++
			res.progressf("saved %s", name)
		case outcome == outcomeSkipped:
			res.Skipped++
		case outcome == outcomeInvalidType:
			res.InvalidType++
		}
	}

	s.logger.Info("season page synced",
		zap.Int("year", year),
		zap.String("season", season),
		zap.Int("page", page),
		zap.Int("saved", res.Saved),
		zap.Int("skipped", res.Skipped),
		zap.Int("invalid_type", res.InvalidType),
		zap.Int("errors", len(res.Errors)),
	)

	return res, listing.Pagination.HasNextPage, nil
}

type recordOutcome int

const (
	outcomeSaved recordOutcome = iota + 1
	outcomeSkipped
	outcomeInvalidType
)

// processRecord classifies and imports a single record. A panic is turned
// into an error so one bad record never aborts the page.
func (s *SyncService) processRecord(ctx context.Context, rec *Record) (outcome recordOutcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	name := rec.PrimaryTitle()
	if name == "" {
		return 0, fmt.Errorf("record %d has no title", rec.MalID)
	}

	slug := GenerateSlug(name)
	if slug == "" {
		return 0, ErrEmptySlug
	}

	exists, err := s.store.ExistsBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	if exists {
		return outcomeSkipped, nil
	}

	typeID, err := importableType(rec.TypeToken())
	if errors.Is(err, ErrUnmappableType) {
		return outcomeInvalidType, nil
	}

	if _, err := s.reconciler.CreateFromRecord(ctx, rec, typeID, ReconcileOptions{}); err != nil {
		// lost a race with another run: the unique index decided
		if errors.Is(err, ErrDuplicateEntity) {
			return outcomeSkipped, nil
		}
		return 0, err
	}
	return outcomeSaved, nil
}

// importableType resolves the local type of a catalog token. Unknown and
// excluded tokens return ErrUnmappableType.
func importableType(token string) (uint, error) {
	typeID, ok := MapMediaType(token)
	if !ok || IsExcludedType(token) {
		return 0, fmt.Errorf("type %q: %w", token, ErrUnmappableType)
	}
	return typeID, nil
}
