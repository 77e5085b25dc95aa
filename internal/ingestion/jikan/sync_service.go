package jikan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"coanime/internal/microservices/http-api/models"
)

const (
	ModeFull   = "full"
	ModeSingle = "single"

	defaultPagesPerSeason = 3
)

// Seasons in calendar order.
var Seasons = []string{"winter", "spring", "summer", "fall"}

// Locker serializes sync runs across processes.
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

// RunRecorder stores the audit row of a finished run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.SyncRun) error
}

// SyncResult is the summary of one or more synced pages.
type SyncResult struct {
	Saved       int      `json:"saved"`
	Skipped     int      `json:"skipped"`
	InvalidType int      `json:"invalid_type"`
	Errors      []string `json:"errors"`
	Progress    []string `json:"progress,omitempty"`
}

func newSyncResult() *SyncResult {
	return &SyncResult{Errors: []string{}}
}

func (r *SyncResult) merge(o *SyncResult) {
	r.Saved += o.Saved
	r.Skipped += o.Skipped
	r.InvalidType += o.InvalidType
	r.Errors = append(r.Errors, o.Errors...)
	r.Progress = append(r.Progress, o.Progress...)
}

func (r *SyncResult) progressf(format string, args ...any) {
	r.Progress = append(r.Progress, fmt.Sprintf(format, args...))
}

// SyncService imports seasonal catalog listings as new titles.
type SyncService struct {
	catalog    Catalog
	store      TitleStore
	reconciler *Reconciler
	locker     Locker
	runs       RunRecorder
	logger     *zap.Logger

	pagesPerSeason int
}

// SyncConfig holds configuration for the sync service
type SyncConfig struct {
	PagesPerSeason int
	// Locker and Runs are optional.
	Locker Locker
	Runs   RunRecorder
}

func NewSyncService(catalog Catalog, store TitleStore, reconciler *Reconciler, cfg SyncConfig, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}

	pages := cfg.PagesPerSeason
	if pages <= 0 {
		pages = defaultPagesPerSeason
	}

	return &SyncService{
		catalog:        catalog,
		store:          store,
		reconciler:     reconciler,
		locker:         cfg.Locker,
		runs:           cfg.Runs,
		logger:         logger.Named("jikan-sync"),
		pagesPerSeason: pages,
	}
}

// ValidSeason reports whether s is one of the four season names.
func ValidSeason(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, name := range Seasons {
		if name == s {
			return true
		}
	}
	return false
}

// CurrentSeason returns the year and season containing t.
func CurrentSeason(t time.Time) (int, string) {
	return t.Year(), Seasons[(int(t.Month())-1)/3]
}

// NextSeason returns the season after (year, season); fall rolls over to
// winter of the following year.
func NextSeason(year int, season string) (int, string) {
	for i, name := range Seasons {
		if name == season {
			if i == len(Seasons)-1 {
				return year + 1, Seasons[0]
			}
			return year, Seasons[i+1]
		}
	}
	return year, season
}

// acquire takes the sync lock when one is configured.
func (s *SyncService) acquire(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release sync lock", zap.Error(err))
		}
	}, nil
}

// record writes the audit row. Failures are logged only.
func (s *SyncService) record(ctx context.Context, mode string, started time.Time, res *SyncResult) {
	if s.runs == nil || res == nil {
		return
	}
	finished := time.Now()
	run := &models.SyncRun{
		Mode:        mode,
		Saved:       res.Saved,
		Skipped:     res.Skipped,
		InvalidType: res.InvalidType,
		ErrorCount:  len(res.Errors),
		Errors:      strings.Join(res.Errors, "\n"),
		StartedAt:   started,
		FinishedAt:  &finished,
	}
	if err := s.runs.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("record sync run", zap.String("mode", mode), zap.Error(err))
	}
}
