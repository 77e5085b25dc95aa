package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coanime/internal/app"
	"coanime/internal/ingestion/jikan"
)

// scheduleCmd runs the full sync on SYNC_SCHEDULE until interrupted.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the full sync on SYNC_SCHEDULE until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), runSchedule)
	},
}

func runSchedule(ctx context.Context, a *app.App) error {
	logger := a.Logger.Named("jikan-schedule")

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(a.Config.SyncSchedule, func() {
		res, err := a.Sync.RunFullSync(ctx, time.Now())
		switch {
		case errors.Is(err, jikan.ErrSyncInProgress):
			logger.Info("scheduled sync skipped, another run holds the lock")
		case err != nil:
			logger.Error("scheduled sync failed", zap.Error(err))
		default:
			logger.Info("scheduled sync finished",
				zap.Int("saved", res.Saved),
				zap.Int("skipped", res.Skipped),
				zap.Int("invalid_type", res.InvalidType),
				zap.Int("errors", len(res.Errors)),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", a.Config.SyncSchedule, err)
	}

	c.Start()
	logger.Info("sync scheduler started", zap.String("schedule", a.Config.SyncSchedule))

	<-ctx.Done()
	logger.Info("shutdown signal received, waiting for running sync")
	<-c.Stop().Done()
	return nil
}
