package command

// root.go defines the jikan-sync command: one batch import of seasonal
// catalog listings, either the full current+next season run or a single
// explicit page.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coanime/internal/app"
	"coanime/internal/config"
	"coanime/internal/ingestion/jikan"
	"coanime/internal/util"
)

var (
	year   int
	season string
	page   int
	single bool
)

var rootCmd = &cobra.Command{
	Use:   "jikan-sync",
	Short: "jikan-sync - import seasonal anime from MyAnimeList via Jikan",
	Long: `jikan-sync imports seasonal listings from the Jikan API into the Coanime
encyclopedia. Without --single it walks the current and next season; with
--single it imports exactly one (year, season, page) batch.

Per-record failures are reported and do not fail the run.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			if single {
				return runSingle(ctx, a)
			}
			return runFull(ctx, a)
		})
	},
}

// Execute runs the root command and exits non-zero when it fails.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntVar(&year, "year", 0, "season year (default: current year)")
	rootCmd.Flags().StringVar(&season, "season", "", "winter, spring, summer or fall (default: current season)")
	rootCmd.Flags().IntVar(&page, "page", 1, "listing page for --single")
	rootCmd.Flags().BoolVar(&single, "single", false, "import one (year, season, page) batch only")

	rootCmd.AddCommand(scheduleCmd)
}

// withApp loads configuration, builds the shared dependencies and runs fn.
func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := util.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func runFull(ctx context.Context, a *app.App) error {
	res, err := a.Sync.RunFullSync(ctx, time.Now())
	report(res)
	return err
}

func runSingle(ctx context.Context, a *app.App) error {
	y, s := year, season
	if y == 0 || s == "" {
		cy, cs := jikan.CurrentSeason(time.Now())
		if y == 0 {
			y = cy
		}
		if s == "" {
			s = cs
		}
	}
	if !jikan.ValidSeason(s) {
		return fmt.Errorf("invalid season %q: want winter, spring, summer or fall", s)
	}
	if page < 1 {
		return fmt.Errorf("invalid page %d", page)
	}

	res, err := a.Sync.RunSingleSync(ctx, y, s, page)
	report(res)
	return err
}

func report(res *jikan.SyncResult) {
	if res == nil {
		return
	}
	for _, line := range res.Progress {
		fmt.Println(line)
	}
	fmt.Printf("saved: %d, skipped: %d, invalid type: %d, errors: %d\n",
		res.Saved, res.Skipped, res.InvalidType, len(res.Errors))
	for _, e := range res.Errors {
		fmt.Printf("  ✗ %s\n", e)
	}
}
