package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/nikmel/jobwire/internal/model"
	"github.com/nikmel/jobwire/internal/notifier"
	"github.com/nikmel/jobwire/internal/pipeline"
	"github.com/nikmel/jobwire/internal/store"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and exit",
	Long:  "One complete fetch→filter→dedup→deliver cycle. With --dry-run nothing is\nmarked as seen and results are printed instead of delivered.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not mark jobs as seen, log matches instead of delivering")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}

	var seenStore model.SeenStore
	var n model.Notifier = notifier.NewLogNotifier(logger)

	if dryRun {
		logger.Info("dry-run mode enabled, no jobs will be marked as seen")
		seenStore = store.NewNopStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(dbPath(cfg))
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		seenStore = sqlStore

		if cfg.Telegram.Token != "" {
			api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
			if err != nil {
				logger.Error("failed to connect to telegram", "error", err)
				os.Exit(1)
			}
			n = notifier.NewTelegramNotifier(api, cfg.Telegram.ChatID, nil, logger)
		}
	}

	cache := pipeline.NewResultCache(cfg.DataDir)
	p := buildPipeline(cfg, seenStore, n, cache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx, pipeline.Options{})
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("run summary",
		"fetched", summary.Fetched,
		"accepted", summary.Accepted,
		"new", summary.New,
		"already_seen", summary.AlreadySeen,
		"failed_sources", summary.FailedSources(),
	)
	return nil
}
