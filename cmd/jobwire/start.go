package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikmel/jobwire/internal/bot"
	"github.com/nikmel/jobwire/internal/notifier"
	"github.com/nikmel/jobwire/internal/pipeline"
	"github.com/nikmel/jobwire/internal/scheduler"
	"github.com/nikmel/jobwire/internal/social"
	"github.com/nikmel/jobwire/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Long:  "Start the command bot and the interval scheduler; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.Interval.String(),
		"sources", cfg.Sources.SourceCount(),
		"max_age", cfg.Filters.MaxAge.String(),
		"data_dir", cfg.DataDir,
	)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}

	seenStore, err := store.NewSQLiteStore(dbPath(cfg))
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer seenStore.Close()

	if cfg.Telegram.Token == "" {
		logger.Error("telegram.token is required for the daemon; use `jobwire run` for local runs")
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)

	handles, err := social.LoadHandles(cfg.HandlesFile)
	if err != nil {
		logger.Error("failed to load handles file", "error", err)
		os.Exit(1)
	}

	msgLog := notifier.NewMessageLog()
	out := notifier.NewTelegramNotifier(api, cfg.Telegram.ChatID, msgLog, logger)
	cache := pipeline.NewResultCache(cfg.DataDir)
	p := buildPipeline(cfg, seenStore, out, cache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(p, cfg.Interval, logger)
	b := bot.New(api, cfg.Telegram.ChatID, p, out, msgLog, cache, handles, logger)

	var g errgroup.Group
	g.Go(func() error { return sched.Run(ctx) })
	g.Go(func() error { return b.Run(ctx) })

	if err := g.Wait(); err != nil {
		logger.Error("daemon error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
