package main

import (
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/nikmel/jobwire/internal/model"
	"github.com/nikmel/jobwire/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a dummy job to the configured Telegram chat to verify the integration works.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Telegram.Token == "" {
		logger.Error("notify test requires telegram.token in config")
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}

	n := notifier.NewTelegramNotifier(api, cfg.Telegram.ChatID, nil, logger)

	now := time.Now().UTC()
	testJob := model.Job{
		ID:       "test:001",
		Title:    "Test Notification — Integration Verified",
		Company:  "jobwire",
		Location: "Remote - Worldwide",
		URL:      "https://example.com/jobs/test",
		Source:   "test",
		PostedAt: &now,
	}
	if err := n.Notify([]model.Job{testJob}); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
