package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nikmel/jobwire/internal/notifier"
	"github.com/nikmel/jobwire/internal/pipeline"
	"github.com/nikmel/jobwire/internal/social"
)

// Commands older than this are ignored on startup so a backlog of stale
// /jobs messages does not trigger a burst of runs.
const staleCommandAge = 60 * time.Second

// API is the slice of the Telegram client the bot needs. *tgbotapi.BotAPI
// satisfies it.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Runner triggers one pipeline run; satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (pipeline.Summary, error)
}

// Bot is the command interface: it long-polls Telegram for updates from the
// configured chat and maps commands onto pipeline runs and cache reads.
type Bot struct {
	api     API
	chatID  int64
	runner  Runner
	out     *notifier.TelegramNotifier
	msgLog  *notifier.MessageLog
	cache   *pipeline.ResultCache
	handles *social.Handles
	clock   func() time.Time
	logger  *slog.Logger
}

// New wires the bot with its collaborators. out and msgLog must share the
// same MessageLog so /clear covers delivered job messages.
func New(
	api API,
	chatID int64,
	runner Runner,
	out *notifier.TelegramNotifier,
	msgLog *notifier.MessageLog,
	cache *pipeline.ResultCache,
	handles *social.Handles,
	logger *slog.Logger,
) *Bot {
	return &Bot{
		api:     api,
		chatID:  chatID,
		runner:  runner,
		out:     out,
		msgLog:  msgLog,
		cache:   cache,
		handles: handles,
		clock:   time.Now,
		logger:  logger,
	}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("bot listening for commands", "chat_id", b.chatID)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("shutting down bot")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Chat.ID != b.chatID {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}
	if b.clock().Sub(msg.Time()) > staleCommandAge {
		b.logger.Info("ignoring stale command", "command", text)
		return
	}

	cmd := strings.ToLower(strings.Fields(text)[0])
	// Strip the @botname suffix of commands sent in groups.
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	b.logger.Info("command received", "command", cmd)

	switch cmd {
	case "/jobs":
		b.runAsync(ctx, pipeline.Options{IgnoreSeen: true}, "latest")
	case "/new":
		b.runAsync(ctx, pipeline.Options{}, "new (unseen)")
	case "/companies", "/twitter", "/x":
		b.handleCompanies()
	case "/clear":
		b.handleClear()
	case "/help", "/start":
		b.sendText(helpText)
	default:
		b.sendText("Unknown command. Try /jobs, /new, /companies, /clear, or /help.")
	}
}

// runAsync kicks off a pipeline run in the background so the bot keeps
// responding to commands while sources are being fetched.
func (b *Bot) runAsync(ctx context.Context, opts pipeline.Options, label string) {
	go func() {
		b.sendText("🔍 Fetching jobs... give me a sec.")

		summary, err := b.runner.Run(ctx, opts)
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			b.sendText("⏳ Already fetching — please wait.")
			return
		case err != nil:
			b.logger.Error("command run failed", "error", err)
			b.sendText(fmt.Sprintf("❌ Error fetching jobs: %v", err))
			return
		}

		// Delivery of the job list itself happens inside the run; here we
		// only report the empty outcome.
		if len(summary.Delivered) == 0 {
			b.sendText("✅ No " + label + " jobs found right now. Check back later!")
		}
	}()
}

func (b *Bot) handleCompanies() {
	result, err := b.cache.Load()
	if err != nil {
		b.logger.Error("failed to load results cache", "error", err)
		b.sendText("❌ Could not read the latest results.")
		return
	}

	links := b.handles.Links(result.Companies())
	if len(links) == 0 {
		b.sendText("No company data cached yet.\nSend /jobs to fetch fresh listings first.")
		return
	}

	var sb strings.Builder
	sb.WriteString("*Companies currently hiring, on X:*\n")
	for _, l := range links {
		fmt.Fprintf(&sb, "[%s](%s)\n", notifier.EscapeMarkdown(l.Company), l.URL)
	}
	b.sendMarkdown(sb.String())
}

// handleClear deletes every message the bot has sent in this process
// lifetime. Individual delete failures (e.g. messages too old) are skipped.
func (b *Bot) handleClear() {
	ids := b.msgLog.Drain()
	if len(ids) == 0 {
		b.sendText("Nothing to clear yet.")
		return
	}
	deleted := 0
	for _, id := range ids {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(b.chatID, id)); err == nil {
			deleted++
		}
	}
	b.logger.Info("cleared bot messages", "deleted", deleted, "tracked", len(ids))
}

const helpText = `jobwire 🤖

/jobs — show the latest matching jobs
/new — show only jobs you haven't seen yet
/companies — X profiles of companies currently hiring
/clear — delete all bot messages in this chat
/help — this message`

func (b *Bot) sendText(text string) {
	if err := b.out.SendText(text); err != nil {
		b.logger.Error("bot send failed", "error", err)
	}
}

// sendMarkdown sends pre-escaped MarkdownV2 content.
func (b *Bot) sendMarkdown(text string) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("bot send failed", "error", err)
		return
	}
	b.msgLog.Add(sent.MessageID)
}
