package notifier

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nikmel/jobwire/internal/model"
)

// Telegram message bodies are capped at 4096 characters; leave headroom for
// the header/continued prefix.
const (
	maxMessageLen = 4096
	splitBuffer   = 200
)

// Sender is the slice of the Telegram client the notifier needs.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// MessageLog remembers the IDs of messages the bot has sent in this process
// lifetime so the /clear command can delete them.
type MessageLog struct {
	mu  sync.Mutex
	ids []int
}

func NewMessageLog() *MessageLog { return &MessageLog{} }

func (l *MessageLog) Add(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, id)
}

// Drain returns all tracked IDs and resets the log.
func (l *MessageLog) Drain() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := l.ids
	l.ids = nil
	return ids
}

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier delivers job batches to a single Telegram chat, chunked
// into messages that fit the Telegram length limit.
type TelegramNotifier struct {
	sender Sender
	chatID int64
	log    *MessageLog
	logger *slog.Logger
}

// NewTelegramNotifier returns a notifier posting to the given chat. msgLog may
// be shared with the command bot so /clear covers delivered jobs too.
func NewTelegramNotifier(sender Sender, chatID int64, msgLog *MessageLog, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		chatID: chatID,
		log:    msgLog,
		logger: logger,
	}
}

// Notify renders the jobs (already sorted newest-first by the pipeline) and
// sends them as one or more messages. Returns an error only if every message
// failed; partial failures are logged.
func (t *TelegramNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	lines := make([]string, len(jobs))
	for i, j := range jobs {
		lines[i] = formatJob(j)
	}
	chunks := splitMessages(lines)

	header := fmt.Sprintf("🚀 *%d new job%s:*", len(jobs), plural(len(jobs)))

	failures := 0
	for i, chunk := range chunks {
		prefix := header
		if i > 0 {
			prefix = fmt.Sprintf("_\\(continued %d/%d\\)_", i+1, len(chunks))
		}
		if err := t.send(prefix + "\n\n" + chunk); err != nil {
			t.logger.Error("telegram send failed", "chunk", i+1, "error", err)
			failures++
		}
	}

	if failures == len(chunks) {
		return fmt.Errorf("all %d telegram messages failed", failures)
	}
	t.logger.Info("telegram delivery complete", "jobs", len(jobs), "messages", len(chunks)-failures)
	return nil
}

// SendText posts a single plain status message, tracked for /clear.
func (t *TelegramNotifier) SendText(text string) error {
	return t.send(EscapeMarkdown(text))
}

func (t *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	sent, err := t.sender.Send(msg)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if t.log != nil {
		t.log.Add(sent.MessageID)
	}
	return nil
}

// formatJob renders one job as a MarkdownV2 block.
func formatJob(j model.Job) string {
	location := j.Location
	if location == "" {
		location = "Remote"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🟢 *%s*", EscapeMarkdown(j.Title))
	if j.Company != "" {
		fmt.Fprintf(&b, " \\- %s", EscapeMarkdown(j.Company))
	}
	fmt.Fprintf(&b, "\n📍 %s\n", EscapeMarkdown(location))
	fmt.Fprintf(&b, "🔗 [Apply](%s) · _%s_", j.URL, EscapeMarkdown(j.Source))
	return b.String()
}

// splitMessages packs formatted job blocks into Telegram-sized chunks.
func splitMessages(lines []string) []string {
	var messages []string
	var current strings.Builder
	maxBodyLen := maxMessageLen - splitBuffer

	for _, line := range lines {
		block := line + "\n\n"
		if current.Len() > 0 && current.Len()+len(block) > maxBodyLen {
			messages = append(messages, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(block)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		messages = append(messages, s)
	}
	return messages
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

// EscapeMarkdown escapes the characters MarkdownV2 reserves.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
