package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nikmel/jobwire/internal/model"
)

const channelPreviewBaseURL = "https://t.me/s"

// ChannelAdapter reads recent messages from a public Telegram broadcast
// channel through its web preview page and extracts postings with lightweight
// text heuristics. This is the lowest-confidence source family: messages that
// do not look like a posting are skipped one by one.
type ChannelAdapter struct {
	channel string // public channel name, without @
	client  *http.Client
	logger  *slog.Logger
}

// NewChannelAdapter creates an adapter for one public channel.
func NewChannelAdapter(channel string, client *http.Client, logger *slog.Logger) *ChannelAdapter {
	return &ChannelAdapter{
		channel: strings.TrimPrefix(channel, "@"),
		client:  client,
		logger:  logger,
	}
}

func (a *ChannelAdapter) Name() string { return "channel:" + a.channel }

// Fetch downloads the channel preview page and extracts one Job per message
// that yields a usable title and link.
func (a *ChannelAdapter) Fetch(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s", channelPreviewBaseURL, a.channel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("channel fetch for %s: %w", a.channel, err)
	}
	req.Header.Set("User-Agent", "jobwire/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("channel fetch for %s: %w", a.channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("channel fetch for %s: unexpected status %d", a.channel, resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("channel fetch for %s: parse html: %w", a.channel, err)
	}

	messages := doc.Find(".tgme_widget_message")
	if messages.Length() == 0 {
		a.logger.Warn("channel preview contained no messages",
			"channel", a.channel,
		)
		return nil, nil
	}

	var jobs []model.Job
	messages.Each(func(_ int, msg *goquery.Selection) {
		job, ok := a.parseMessage(msg)
		if !ok {
			return
		}
		jobs = append(jobs, job)
	})

	return jobs, nil
}

func (a *ChannelAdapter) parseMessage(msg *goquery.Selection) (model.Job, bool) {
	text := msg.Find(".tgme_widget_message_text").First()
	if text.Length() == 0 {
		return model.Job{}, false
	}

	// Message bodies separate lines with <br>, which .Text() would swallow.
	text.Find("br").ReplaceWithHtml("\n")

	// First outbound link in the message is assumed to be the posting URL.
	var jobURL string
	text.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.Contains(href, "//t.me/") {
			return true
		}
		jobURL = href
		return false
	})

	title, company := parseMessageHeadline(firstLine(text.Text()))

	job := model.Job{
		Title:   title,
		Company: company,
		URL:     jobURL,
		Source:  a.Name(),
	}

	if dt, ok := msg.Find("time[datetime]").First().Attr("datetime"); ok {
		job.PostedAt = parsePostedAt(dt)
	}

	if !job.Valid() {
		return model.Job{}, false
	}

	// Preview pages have no stable message id in the text body, so the
	// identity is hash-derived. The message permalink would change if the
	// channel is renamed, the content hash does not.
	job.ID = model.HashID(a.Name(), job.Title, job.Company, job.URL)
	return job, true
}

// firstLine returns the first non-empty line of a message.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if l := cleanText(line); l != "" {
			return l
		}
	}
	return ""
}

// parseMessageHeadline splits the common "Title @ Company" / "Title at
// Company" headline shapes. Leading emoji and decoration are dropped by
// keeping only letters onward.
func parseMessageHeadline(line string) (title, company string) {
	line = strings.TrimLeft(line, "✅🔥🚀📢🟢⭐️•- ")
	for _, sep := range []string{" @ ", " at ", " — ", " | "} {
		if i := strings.Index(line, sep); i > 0 {
			return cleanText(line[:i]), cleanText(line[i+len(sep):])
		}
	}
	return cleanText(line), ""
}
