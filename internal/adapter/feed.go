package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/nikmel/jobwire/internal/model"
)

// FeedAdapter fetches postings from an RSS/Atom job feed.
type FeedAdapter struct {
	name   string
	url    string
	parser *gofeed.Parser
}

// NewFeedAdapter creates an adapter for a single feed URL. The name is used
// as the record source and in identity derivation, so it must stay stable.
func NewFeedAdapter(name, url string, client *http.Client) *FeedAdapter {
	parser := gofeed.NewParser()
	parser.Client = client
	return &FeedAdapter{
		name:   name,
		url:    url,
		parser: parser,
	}
}

func (a *FeedAdapter) Name() string { return a.name }

// Fetch downloads and parses the feed and normalizes each entry into a Job.
// Entries missing a title or link are skipped individually; a fetch or parse
// failure is fatal to this feed only.
func (a *FeedAdapter) Fetch(ctx context.Context) ([]model.Job, error) {
	feed, err := a.parser.ParseURLWithContext(a.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", a.name, err)
	}

	jobs := make([]model.Job, 0, len(feed.Items))
	for _, item := range feed.Items {
		title, company := splitFeedTitle(extractText(item.Title))
		job := model.Job{
			Title:    title,
			Company:  company,
			Location: feedLocation(item),
			URL:      strings.TrimSpace(item.Link),
			Source:   a.name,
			PostedAt: item.PublishedParsed,
		}
		if job.PostedAt == nil {
			job.PostedAt = item.UpdatedParsed
		}
		if !job.Valid() {
			continue
		}
		if item.GUID != "" {
			job.ID = model.SourceID(a.name, item.GUID)
		} else {
			job.ID = model.HashID(a.name, job.Title, job.Company, job.URL)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// splitFeedTitle handles the "Company: Job Title" convention most job feeds
// use. When no separator is present the whole string is the title and the
// company is unrecoverable.
func splitFeedTitle(raw string) (title, company string) {
	if i := strings.Index(raw, ": "); i > 0 {
		return strings.TrimSpace(raw[i+2:]), strings.TrimSpace(raw[:i])
	}
	return strings.TrimSpace(raw), ""
}

// feedLocation pulls a location hint out of the entry's categories, which is
// where job feeds tend to put "Remote" / region tags.
func feedLocation(item *gofeed.Item) string {
	for _, c := range item.Categories {
		l := strings.ToLower(c)
		if strings.Contains(l, "remote") || strings.Contains(l, "worldwide") || strings.Contains(l, "anywhere") {
			return strings.TrimSpace(c)
		}
	}
	return ""
}
