package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nikmel/jobwire/internal/model"
)

// BoardSelectors ties a BoardAdapter to one site's HTML layout.
type BoardSelectors struct {
	Row      string // selector matching one posting row
	Title    string // relative to row
	Link     string // relative to row, href holds the posting URL
	Company  string // relative to row, optional
	Location string // relative to row, optional
	Time     string // relative to row, optional; datetime attr or text holds the posted date
}

// BoardAdapter scrapes a careers/board page whose structure is described by a
// selector set. Scraping is brittle: when the row selector matches nothing the
// site layout has probably drifted, which is a soft failure (logged, empty
// result), not an error.
type BoardAdapter struct {
	name      string
	pageURL   string
	selectors BoardSelectors
	client    *http.Client
	logger    *slog.Logger
}

// NewBoardAdapter creates an adapter for one HTML job board.
func NewBoardAdapter(name, pageURL string, selectors BoardSelectors, client *http.Client, logger *slog.Logger) *BoardAdapter {
	return &BoardAdapter{
		name:      name,
		pageURL:   pageURL,
		selectors: selectors,
		client:    client,
		logger:    logger,
	}
}

func (a *BoardAdapter) Name() string { return a.name }

// Fetch downloads the board page and extracts postings row by row. Rows
// missing a title or link are skipped individually.
func (a *BoardAdapter) Fetch(ctx context.Context) ([]model.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", a.name, err)
	}
	req.Header.Set("User-Agent", "jobwire/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: %w", a.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("board fetch for %s: unexpected status %d", a.name, resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("board fetch for %s: parse html: %w", a.name, err)
	}

	rows := doc.Find(a.selectors.Row)
	if rows.Length() == 0 {
		// Layout drift, not an outage. Surface it in the log and move on.
		a.logger.Warn("board selector matched no postings, layout may have changed",
			"board", a.name,
			"selector", a.selectors.Row,
		)
		return nil, nil
	}

	var jobs []model.Job
	rows.Each(func(_ int, row *goquery.Selection) {
		job, ok := a.parseRow(row)
		if !ok {
			return
		}
		jobs = append(jobs, job)
	})

	return jobs, nil
}

func (a *BoardAdapter) parseRow(row *goquery.Selection) (model.Job, bool) {
	job := model.Job{
		Title:  cleanText(row.Find(a.selectors.Title).First().Text()),
		Source: a.name,
	}

	href, ok := row.Find(a.selectors.Link).First().Attr("href")
	if !ok {
		return model.Job{}, false
	}
	job.URL = a.absoluteURL(strings.TrimSpace(href))

	if a.selectors.Company != "" {
		job.Company = cleanText(row.Find(a.selectors.Company).First().Text())
	}
	if a.selectors.Location != "" {
		job.Location = cleanText(row.Find(a.selectors.Location).First().Text())
	}
	if a.selectors.Time != "" {
		t := row.Find(a.selectors.Time).First()
		if dt, ok := t.Attr("datetime"); ok {
			job.PostedAt = parsePostedAt(dt)
		} else {
			job.PostedAt = parsePostedAt(cleanText(t.Text()))
		}
	}

	if !job.Valid() {
		return model.Job{}, false
	}
	job.ID = model.HashID(a.name, job.Title, job.Company, job.URL)
	return job, true
}

// absoluteURL resolves a scraped href against the board page URL.
func (a *BoardAdapter) absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(a.pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
