package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nikmel/jobwire/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// LeverOrg identifies one organization's board on the Lever postings API.
type LeverOrg struct {
	Slug    string
	Company string
}

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Location     string   `json:"location"`
	AllLocations []string `json:"allLocations"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Categories leverCategories `json:"categories"`
	CreatedAt  int64           `json:"createdAt"`
	HostedURL  string          `json:"hostedUrl"`
}

// LeverAdapter fetches jobs from the Lever public postings API for a set of
// organizations, each an independent sub-fetch.
type LeverAdapter struct {
	orgs   []LeverOrg
	client *http.Client
}

// NewLeverAdapter creates a new adapter over the given boards.
func NewLeverAdapter(orgs []LeverOrg, client *http.Client) *LeverAdapter {
	return &LeverAdapter{
		orgs:   orgs,
		client: client,
	}
}

func (a *LeverAdapter) Name() string { return "lever" }

// Fetch retrieves jobs from every configured board. Partial results are
// returned alongside the joined errors of any boards that failed.
func (a *LeverAdapter) Fetch(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	var errs []error
	for _, org := range a.orgs {
		orgJobs, err := a.fetchOrg(ctx, org)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		jobs = append(jobs, orgJobs...)
	}
	return jobs, errors.Join(errs...)
}

func (a *LeverAdapter) fetchOrg(ctx context.Context, org LeverOrg) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, org.Slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", org.Slug, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", org.Slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("lever fetch for %s: unexpected status %d", org.Slug, resp.StatusCode),
		}
	}

	var leverJobs []leverJob
	if err := json.NewDecoder(resp.Body).Decode(&leverJobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", org.Slug, err)
	}

	jobs := make([]model.Job, 0, len(leverJobs))
	for _, lj := range leverJobs {
		// Prefer allLocations when present, fall back to the single location.
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}

		var postedAt *time.Time
		if lj.CreatedAt > 0 {
			t := time.UnixMilli(lj.CreatedAt).UTC()
			postedAt = &t
		}

		job := model.Job{
			ID:       model.SourceID("lever", lj.ID),
			Company:  org.Company,
			Title:    extractText(lj.Text),
			Location: cleanText(location),
			URL:      lj.HostedURL,
			Source:   "lever",
			PostedAt: postedAt,
		}
		if !job.Valid() {
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}
