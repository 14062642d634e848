package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nikmel/jobwire/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// GreenhouseOrg identifies one organization's board on the Greenhouse API.
type GreenhouseOrg struct {
	BoardToken string
	Company    string
}

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API for a
// set of organizations. Each organization is an independent sub-fetch: one
// board being down does not abort the others.
type GreenhouseAdapter struct {
	orgs   []GreenhouseOrg
	client *http.Client
}

// NewGreenhouseAdapter creates a new adapter over the given boards.
func NewGreenhouseAdapter(orgs []GreenhouseOrg, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		orgs:   orgs,
		client: client,
	}
}

func (a *GreenhouseAdapter) Name() string { return "greenhouse" }

// Fetch retrieves jobs from every configured board and normalizes them into
// the unified Job model. Partial results are returned alongside the joined
// errors of any boards that failed.
func (a *GreenhouseAdapter) Fetch(ctx context.Context) ([]model.Job, error) {
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

func (a *GreenhouseAdapter) fetchOrg(ctx context.Context, org GreenhouseOrg) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, org.BoardToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", org.BoardToken, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", org.BoardToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("greenhouse fetch for %s: unexpected status %d", org.BoardToken, resp.StatusCode),
		}
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", org.BoardToken, err)
	}

	jobs := make([]model.Job, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		job := model.Job{
			ID:       model.SourceID("greenhouse", strconv.FormatInt(gj.ID, 10)),
			Company:  org.Company,
			Title:    extractText(gj.Title),
			Location: cleanText(gj.Location.Name),
			URL:      gj.AbsoluteURL,
			Source:   "greenhouse",
			PostedAt: parsePostedAt(gj.UpdatedAt),
		}
		if !job.Valid() {
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}
