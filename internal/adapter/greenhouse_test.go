package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// roundTripFunc adapts a function to http.RoundTripper so tests can redirect
// adapter requests at the test server regardless of the hardcoded base URL.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// redirectingClient rewrites every request to hit srv instead.
func redirectingClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

func TestGreenhouseFetch_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 12345,
				"title": "Product Marketing Manager",
				"location": {"name": "Remote - Worldwide"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
				"updated_at": "2026-02-13T10:00:00Z"
			},
			{
				"id": 67890,
				"title": "Community Lead",
				"location": {"name": "Dubai, UAE"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/67890",
				"updated_at": "2026-02-13T11:30:00Z"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter([]GreenhouseOrg{{BoardToken: "acme", Company: "Acme Corp"}}, redirectingClient(srv))

	jobs, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	j := jobs[0]
	if j.ID != "greenhouse:12345" {
		t.Errorf("expected ID greenhouse:12345, got %s", j.ID)
	}
	if j.Company != "Acme Corp" {
		t.Errorf("expected company Acme Corp, got %s", j.Company)
	}
	if j.Title != "Product Marketing Manager" {
		t.Errorf("expected title Product Marketing Manager, got %s", j.Title)
	}
	if j.Location != "Remote - Worldwide" {
		t.Errorf("expected location Remote - Worldwide, got %s", j.Location)
	}
	if j.Source != "greenhouse" {
		t.Errorf("expected source greenhouse, got %s", j.Source)
	}
	if j.PostedAt == nil {
		t.Fatal("expected PostedAt to be set")
	}
	if j.PostedAt.Year() != 2026 || j.PostedAt.Day() != 13 {
		t.Errorf("unexpected PostedAt: %v", j.PostedAt)
	}
}

func TestGreenhouseFetch_IdentityStableAcrossRuns(t *testing.T) {
	payload := `{"jobs": [{"id": 42, "title": "Growth Marketing Lead", "location": {"name": "Remote"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/42"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter([]GreenhouseOrg{{BoardToken: "acme", Company: "Acme"}}, redirectingClient(srv))

	first, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("identity changed across runs: %s vs %s", first[0].ID, second[0].ID)
	}
}

func TestGreenhouseFetch_OneOrgFailureKeepsSiblings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/boards/good/jobs":
			w.Write([]byte(`{"jobs": [{"id": 1, "title": "Brand Manager", "location": {"name": "Remote"}, "absolute_url": "https://boards.greenhouse.io/good/jobs/1"}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter([]GreenhouseOrg{
		{BoardToken: "bad", Company: "Bad Co"},
		{BoardToken: "good", Company: "Good Co"},
	}, redirectingClient(srv))

	jobs, err := a.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected an error for the failing org")
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 partial job, got %d", len(jobs))
	}
	if jobs[0].Company != "Good Co" {
		t.Errorf("expected the surviving org's job, got %+v", jobs[0])
	}
}

func TestGreenhouseFetch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter([]GreenhouseOrg{{BoardToken: "bad-co", Company: "Bad Co"}}, redirectingClient(srv))

	if _, err := a.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestGreenhouseFetch_DropsIncompleteRecords(t *testing.T) {
	// Second job has no URL and must be dropped as a source-level skip.
	payload := `{"jobs": [
		{"id": 1, "title": "Content Lead", "location": {"name": "Remote"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/1"},
		{"id": 2, "title": "Social Media Manager", "location": {"name": "Remote"}, "absolute_url": ""}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewGreenhouseAdapter([]GreenhouseOrg{{BoardToken: "acme", Company: "Acme"}}, redirectingClient(srv))

	jobs, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected the incomplete record to be dropped, got %d jobs", len(jobs))
	}
}
