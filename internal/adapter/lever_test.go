package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leverPayload = `[
	{
		"id": "a1b2c3d4",
		"text": "Senior Backend Engineer",
		"categories": {
			"location": "Remote",
			"allLocations": ["Remote - Europe", "Lisbon"]
		},
		"createdAt": 1717200000000,
		"hostedUrl": "https://jobs.lever.co/acme/a1b2c3d4"
	},
	{
		"id": "e5f6a7b8",
		"text": "Product Designer",
		"categories": {
			"location": "New York"
		},
		"createdAt": 0,
		"hostedUrl": "https://jobs.lever.co/acme/e5f6a7b8"
	},
	{
		"id": "deadbeef",
		"text": "",
		"categories": {},
		"hostedUrl": "https://jobs.lever.co/acme/deadbeef"
	}
]`

func TestLeverFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(leverPayload))
	}))
	defer srv.Close()

	a := NewLeverAdapter([]LeverOrg{{Slug: "acme", Company: "Acme"}}, redirectingClient(srv))

	jobs, err := a.Fetch(context.Background())
	require.NoError(t, err)
	// The titleless posting is dropped.
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "lever:a1b2c3d4", first.ID)
	assert.Equal(t, "Senior Backend Engineer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Remote - Europe, Lisbon", first.Location, "allLocations takes precedence")
	assert.Equal(t, "https://jobs.lever.co/acme/a1b2c3d4", first.URL)
	assert.Equal(t, "lever", first.Source)
	require.NotNil(t, first.PostedAt)
	assert.Equal(t, time.UnixMilli(1717200000000).UTC(), *first.PostedAt)

	second := jobs[1]
	assert.Equal(t, "New York", second.Location, "single location used when allLocations absent")
	assert.Nil(t, second.PostedAt, "zero createdAt means unknown age")
}

func TestLeverFetch_OneOrgFailureKeepsSiblings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(leverPayload))
	}))
	defer srv.Close()

	a := NewLeverAdapter([]LeverOrg{
		{Slug: "broken", Company: "Broken Co"},
		{Slug: "acme", Company: "Acme"},
	}, redirectingClient(srv))

	jobs, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, jobs, 2, "healthy org still contributes its jobs")
}

func TestLeverFetch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"`))
	}))
	defer srv.Close()

	a := NewLeverAdapter([]LeverOrg{{Slug: "acme", Company: "Acme"}}, redirectingClient(srv))

	jobs, err := a.Fetch(context.Background())
	require.Error(t, err)
	assert.Empty(t, jobs)
}
