package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nikmel/jobwire/internal/model"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(Config{
		TitleKeywords:      []string{"engineer", "developer", "devops"},
		ExcludeTitles:      []string{"senior", "staff"},
		AllowedLocations:   []string{"remote", "worldwide", "europe"},
		RestrictedPatterns: []string{"us only", "us applicants", "citizens only"},
		OnsitePatterns:     []string{"on-site", "onsite", "hybrid"},
		MaxAge:             45 * 24 * time.Hour,
	})
}

func daysAgo(n int) *time.Time {
	t := testNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		job    model.Job
		accept bool
		reason Reason
	}{
		{
			name:   "relevant remote fresh job passes",
			job:    model.Job{Title: "Backend Engineer", Location: "Remote", PostedAt: daysAgo(1)},
			accept: true,
		},
		{
			name:   "title without keyword rejected",
			job:    model.Job{Title: "Account Executive", Location: "Remote", PostedAt: daysAgo(1)},
			reason: ReasonTitle,
		},
		{
			name:   "title keyword match is case-insensitive",
			job:    model.Job{Title: "DEVOPS SPECIALIST", Location: "Remote", PostedAt: daysAgo(1)},
			accept: true,
		},
		{
			name:   "exclude phrase vetoes a matching title",
			job:    model.Job{Title: "Senior Backend Engineer", Location: "Remote", PostedAt: daysAgo(1)},
			reason: ReasonExcludedTitle,
		},
		{
			name:   "empty location passes",
			job:    model.Job{Title: "Go Developer", Location: "", PostedAt: daysAgo(1)},
			accept: true,
		},
		{
			name:   "location outside allow-list rejected",
			job:    model.Job{Title: "Go Developer", Location: "Sydney", PostedAt: daysAgo(1)},
			reason: ReasonLocation,
		},
		{
			name:   "restriction wins over allowed term",
			job:    model.Job{Title: "Go Developer", Location: "Remote - US applicants only", PostedAt: daysAgo(1)},
			reason: ReasonLocation,
		},
		{
			name:   "onsite phrase wins over allowed term",
			job:    model.Job{Title: "Go Developer", Location: "Hybrid (Europe)", PostedAt: daysAgo(1)},
			reason: ReasonLocation,
		},
		{
			name:   "posting exactly at the ceiling still passes",
			job:    model.Job{Title: "Go Developer", Location: "Remote", PostedAt: daysAgo(45)},
			accept: true,
		},
		{
			name:   "posting past the ceiling rejected",
			job:    model.Job{Title: "Go Developer", Location: "Remote", PostedAt: daysAgo(46)},
			reason: ReasonAge,
		},
		{
			name:   "unknown age passes by default",
			job:    model.Job{Title: "Go Developer", Location: "Remote"},
			accept: true,
		},
	}

	e := testEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Classify(tt.job, testNow)
			assert.Equal(t, tt.accept, got.Accept)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestClassify_UnknownAgeRejectPolicy(t *testing.T) {
	e := NewEngine(Config{
		TitleKeywords:    []string{"engineer"},
		AllowedLocations: []string{"remote"},
		UnknownAge:       UnknownAgeReject,
	})

	got := e.Classify(model.Job{Title: "Platform Engineer", Location: "Remote"}, testNow)
	assert.False(t, got.Accept)
	assert.Equal(t, ReasonAge, got.Reason)
}

func TestClassify_SameInputSameDecision(t *testing.T) {
	e := testEngine()
	job := model.Job{Title: "Frontend Developer", Location: "Worldwide", PostedAt: daysAgo(10)}

	first := e.Classify(job, testNow)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Classify(job, testNow))
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(Config{})

	assert.Equal(t, defaultMaxAge, e.maxAge)
	assert.Equal(t, UnknownAgePass, e.unknownAge)
	assert.NotEmpty(t, e.titleKeywords)
	assert.NotEmpty(t, e.allowedLocations)

	// Defaults come out lowercased so matching stays case-insensitive.
	for _, kw := range e.titleKeywords {
		assert.Equal(t, strings.ToLower(kw), kw)
	}
}
