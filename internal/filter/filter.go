package filter

import (
	"strings"
	"time"

	"github.com/nikmel/jobwire/internal/model"
)

// Reason explains why a record was rejected.
type Reason string

const (
	ReasonTitle         Reason = "title"          // no relevance keyword in the title
	ReasonExcludedTitle Reason = "excluded_title" // title matched an exclude phrase
	ReasonLocation      Reason = "location"       // location outside the allow-list or restricted
	ReasonAge           Reason = "age"            // posted too long ago
)

// Decision is the outcome of classifying one record.
type Decision struct {
	Accept bool
	Reason Reason // set only when Accept is false
}

// UnknownAgePolicy decides the fate of records without a posted date.
type UnknownAgePolicy string

const (
	UnknownAgePass   UnknownAgePolicy = "pass"   // cannot penalize a record for unknown age
	UnknownAgeReject UnknownAgePolicy = "reject"
)

// Config holds the filter vocabularies. Zero-value slices fall back to the
// built-in defaults; MaxAge falls back to 45 days.
type Config struct {
	TitleKeywords      []string
	ExcludeTitles      []string
	AllowedLocations   []string
	RestrictedPatterns []string
	OnsitePatterns     []string
	MaxAge             time.Duration
	UnknownAge         UnknownAgePolicy
}

// Engine classifies job records against the configured vocabularies. It is
// stateless: the same record and clock always produce the same decision.
type Engine struct {
	titleKeywords      []string
	excludeTitles      []string
	allowedLocations   []string
	restrictedPatterns []string
	onsitePatterns     []string
	maxAge             time.Duration
	unknownAge         UnknownAgePolicy
}

// NewEngine builds an engine from cfg, filling gaps with the defaults.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		titleKeywords:      lowerAll(cfg.TitleKeywords, defaultTitleKeywords),
		excludeTitles:      lowerAll(cfg.ExcludeTitles, defaultExcludeTitles),
		allowedLocations:   lowerAll(cfg.AllowedLocations, defaultAllowedLocations),
		restrictedPatterns: lowerAll(cfg.RestrictedPatterns, defaultRestrictedPatterns),
		onsitePatterns:     lowerAll(cfg.OnsitePatterns, defaultOnsitePatterns),
		maxAge:             cfg.MaxAge,
		unknownAge:         cfg.UnknownAge,
	}
	if e.maxAge <= 0 {
		e.maxAge = defaultMaxAge
	}
	if e.unknownAge == "" {
		e.unknownAge = UnknownAgePass
	}
	return e
}

// Classify runs the three checks in order: title relevance, location
// allow-list, age ceiling. All must pass. Pure: no side effects, no ordering
// dependency between records.
func (e *Engine) Classify(job model.Job, now time.Time) Decision {
	title := strings.ToLower(job.Title)

	if !containsAny(title, e.titleKeywords) {
		return Decision{Reason: ReasonTitle}
	}
	if containsAny(title, e.excludeTitles) {
		return Decision{Reason: ReasonExcludedTitle}
	}
	if !e.locationAllowed(job.Location) {
		return Decision{Reason: ReasonLocation}
	}
	if !e.freshEnough(job.PostedAt, now) {
		return Decision{Reason: ReasonAge}
	}
	return Decision{Accept: true}
}

// locationAllowed applies the allow-list with restriction precedence:
//   - empty location passes (assume remote / unknown)
//   - a restriction or on-site phrase rejects even when an allowed term is
//     also present ("Remote - US only" is rejected)
//   - otherwise the text must contain at least one allowed term
func (e *Engine) locationAllowed(location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return true
	}
	if containsAny(loc, e.restrictedPatterns) {
		return false
	}
	if containsAny(loc, e.onsitePatterns) {
		return false
	}
	return containsAny(loc, e.allowedLocations)
}

// freshEnough applies the age ceiling. Postings exactly MaxAge old still pass;
// records without a date follow the unknown-age policy.
func (e *Engine) freshEnough(postedAt *time.Time, now time.Time) bool {
	if postedAt == nil {
		return e.unknownAge == UnknownAgePass
	}
	return now.Sub(*postedAt) <= e.maxAge
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// lowerAll lowercases the given list, or the fallback when the list is empty.
func lowerAll(list, fallback []string) []string {
	if len(list) == 0 {
		list = fallback
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
