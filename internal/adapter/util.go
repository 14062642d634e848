package adapter

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles double-encoded API payloads;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// parsePostedAt tries every date shape the sources are known to emit and
// returns a UTC time, or nil when the value is absent or unrecognizable.
// Shapes: unix milliseconds (13 digits), unix seconds (10 digits), RFC 3339
// with or without fraction, date-only, and the RFC 1123/822 variants feeds use.
func parsePostedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" || raw == "None" {
		return nil
	}

	if digitsOnly.MatchString(raw) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil
		}
		var t time.Time
		switch len(raw) {
		case 13:
			t = time.UnixMilli(n).UTC()
		case 10:
			t = time.Unix(n, 0).UTC()
		default:
			return nil
		}
		return &t
	}

	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
