package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Software Engineer",
			want:  "Software Engineer",
		},
		{
			name:  "tags stripped",
			input: "<p>Backend <b>Engineer</b></p>",
			want:  "Backend Engineer",
		},
		{
			name:  "entities unescaped",
			input: "Engineering &amp; Operations",
			want:  "Engineering & Operations",
		},
		{
			name:  "double-encoded payload",
			input: "&lt;div&gt;Platform Engineer&lt;/div&gt;",
			want:  "Platform Engineer",
		},
		{
			name:  "whitespace collapsed",
			input: "  Data\n\tEngineer  ",
			want:  "Data Engineer",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractText(tt.input))
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 120*time.Second, parseRetryAfter("120"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2026 07:28:00 GMT"))
}

func TestParsePostedAt(t *testing.T) {
	utc := func(year int, month time.Month, day, hour, min, sec int) *time.Time {
		t := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"unix milliseconds", "1717200000000", utc(2024, time.June, 1, 0, 0, 0)},
		{"unix seconds", "1717200000", utc(2024, time.June, 1, 0, 0, 0)},
		{"rfc3339", "2024-06-01T12:30:00Z", utc(2024, time.June, 1, 12, 30, 0)},
		{"rfc3339 with offset", "2024-06-01T14:30:00+02:00", utc(2024, time.June, 1, 12, 30, 0)},
		{"naive datetime", "2024-06-01T12:30:00", utc(2024, time.June, 1, 12, 30, 0)},
		{"space-separated datetime", "2024-06-01 12:30:00", utc(2024, time.June, 1, 12, 30, 0)},
		{"date only", "2024-06-01", utc(2024, time.June, 1, 0, 0, 0)},
		{"rfc1123z", "Sat, 01 Jun 2024 12:30:00 +0000", utc(2024, time.June, 1, 12, 30, 0)},
		{"empty", "", nil},
		{"zero", "0", nil},
		{"python none", "None", nil},
		{"odd digit count", "123456", nil},
		{"garbage", "yesterday-ish", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePostedAt(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %s, got %s", tt.want, got)
		})
	}
}
