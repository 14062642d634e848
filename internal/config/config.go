package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nikmel/jobwire/internal/filter"
)

// Config is the root configuration for the jobwire pipeline.
type Config struct {
	Interval      time.Duration // how often the scheduler triggers a run
	SourceTimeout time.Duration // per-source fetch budget
	DataDir       string        // durable location for the dedup db and results cache
	HandlesFile   string        // company → X handle YAML mapping
	Telegram      TelegramConfig
	Sources       SourcesConfig
	Filters       filter.Config
	Retry         RetryConfig
	RateLimit     RateLimitConfig
}

// TelegramConfig holds the delivery channel credentials. When the token is
// empty, delivery falls back to the log notifier.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// SourcesConfig lists the configured source adapters by family.
type SourcesConfig struct {
	Feeds      []FeedConfig  `yaml:"feeds"`
	Boards     []BoardConfig `yaml:"boards"`
	Greenhouse []OrgConfig   `yaml:"greenhouse"`
	Lever      []OrgConfig   `yaml:"lever"`
	Channels   []string      `yaml:"channels"`
}

// FeedConfig describes one RSS/Atom feed source.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// BoardConfig describes one HTML board source with its layout selectors.
type BoardConfig struct {
	Name      string          `yaml:"name"`
	URL       string          `yaml:"url"`
	Selectors SelectorsConfig `yaml:"selectors"`
}

// SelectorsConfig mirrors adapter.BoardSelectors in YAML form.
type SelectorsConfig struct {
	Row      string `yaml:"row"`
	Title    string `yaml:"title"`
	Link     string `yaml:"link"`
	Company  string `yaml:"company"`
	Location string `yaml:"location"`
	Time     string `yaml:"time"`
}

// OrgConfig describes one organization on a structured-API source.
type OrgConfig struct {
	Token   string `yaml:"token"` // board token (Greenhouse) or slug (Lever)
	Company string `yaml:"company"`
}

// RetryConfig controls the per-adapter retry decorator.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// RateLimitConfig controls the per-family rate limiter.
type RateLimitConfig struct {
	MinDelay time.Duration
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Interval      string            `yaml:"interval"`
	SourceTimeout string            `yaml:"source_timeout"`
	DataDir       string            `yaml:"data_dir"`
	HandlesFile   string            `yaml:"handles_file"`
	Telegram      rawTelegramConfig `yaml:"telegram"`
	Sources       SourcesConfig     `yaml:"sources"`
	Filters       rawFilterConfig   `yaml:"filters"`
	Retry         rawRetryConfig    `yaml:"retry"`
	RateLimit     rawRateLimit      `yaml:"rate_limit"`
}

type rawTelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

type rawFilterConfig struct {
	TitleKeywords      []string `yaml:"title_keywords"`
	ExcludeTitles      []string `yaml:"exclude_titles"`
	Locations          []string `yaml:"locations"`
	RestrictedPatterns []string `yaml:"restricted_locations"`
	OnsitePatterns     []string `yaml:"onsite_patterns"`
	MaxAge             string   `yaml:"max_age"`
	UnknownAge         string   `yaml:"unknown_age"`
}

type rawRetryConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawRateLimit struct {
	MinDelay string `yaml:"min_delay"`
}

// Load reads .env (if present), then reads and parses the YAML config file at
// path, expands environment variables, validates, and returns Config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables so secrets stay out of the file.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 6 * time.Hour // default: every 6 hours
	if raw.Interval != "" {
		interval, err = time.ParseDuration(raw.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse interval %q: %w", raw.Interval, err)
		}
	}

	sourceTimeout := 2 * time.Minute
	if raw.SourceTimeout != "" {
		sourceTimeout, err = time.ParseDuration(raw.SourceTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse source_timeout %q: %w", raw.SourceTimeout, err)
		}
	}

	maxAge := 45 * 24 * time.Hour // default: 45 days
	if raw.Filters.MaxAge != "" {
		maxAge, err = time.ParseDuration(raw.Filters.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("parse filters.max_age %q: %w", raw.Filters.MaxAge, err)
		}
	}

	baseDelay := 5 * time.Second
	if raw.Retry.BaseDelay != "" {
		baseDelay, err = time.ParseDuration(raw.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse retry.base_delay %q: %w", raw.Retry.BaseDelay, err)
		}
	}

	minDelay := 2 * time.Second
	if raw.RateLimit.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	var chatID int64
	if raw.Telegram.ChatID != "" {
		chatID, err = strconv.ParseInt(raw.Telegram.ChatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse telegram.chat_id %q: %w", raw.Telegram.ChatID, err)
		}
	}

	maxRetries := raw.Retry.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}

	dataDir := raw.DataDir
	if dataDir == "" {
		dataDir = "data"
	}

	cfg := &Config{
		Interval:      interval,
		SourceTimeout: sourceTimeout,
		DataDir:       dataDir,
		HandlesFile:   raw.HandlesFile,
		Telegram: TelegramConfig{
			Token:  raw.Telegram.Token,
			ChatID: chatID,
		},
		Sources: raw.Sources,
		Filters: filter.Config{
			TitleKeywords:      raw.Filters.TitleKeywords,
			ExcludeTitles:      raw.Filters.ExcludeTitles,
			AllowedLocations:   raw.Filters.Locations,
			RestrictedPatterns: raw.Filters.RestrictedPatterns,
			OnsitePatterns:     raw.Filters.OnsitePatterns,
			MaxAge:             maxAge,
			UnknownAge:         filter.UnknownAgePolicy(raw.Filters.UnknownAge),
		},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
		},
		RateLimit: RateLimitConfig{
			MinDelay: minDelay,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SourceCount returns the number of configured sources across all families.
func (s SourcesConfig) SourceCount() int {
	return len(s.Feeds) + len(s.Boards) + len(s.Greenhouse) + len(s.Lever) + len(s.Channels)
}

func validate(cfg *Config) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.Sources.SourceCount() == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	if cfg.Filters.MaxAge <= 0 {
		return fmt.Errorf("filters.max_age must be positive, got %v", cfg.Filters.MaxAge)
	}
	switch cfg.Filters.UnknownAge {
	case "", filter.UnknownAgePass, filter.UnknownAgeReject:
	default:
		return fmt.Errorf("filters.unknown_age must be %q or %q, got %q",
			filter.UnknownAgePass, filter.UnknownAgeReject, cfg.Filters.UnknownAge)
	}
	for _, b := range cfg.Sources.Boards {
		if b.Name == "" || b.URL == "" {
			return fmt.Errorf("every board needs a name and url")
		}
		if b.Selectors.Row == "" || b.Selectors.Title == "" || b.Selectors.Link == "" {
			return fmt.Errorf("board %s needs at least row, title, and link selectors", b.Name)
		}
	}
	for _, f := range cfg.Sources.Feeds {
		if f.Name == "" || f.URL == "" {
			return fmt.Errorf("every feed needs a name and url")
		}
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when telegram.token is set")
	}
	return nil
}
