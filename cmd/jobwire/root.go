package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikmel/jobwire/internal/adapter"
	"github.com/nikmel/jobwire/internal/config"
	"github.com/nikmel/jobwire/internal/filter"
	"github.com/nikmel/jobwire/internal/model"
	"github.com/nikmel/jobwire/internal/pipeline"
	"github.com/nikmel/jobwire/internal/ratelimit"
	"github.com/nikmel/jobwire/internal/retry"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobwire",
	Short: "Remote marketing job radar",
	Long:  "jobwire gathers postings from feeds, boards, hiring APIs, and channels,\nfilters them down to remote marketing roles, and delivers new ones to Telegram.",
	// Default to `start` so that `jobwire` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBWIRE_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBWIRE_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBWIRE_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// buildAdapters constructs one SourceAdapter per configured source, each
// wrapped with retry and family-level rate limiting.
func buildAdapters(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.SourceAdapter {
	limiter := ratelimit.NewSourceLimiter(cfg.RateLimit.MinDelay)

	wrap := func(a model.SourceAdapter, family string) model.SourceAdapter {
		a = ratelimit.NewLimitedAdapter(a, limiter, family)
		return retry.New(a, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
	}

	var adapters []model.SourceAdapter
	for _, f := range cfg.Sources.Feeds {
		adapters = append(adapters, wrap(adapter.NewFeedAdapter(f.Name, f.URL, httpClient), "feed"))
	}
	for _, b := range cfg.Sources.Boards {
		sel := adapter.BoardSelectors{
			Row:      b.Selectors.Row,
			Title:    b.Selectors.Title,
			Link:     b.Selectors.Link,
			Company:  b.Selectors.Company,
			Location: b.Selectors.Location,
			Time:     b.Selectors.Time,
		}
		adapters = append(adapters, wrap(adapter.NewBoardAdapter(b.Name, b.URL, sel, httpClient, logger), "board"))
	}
	if len(cfg.Sources.Greenhouse) > 0 {
		orgs := make([]adapter.GreenhouseOrg, 0, len(cfg.Sources.Greenhouse))
		for _, o := range cfg.Sources.Greenhouse {
			orgs = append(orgs, adapter.GreenhouseOrg{BoardToken: o.Token, Company: o.Company})
		}
		adapters = append(adapters, wrap(adapter.NewGreenhouseAdapter(orgs, httpClient), "greenhouse"))
	}
	if len(cfg.Sources.Lever) > 0 {
		orgs := make([]adapter.LeverOrg, 0, len(cfg.Sources.Lever))
		for _, o := range cfg.Sources.Lever {
			orgs = append(orgs, adapter.LeverOrg{Slug: o.Token, Company: o.Company})
		}
		adapters = append(adapters, wrap(adapter.NewLeverAdapter(orgs, httpClient), "lever"))
	}
	for _, ch := range cfg.Sources.Channels {
		adapters = append(adapters, wrap(adapter.NewChannelAdapter(ch, httpClient, logger), "channel"))
	}

	for _, a := range adapters {
		logger.Info("registered source", "source", a.Name())
	}
	return adapters
}

// buildPipeline assembles a pipeline over the given store and notifier.
func buildPipeline(cfg *config.Config, seenStore model.SeenStore, n model.Notifier, cache *pipeline.ResultCache, logger *slog.Logger) *pipeline.Pipeline {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	adapters := buildAdapters(cfg, httpClient, logger)
	engine := filter.NewEngine(cfg.Filters)
	return pipeline.New(adapters, engine, seenStore, n, cache, cfg.SourceTimeout, logger)
}

func dbPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "jobs.db")
}
