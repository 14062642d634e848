package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nikmel/jobwire/internal/model"
)

// Result is the persisted outcome of the latest run: everything that passed
// the filter, whether or not it was new. Consumed by the companies listing
// and the browse TUI, and survives process restarts.
type Result struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Jobs        []model.Job `json:"jobs"`
}

// Companies returns the distinct company names in the result, sorted,
// companies with empty names omitted.
func (r Result) Companies() []string {
	set := make(map[string]bool)
	for _, j := range r.Jobs {
		name := strings.TrimSpace(j.Company)
		if name != "" {
			set[name] = true
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ResultCache reads and writes the latest-run result as JSON under the data
// directory.
type ResultCache struct {
	path string
}

// NewResultCache creates a cache rooted at dir.
func NewResultCache(dir string) *ResultCache {
	return &ResultCache{path: filepath.Join(dir, "latest_run.json")}
}

// Save writes the result, replacing the previous run's file atomically.
func (c *ResultCache) Save(r Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write results cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace results cache: %w", err)
	}
	return nil
}

// Load reads the latest result. A missing file yields an empty result, not an
// error: no run has happened yet.
func (c *ResultCache) Load() (Result, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("read results cache: %w", err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("parse results cache: %w", err)
	}
	return r, nil
}
