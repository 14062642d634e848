package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikmel/jobwire/internal/filter"
	"github.com/nikmel/jobwire/internal/model"
)

// ErrRunInProgress is returned when Run is called while a previous run is
// still active. Runs are never queued; the caller retries later.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Options tweak a single run.
type Options struct {
	// IgnoreSeen skips the dedup store entirely: every accepted record is
	// delivered and nothing is marked. Used by the on-demand "all current
	// jobs" command.
	IgnoreSeen bool
}

// Summary reports what one run did. It is always producible, even when every
// source failed.
type Summary struct {
	Fetched      int
	Accepted     int
	New          int
	AlreadySeen  int
	Rejected     map[filter.Reason]int
	SourceErrors map[string]error // keyed by adapter name; partial fetches included
	Delivered    []model.Job      // the sorted "new" list handed to the notifier
}

// FailedSources returns the number of sources that reported an error.
func (s Summary) FailedSources() int { return len(s.SourceErrors) }

// Pipeline drives one complete run: concurrent fetch, merge, in-batch dedup,
// filter, store partition, mark seen, recency sort, delivery.
type Pipeline struct {
	adapters      []model.SourceAdapter
	engine        *filter.Engine
	store         model.SeenStore
	notifier      model.Notifier
	cache         *ResultCache // nil disables the results cache
	sourceTimeout time.Duration
	logger        *slog.Logger

	mu sync.Mutex // at most one run active at a time
}

// New wires a pipeline with all its dependencies. cache may be nil.
func New(
	adapters []model.SourceAdapter,
	engine *filter.Engine,
	seenStore model.SeenStore,
	notifier model.Notifier,
	cache *ResultCache,
	sourceTimeout time.Duration,
	logger *slog.Logger,
) *Pipeline {
	if sourceTimeout <= 0 {
		sourceTimeout = 2 * time.Minute
	}
	return &Pipeline{
		adapters:      adapters,
		engine:        engine,
		store:         seenStore,
		notifier:      notifier,
		cache:         cache,
		sourceTimeout: sourceTimeout,
		logger:        logger,
	}
}

// Run executes one fetch→filter→dedup→deliver cycle. It is re-entrant by
// time: no state leaks across calls beyond the seen store. A run with zero
// new records is a normal outcome, not an error. A store failure aborts the
// run before anything is marked or delivered.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Summary, error) {
	if !p.mu.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer p.mu.Unlock()

	now := time.Now().UTC()
	summary := Summary{
		Rejected:     make(map[filter.Reason]int),
		SourceErrors: make(map[string]error),
	}

	raw := p.fetchAll(ctx, &summary)
	summary.Fetched = len(raw)

	// In-batch dedup: the same posting can arrive from two adapters or from
	// malformed pagination. Keep the first occurrence.
	candidates := dedupeBatch(raw)

	var accepted []model.Job
	for _, job := range candidates {
		d := p.engine.Classify(job, now)
		if !d.Accept {
			summary.Rejected[d.Reason]++
			continue
		}
		accepted = append(accepted, job)
	}
	summary.Accepted = len(accepted)

	fresh := accepted
	if !opts.IgnoreSeen {
		var err error
		fresh, err = p.partitionNew(accepted, &summary)
		if err != nil {
			return summary, err
		}

		// Mark before delivering. If delivery then fails the records are
		// lost for future runs; the alternative would redeliver on every
		// failure. Documented tradeoff.
		for _, job := range fresh {
			if err := p.store.MarkSeen(job.ID, now); err != nil {
				return summary, fmt.Errorf("marking %s seen: %w", job.ID, err)
			}
		}
	}
	summary.New = len(fresh)

	sortByRecency(fresh)
	for i := range fresh {
		fresh[i].FirstSeen = now
	}
	summary.Delivered = fresh

	if p.cache != nil {
		if err := p.cache.Save(Result{GeneratedAt: now, Jobs: accepted}); err != nil {
			// The cache only feeds the companies listing and the TUI;
			// a write failure must not fail the run.
			p.logger.Warn("failed to write results cache", "error", err)
		}
	}

	if len(fresh) > 0 {
		if err := p.notifier.Notify(fresh); err != nil {
			p.logger.Error("delivery failed, records already marked seen",
				"count", len(fresh),
				"error", err,
			)
		}
	}

	p.logger.Info("run complete",
		"fetched", summary.Fetched,
		"accepted", summary.Accepted,
		"new", summary.New,
		"already_seen", summary.AlreadySeen,
		"failed_sources", summary.FailedSources(),
	)

	return summary, nil
}

// fetchAll invokes every adapter concurrently, each under its own timeout.
// A failed adapter contributes whatever partial records it returned; it never
// aborts its siblings.
func (p *Pipeline) fetchAll(ctx context.Context, summary *Summary) []model.Job {
	type fetchResult struct {
		name string
		jobs []model.Job
		err  error
	}

	results := make(chan fetchResult, len(p.adapters))

	var g errgroup.Group
	for _, a := range p.adapters {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, p.sourceTimeout)
			defer cancel()

			jobs, err := a.Fetch(fctx)
			results <- fetchResult{name: a.Name(), jobs: jobs, err: err}
			return nil // soft failure: don't cancel siblings
		})
	}
	g.Wait()
	close(results)

	var merged []model.Job
	for res := range results {
		if res.err != nil {
			p.logger.Warn("source fetch failed",
				"source", res.name,
				"partial", len(res.jobs),
				"error", res.err,
			)
			summary.SourceErrors[res.name] = res.err
		}
		merged = append(merged, res.jobs...)
	}
	return merged
}

// partitionNew splits accepted records into new vs. already-seen. Any store
// error is fatal: without durable dedup state, delivering risks duplicates on
// the next run.
func (p *Pipeline) partitionNew(accepted []model.Job, summary *Summary) ([]model.Job, error) {
	var fresh []model.Job
	for _, job := range accepted {
		seen, err := p.store.HasSeen(job.ID)
		if err != nil {
			return nil, fmt.Errorf("checking seen status for %s: %w", job.ID, err)
		}
		if seen {
			summary.AlreadySeen++
			continue
		}
		fresh = append(fresh, job)
	}
	return fresh, nil
}

// dedupeBatch drops in-run duplicate identities, keeping the first occurrence.
func dedupeBatch(jobs []model.Job) []model.Job {
	seen := make(map[string]bool, len(jobs))
	out := jobs[:0:0]
	for _, j := range jobs {
		if seen[j.ID] {
			continue
		}
		seen[j.ID] = true
		out = append(out, j)
	}
	return out
}

// sortByRecency orders newest-first; records without a posted date sort last,
// original order otherwise preserved.
func sortByRecency(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i].PostedAt, jobs[j].PostedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
