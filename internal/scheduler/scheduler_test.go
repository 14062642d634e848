package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikmel/jobwire/internal/pipeline"
)

type fakeRunner struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (f *fakeRunner) Run(ctx context.Context, opts pipeline.Options) (pipeline.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return pipeline.Summary{}, f.err
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunTriggersImmediatelyThenOnInterval(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.count() >= 1 }, time.Second, time.Millisecond,
		"first run happens without waiting for a tick")
	require.Eventually(t, func() bool { return runner.count() >= 3 }, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done, "cancellation is a clean shutdown")
}

func TestRunSurvivesRunnerErrors(t *testing.T) {
	runner := &fakeRunner{err: pipeline.ErrRunInProgress}
	s := NewScheduler(runner, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return runner.count() >= 2 }, time.Second, time.Millisecond,
		"a busy tick is skipped, not fatal")

	cancel()
	assert.NoError(t, <-done)
}
