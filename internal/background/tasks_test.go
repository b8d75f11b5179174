package background_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadrulez/roadrulez/internal/background"
)

func newTestRunner() *background.Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return background.NewRunner(logger, 2*time.Second)
}

func TestGo_RunsTask(t *testing.T) {
	r := newTestRunner()

	done := make(chan struct{})
	r.Go("test_task", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestGo_TaskErrorSwallowed(t *testing.T) {
	r := newTestRunner()

	r.Go("failing_task", func(ctx context.Context) error {
		return errors.New("boom")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, r.Shutdown(ctx))
}

func TestGo_PanicRecovered(t *testing.T) {
	r := newTestRunner()

	r.Go("panicking_task", func(ctx context.Context) error {
		panic("boom")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx), "runner should survive a panicking task")
}

func TestGo_TaskGetsDeadline(t *testing.T) {
	r := newTestRunner()

	got := make(chan bool, 1)
	r.Go("deadline_task", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		got <- ok
		return nil
	})

	select {
	case ok := <-got:
		assert.True(t, ok, "task context should carry the runner timeout")
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestShutdown_WaitsForInFlightTasks(t *testing.T) {
	r := newTestRunner()

	var finished atomic.Bool
	started := make(chan struct{})
	r.Go("slow_task", func(ctx context.Context) error {
		close(started)
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
	assert.True(t, finished.Load(), "shutdown returned before the task completed")
}

func TestShutdown_TimesOutOnStuckTask(t *testing.T) {
	r := newTestRunner()

	release := make(chan struct{})
	defer close(release)
	r.Go("stuck_task", func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, r.Shutdown(ctx))
}

func TestGo_DroppedAfterShutdown(t *testing.T) {
	r := newTestRunner()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))

	var ran atomic.Bool
	r.Go("late_task", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	time.Sleep(50 * time.Millisecond)
	assert.False(t, ran.Load(), "tasks submitted after shutdown must be dropped")
}
