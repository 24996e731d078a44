package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastScheduler() *Scheduler {
	s := New()
	s.tick = 5 * time.Millisecond
	return s
}

func TestEveryRunsRepeatedly(t *testing.T) {
	s := fastScheduler()
	var runs atomic.Int32
	s.Every(10 * time.Millisecond).Name("count").Run(func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestFirstRunWaitsOneInterval(t *testing.T) {
	s := fastScheduler()
	var runs atomic.Int32
	s.Every(time.Hour).Run(func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	s.Wait()
	assert.Zero(t, runs.Load())
}

func TestWithoutOverlappingSkips(t *testing.T) {
	s := fastScheduler()
	var running, maxRunning atomic.Int32
	release := make(chan struct{})

	s.Every(5 * time.Millisecond).WithoutOverlapping().Run(func(ctx context.Context) {
		n := running.Add(1)
		if n > maxRunning.Load() {
			maxRunning.Store(n)
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		running.Add(-1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(60 * time.Millisecond)
	close(release)
	cancel()
	s.Wait()
	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestPanicIsContained(t *testing.T) {
	s := fastScheduler()
	var after atomic.Int32
	s.Every(5 * time.Millisecond).Run(func(context.Context) { panic("boom") })
	s.Every(5 * time.Millisecond).Run(func(context.Context) { after.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return after.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestList(t *testing.T) {
	s := New()
	s.Every(time.Hour).Name("queue:retry-failed").Run(func(context.Context) {})
	s.Every(time.Minute).Run(func(context.Context) {})
	assert.Equal(t, []string{"queue:retry-failed  every 1h0m0s", "task-2  every 1m0s"}, s.List())
}
