// Package schedule runs recurring background tasks at fixed intervals.
//
//	s := schedule.New()
//	s.Every(time.Hour).Name("queue:retry-failed").WithoutOverlapping().Run(retry)
//	s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/marmita/pkg/logger"
)

// Task runs with the scheduler's context.
type Task func(ctx context.Context)

type entry struct {
	name      string
	interval  time.Duration
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler holds the entries and ticks them once started.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func New() *Scheduler {
	return &Scheduler{tick: time.Second, now: time.Now}
}

// Builder configures one entry until Run registers it.
type Builder struct {
	s *Scheduler
	e *entry
}

// Every starts an entry that runs each interval. The first run happens one
// interval after Start.
func (s *Scheduler) Every(interval time.Duration) *Builder {
	return &Builder{s: s, e: &entry{interval: interval}}
}

func (b *Builder) Name(name string) *Builder {
	b.e.name = name
	return b
}

// WithoutOverlapping skips a run while the previous one is still going.
func (b *Builder) WithoutOverlapping() *Builder {
	b.e.noOverlap = true
	return b
}

func (b *Builder) Run(task Task) {
	b.e.task = task
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.name == "" {
		b.e.name = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
}

// Start ticks in the background until ctx is done. Wait blocks until the
// loop and every running task have returned.
func (s *Scheduler) Start(ctx context.Context) {
	start := s.now()
	s.mu.Lock()
	for _, e := range s.entries {
		e.lastRun = start
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)
	logger.Info("schedule: started", "tasks", len(s.List()))
}

func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			current := append([]*entry(nil), s.entries...)
			s.mu.Unlock()
			for _, e := range current {
				s.dispatch(ctx, e, now)
			}
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if now.Sub(e.lastRun) < e.interval {
		e.mu.Unlock()
		return
	}
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: previous run still going, skipped", "task", e.name)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("schedule: task panicked", "task", e.name, "error", fmt.Sprint(rec))
			}
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()
		logger.Debug("schedule: running", "task", e.name)
		e.task(ctx)
	}()
}

// List describes the entries as "name  every <interval>".
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  every %s", e.name, e.interval))
	}
	return out
}
