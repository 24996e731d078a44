// Package queue runs background jobs with retries. Jobs travel JSON-encoded
// through a Driver (in-memory or Redis). A job that fails every attempt is
// stored as a FailedJob and can be pushed back later with Retry.
//
//	queue.Register(func() queue.Job { return &PublishEvent{pub: pub} })
//	_ = queue.Dispatch(ctx, &PublishEvent{Event: "order.placed", ...})
//	wait := queue.Start(ctx, 2)
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/pkg/logger"
)

// Job is a unit of background work. Exported fields are the payload;
// unexported fields are filled by the factory given to Register.
type Job interface {
	Handle(ctx context.Context) error
}

// Driver stores encoded jobs. Pop returns (nil, nil) when nothing arrived
// before its own timeout.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

var ErrUnknownJob = errors.New("queue: unregistered job type")

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Manager owns a driver, the job registry and the failed-job store.
type Manager struct {
	mu          sync.RWMutex
	driver      Driver
	registry    map[string]func() Job
	maxAttempts int
	backoff     func(attempt int) time.Duration
	db          *gorm.DB

	failedMu sync.Mutex
	failed   []FailedJob
	nextID   uint
}

func New(d Driver) *Manager {
	return &Manager{
		driver:      d,
		registry:    map[string]func() Job{},
		maxAttempts: 3,
		backoff:     func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
}

// SetDriver swaps the storage, e.g. to Redis once it is reachable.
func (m *Manager) SetDriver(d Driver) {
	m.mu.Lock()
	m.driver = d
	m.mu.Unlock()
}

// UseDB keeps failed jobs in the failed_jobs table instead of memory.
func (m *Manager) UseDB(db *gorm.DB) {
	m.mu.Lock()
	m.db = db
	m.mu.Unlock()
}

// SetRetry sets the attempts per job and the wait before each retry.
func (m *Manager) SetRetry(attempts int, backoff func(attempt int) time.Duration) {
	if attempts < 1 {
		attempts = 1
	}
	m.mu.Lock()
	m.maxAttempts, m.backoff = attempts, backoff
	m.mu.Unlock()
}

// Register makes a job type decodable. The type name is taken from the
// value the factory returns.
func (m *Manager) Register(factory func() Job) {
	m.mu.Lock()
	m.registry[typeName(factory())] = factory
	m.mu.Unlock()
}

func typeName(j Job) string { return fmt.Sprintf("%T", j) }

// Dispatch encodes job and pushes it.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	name := typeName(job)
	m.mu.RLock()
	_, known := m.registry[name]
	d := m.driver
	m.mu.RUnlock()
	if !known {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal %s: %w", name, err)
	}
	return m.push(ctx, d, envelope{Type: name, Payload: payload})
}

func (m *Manager) push(ctx context.Context, d Driver, env envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}
	if err := d.Push(ctx, raw); err != nil {
		return fmt.Errorf("queue: push %s: %w", env.Type, err)
	}
	return nil
}

// Start launches n workers that run until ctx is cancelled. The returned
// function blocks until they have all stopped.
func (m *Manager) Start(ctx context.Context, n int) (wait func()) {
	if n < 1 {
		n = 1
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	return wg.Wait
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw != nil {
			m.process(ctx, raw)
		}
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	attempts, backoff := m.maxAttempts, m.backoff
	m.mu.RUnlock()
	if !ok {
		m.fail(ctx, env, ErrUnknownJob, 0)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		m.fail(ctx, env, fmt.Errorf("decode payload: %w", err), 0)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = run(ctx, job); lastErr == nil {
			logger.Debug("queue: job processed", "type", env.Type, "attempt", attempt)
			return
		}
		logger.Warn("queue: job failed", "type", env.Type, "attempt", attempt, "error", lastErr)
		if attempt < attempts && !sleep(ctx, backoff(attempt)) {
			break
		}
	}
	m.fail(ctx, env, lastErr, attempts)
}

// run calls Handle, turning a panic into an error.
func run(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return job.Handle(ctx)
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// ── Package-level manager ────────────────────────────────────────────────────

var std = New(NewMemoryDriver())

func SetDriver(d Driver)                                     { std.SetDriver(d) }
func UseDB(db *gorm.DB)                                      { std.UseDB(db) }
func SetRetry(attempts int, backoff func(int) time.Duration) { std.SetRetry(attempts, backoff) }
func Register(factory func() Job)                            { std.Register(factory) }
func Dispatch(ctx context.Context, job Job) error            { return std.Dispatch(ctx, job) }
func Start(ctx context.Context, n int) func()                { return std.Start(ctx, n) }
func Failed(ctx context.Context) ([]FailedJob, error)        { return std.Failed(ctx) }
func Retry(ctx context.Context, id uint) error               { return std.Retry(ctx, id) }
func RetryAll(ctx context.Context) (int, error)              { return std.RetryAll(ctx) }
