package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/marmita/pkg/logger"
)

// ErrFailedJobNotFound is returned by Retry for an unknown id.
var ErrFailedJobNotFound = errors.New("queue: failed job not found")

// FailedJob is a job that exhausted its attempts. With UseDB it is a row of
// failed_jobs; otherwise it lives in memory until the process exits.
type FailedJob struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	JobType  string    `gorm:"size:255;not null;index" json:"job_type"`
	Payload  string    `gorm:"type:text;not null" json:"payload"`
	Error    string    `gorm:"type:text" json:"error"`
	Attempts int       `gorm:"not null;default:0" json:"attempts"`
	FailedAt time.Time `gorm:"not null" json:"failed_at"`
}

func (FailedJob) TableName() string { return "failed_jobs" }

func (m *Manager) database() *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *Manager) fail(ctx context.Context, env envelope, cause error, attempts int) {
	rec := FailedJob{
		JobType:  env.Type,
		Payload:  string(env.Payload),
		Error:    cause.Error(),
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	logger.Error("queue: job failed permanently", "type", env.Type, "attempts", attempts, "error", cause)

	if db := m.database(); db != nil {
		err := db.WithContext(ctx).Create(&rec).Error
		if err == nil {
			return
		}
		logger.Error("queue: store failed job", "type", env.Type, "error", err)
	}

	m.failedMu.Lock()
	m.nextID++
	rec.ID = m.nextID
	m.failed = append(m.failed, rec)
	m.failedMu.Unlock()
}

// Failed lists failed jobs, oldest first.
func (m *Manager) Failed(ctx context.Context) ([]FailedJob, error) {
	if db := m.database(); db != nil {
		var out []FailedJob
		if err := db.WithContext(ctx).Order("id asc").Find(&out).Error; err != nil {
			return nil, fmt.Errorf("queue: list failed jobs: %w", err)
		}
		return out, nil
	}

	m.failedMu.Lock()
	defer m.failedMu.Unlock()
	return append([]FailedJob(nil), m.failed...), nil
}

// Retry pushes a failed job back onto the queue and forgets the failure.
func (m *Manager) Retry(ctx context.Context, id uint) error {
	rec, err := m.takeFailed(ctx, id)
	if err != nil {
		return err
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()
	return m.push(ctx, d, envelope{Type: rec.JobType, Payload: []byte(rec.Payload)})
}

// RetryAll retries every failed job and returns how many were pushed.
func (m *Manager) RetryAll(ctx context.Context) (int, error) {
	failed, err := m.Failed(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range failed {
		if err := m.Retry(ctx, f.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (m *Manager) takeFailed(ctx context.Context, id uint) (FailedJob, error) {
	if db := m.database(); db != nil {
		var rec FailedJob
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&rec, id).Error; err != nil {
				return err
			}
			return tx.Delete(&FailedJob{}, id).Error
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FailedJob{}, ErrFailedJobNotFound
		}
		if err != nil {
			return FailedJob{}, fmt.Errorf("queue: take failed job %d: %w", id, err)
		}
		return rec, nil
	}

	m.failedMu.Lock()
	defer m.failedMu.Unlock()
	for i, f := range m.failed {
		if f.ID == id {
			m.failed = append(m.failed[:i], m.failed[i+1:]...)
			return f, nil
		}
	}
	return FailedJob{}, ErrFailedJobNotFound
}
