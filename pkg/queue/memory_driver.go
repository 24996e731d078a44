package queue

import (
	"context"
	"errors"
)

var ErrQueueFull = errors.New("queue: memory queue is full")

// MemoryDriver is a channel-backed queue for development and tests. Jobs
// do not survive a restart.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver buffers up to 1000 jobs.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1000)}
}

// Push never blocks; a full buffer is an error so the request path never
// waits on background work.
func (d *MemoryDriver) Push(_ context.Context, payload []byte) error {
	select {
	case d.ch <- payload:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}

// Len reports how many jobs are waiting.
func (d *MemoryDriver) Len() int { return len(d.ch) }
