// Package event is an in-process dispatcher for domain events. Services fire
// after their transaction commits; listeners log, count and publish.
//
//	event.Listen(OrderPlaced, func(ctx context.Context, p any) { ... })
//	event.Fire(ctx, OrderPlaced, payload)
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/marmita/pkg/logger"
)

// Handler receives the event payload. The type of payload is fixed per event
// name by whoever fires it.
type Handler func(ctx context.Context, payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(name string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], handler)
}

func listeners(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Handler(nil), handlers[name]...)
}

// Fire dispatches synchronously, in registration order. A panicking listener
// is logged and does not stop the others: the caller's work is already
// committed by the time events fire.
func Fire(ctx context.Context, name string, payload interface{}) {
	for _, h := range listeners(name) {
		call(ctx, name, h, payload)
	}
}

// FireAsync dispatches to every listener on its own goroutine and returns
// immediately. The context passed to listeners is detached from ctx's
// cancellation so a finished request does not abort them.
func FireAsync(ctx context.Context, name string, payload interface{}) {
	detached := context.WithoutCancel(ctx)
	for _, h := range listeners(name) {
		go call(detached, name, h, payload)
	}
}

func call(ctx context.Context, name string, h Handler, payload interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "error", fmt.Sprint(rec))
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
