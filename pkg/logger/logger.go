// Package logger provides the application's structured logger, built on log/slog.
//
// Every request gets a child logger tagged with its request_id (see
// middleware.Logger); handlers and services fetch it with WithCtx:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", order.ID)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/shashiranjanraj/marmita/config"
)

var (
	L *slog.Logger

	mu   sync.Mutex
	base slog.Handler
)

func init() {
	base = newHandler(os.Stdout)
	L = slog.New(base)
	slog.SetDefault(L)
}

func newHandler(w io.Writer) slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Attach fans every subsequent record out to h as well as stdout.
func Attach(h slog.Handler) {
	mu.Lock()
	defer mu.Unlock()

	L = slog.New(NewMultiHandler(base, h))
	slog.SetDefault(L)
}

// SetOutput replaces the stdout handler. Tests use it to capture or silence logs.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	base = newHandler(w)
	L = slog.New(base)
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }

// LevelFor maps an HTTP status to the level its request line is logged at.
func LevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
