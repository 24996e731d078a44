// Package session provides cookie-identified, server-side HTTP sessions.
//
// Usage (middleware):
//
//	r.Use(session.Middleware(store, session.DefaultOptions()))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Set("user_id", 42)
//	uid, _ := sess.GetUint("user_id")
//
// Changed sessions are persisted automatically right before the response
// headers are written.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/shashiranjanraj/marmita/config"
	"github.com/shashiranjanraj/marmita/pkg/logger"
)

// Options configures the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: config.SessionCookie(),
		TTL:        config.SessionTTL(),
		HTTPOnly:   true,
		Secure:     config.IsProduction(),
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

// Session is the per-request handle on one browser session.
type Session struct {
	id      string
	data    map[string]interface{}
	store   Store
	opts    Options
	changed bool
	stale   []string // ids to destroy on save (after Regenerate / Invalidate)
}

func newID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; !ok {
		return
	}
	delete(s.data, key)
	s.changed = true
}

func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key].(string)
	return v, ok
}

// GetUint handles both native values and JSON numbers read back from the store.
func (s *Session) GetUint(key string) (uint, bool) {
	switch n := s.data[key].(type) {
	case uint:
		return n, true
	case int:
		return uint(n), n >= 0
	case float64:
		return uint(n), n >= 0
	}
	return 0, false
}

// Regenerate moves the data to a fresh id. Call it on login.
func (s *Session) Regenerate() {
	s.stale = append(s.stale, s.id)
	s.id = newID()
	s.changed = true
}

// Invalidate wipes the data and rotates the id. Call it on logout.
func (s *Session) Invalidate() {
	s.data = map[string]interface{}{}
	s.Regenerate()
}

// Save persists changed data and (re)issues the cookie.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	for _, old := range s.stale {
		_ = s.store.Destroy(ctx, old)
	}
	s.stale = nil

	if err := s.store.Save(ctx, s.id, s.data, s.opts.TTL); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// saveOnWrite persists the session the first time the handler writes headers.
type saveOnWrite struct {
	http.ResponseWriter
	sess  *Session
	ctx   context.Context
	saved bool
}

func (w *saveOnWrite) persist() {
	if w.saved {
		return
	}
	w.saved = true
	if err := w.sess.Save(w.ctx, w.ResponseWriter); err != nil {
		logger.WithCtx(w.ctx).Error("session: save failed", "error", err)
	}
}

func (w *saveOnWrite) WriteHeader(code int) {
	w.persist()
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveOnWrite) Write(b []byte) (int, error) {
	w.persist()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach Flush and Hijack. Streaming
// handlers must not change the session.
func (w *saveOnWrite) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Middleware loads (or starts) the session and injects it into the context.
func Middleware(store Store, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{store: store, opts: opts}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				data, err := store.Load(r.Context(), cookie.Value)
				if err != nil {
					logger.WithCtx(r.Context()).Warn("session: load failed", "error", err)
				}
				if data != nil {
					sess.id, sess.data = cookie.Value, data
				}
			}
			if sess.id == "" {
				sess.id, sess.data = newID(), map[string]interface{}{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			sw := &saveOnWrite{ResponseWriter: w, sess: sess, ctx: ctx}
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.persist()
		})
	}
}

// FromCtx returns the request's session, or a detached empty one that is
// never persisted when the middleware is not installed.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), data: map[string]interface{}{}, store: NewMemoryStore(), opts: DefaultOptions()}
}
