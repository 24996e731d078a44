package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marmita/pkg/session"
)

func testOptions() session.Options {
	opts := session.DefaultOptions()
	opts.CookieName = "marmita_test"
	opts.TTL = time.Hour
	return opts
}

// do runs one request through the middleware, sending cookie when set.
func do(t *testing.T, store session.Store, cookie *http.Cookie, h func(*session.Session)) *http.Response {
	t.Helper()
	handler := session.Middleware(store, testOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(session.FromCtx(r))
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/carrinho/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Result()
}

func cookieOf(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "marmita_test" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	store := session.NewMemoryStore()

	resp := do(t, store, nil, func(s *session.Session) {
		s.Set("user_id", uint(9))
		s.Set("role", "CLIENTE")
	})
	cookie := cookieOf(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	resp = do(t, store, cookie, func(s *session.Session) {
		assert.Equal(t, cookie.Value, s.ID())
		uid, ok := s.GetUint("user_id")
		assert.True(t, ok)
		assert.Equal(t, uint(9), uid)
		role, _ := s.GetString("role")
		assert.Equal(t, "CLIENTE", role)
	})
	assert.Empty(t, resp.Cookies(), "an unchanged session is not re-issued")
}

func TestUntouchedSessionIsNotStored(t *testing.T) {
	store := session.NewMemoryStore()
	var id string
	resp := do(t, store, nil, func(s *session.Session) { id = s.ID() })
	assert.Empty(t, resp.Cookies())

	data, err := store.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRegenerateDropsOldID(t *testing.T) {
	store := session.NewMemoryStore()
	cookie := cookieOf(t, do(t, store, nil, func(s *session.Session) { s.Set("carrinho", map[string]int{"1": 2}) }))

	fresh := cookieOf(t, do(t, store, cookie, func(s *session.Session) { s.Regenerate() }))
	assert.NotEqual(t, cookie.Value, fresh.Value)

	old, err := store.Load(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Nil(t, old)

	do(t, store, fresh, func(s *session.Session) {
		_, ok := s.Get("carrinho")
		assert.True(t, ok, "data moves to the new id")
	})
}

func TestInvalidateWipesData(t *testing.T) {
	store := session.NewMemoryStore()
	cookie := cookieOf(t, do(t, store, nil, func(s *session.Session) { s.Set("user_id", 1) }))
	fresh := cookieOf(t, do(t, store, cookie, func(s *session.Session) { s.Invalidate() }))

	do(t, store, fresh, func(s *session.Session) {
		_, ok := s.GetUint("user_id")
		assert.False(t, ok)
	})
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	store := session.NewMemoryStore()
	do(t, store, &http.Cookie{Name: "marmita_test", Value: "forged"}, func(s *session.Session) {
		assert.NotEqual(t, "forged", s.ID())
	})
}

func TestMemoryStoreExpires(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "a", map[string]interface{}{"k": "v"}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	data, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestWriterUnwraps(t *testing.T) {
	handler := session.Middleware(session.NewMemoryStore(), testOptions())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		assert.NoError(t, http.NewResponseController(w).Flush())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
