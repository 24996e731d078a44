package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marmita/internal/testdb"
	"github.com/shashiranjanraj/marmita/pkg/queue"
	"github.com/shashiranjanraj/marmita/pkg/router"
	"github.com/shashiranjanraj/marmita/pkg/session"
)

func TestPrintFailed(t *testing.T) {
	var out bytes.Buffer
	printFailed(&out, nil)
	assert.Equal(t, "No failed jobs.\n", out.String())

	out.Reset()
	printFailed(&out, []queue.FailedJob{{
		ID: 4, JobType: "*listeners.PublishEvent", Attempts: 3,
		Error: "kafka: dial tcp: connection refused", FailedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}})
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "*listeners.PublishEvent")
	assert.Contains(t, out.String(), "2025-03-01T12:00:00Z")
	assert.Contains(t, out.String(), "connection refused")
}

func TestSchedulerListsRetryTask(t *testing.T) {
	lines := scheduler().List()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "queue:retry-failed")
}

func TestRouteListIncludesOpsEndpoints(t *testing.T) {
	a := New().Routes(func(r *router.Router) {
		r.Get("/carrinho/", "cart.show", func(http.ResponseWriter, *http.Request) {})
	})
	var out bytes.Buffer
	a.printRoutes(&out)

	assert.Contains(t, out.String(), "METHOD")
	assert.Contains(t, out.String(), "/carrinho/")
	assert.Contains(t, out.String(), "cart.show")
	assert.Contains(t, out.String(), "/health")
	assert.Contains(t, out.String(), "/metrics")
}

func TestHealthAndFallbacks(t *testing.T) {
	testdb.Setup(t)
	h := New().Handler(session.NewMemoryStore())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nada/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCommandsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range New().Command().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "migrate:rollback", "migrate:status", "seed", "route:list",
		"queue:work", "queue:failed", "queue:retry", "schedule:list"} {
		assert.True(t, names[want], want)
	}
}
