package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/marmita/config"
	"github.com/shashiranjanraj/marmita/pkg/database"
	"github.com/shashiranjanraj/marmita/pkg/metrics"
	"github.com/shashiranjanraj/marmita/pkg/middleware"
	"github.com/shashiranjanraj/marmita/pkg/reqid"
	"github.com/shashiranjanraj/marmita/pkg/response"
	"github.com/shashiranjanraj/marmita/pkg/router"
	"github.com/shashiranjanraj/marmita/pkg/session"
	"github.com/shashiranjanraj/marmita/pkg/ws"
)

// Handler builds the full HTTP stack around the registered routes. The
// store backs the session cookie; tests pass session.NewMemoryStore().
func (a *Application) Handler(store session.Store) http.Handler {
	return a.router(store).Handler()
}

func (a *Application) router(store session.Store) *router.Router {
	r := router.New()

	corsOpts := middleware.DefaultCORSOptions()
	if origins := config.CORSOrigins(); len(origins) > 0 {
		corsOpts.AllowedOrigins = origins
		ws.AllowOrigins(origins)
	}

	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(corsOpts),
		middleware.RateLimit(config.RateLimitPerMinute()),
		session.Middleware(store, session.DefaultOptions()),
		middleware.Authenticate,
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { response.MethodNotAllowed(w) })

	r.Get("/health", "health", healthHandler)
	r.Get("/metrics", "metrics", metrics.Handler())

	for _, fn := range a.routesFns {
		fn(r)
	}
	return r
}

// healthHandler answers 503 while the database is unreachable.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"database": err.Error(),
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
