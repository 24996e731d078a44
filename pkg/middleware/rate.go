// Package middleware provides the HTTP middleware of the application.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shashiranjanraj/marmita/pkg/response"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one token bucket per client IP.
type limiterSet struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

func (s *limiterSet) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if v, ok := s.visitors[ip]; ok {
		v.lastSeen = now
		return v.limiter
	}

	// Opportunistic sweep keeps the map bounded without a background goroutine.
	if len(s.visitors) > 1024 {
		for k, v := range s.visitors {
			if now.Sub(v.lastSeen) > 3*time.Minute {
				delete(s.visitors, k)
			}
		}
	}

	l := rate.NewLimiter(s.limit, s.burst)
	s.visitors[ip] = &visitor{limiter: l, lastSeen: now}
	return l
}

// RateLimit limits each client IP to perMinute requests per minute, with a
// burst of the same size.
// Example: middleware.RateLimit(200)
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	set := &limiterSet{
		visitors: map[string]*visitor{},
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.get(clientIP(r)).Allow() {
				w.Header().Set("Retry-After", "60")
				response.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
