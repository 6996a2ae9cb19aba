package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiterStore keeps one token bucket per client IP.
type rateLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	counter  atomic.Int64
}

func newRateLimiterStore(perMinute int) *rateLimiterStore {
	return &rateLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[ip] = l
	}

	if s.counter.Add(1)%1000 == 0 {
		s.cleanup()
	}
	return l
}

// cleanup drops idle clients whose bucket has refilled.
func (s *rateLimiterStore) cleanup() {
	for ip, l := range s.limiters {
		if l.Tokens() >= float64(s.burst) {
			delete(s.limiters, ip)
		}
	}
}

// rateLimit guards the calls that reach the generation service.
// A non-positive perMinute disables it.
func rateLimit(perMinute int, next http.HandlerFunc) http.HandlerFunc {
	if perMinute <= 0 {
		return next
	}
	store := newRateLimiterStore(perMinute)

	return func(w http.ResponseWriter, r *http.Request) {
		if !store.getLimiter(extractIP(r)).Allow() {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
			return
		}
		next(w, r)
	}
}

func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
