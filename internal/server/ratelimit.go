package server

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"placementpulse/internal/errors"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const defaultIdleEviction = 10 * time.Minute

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// RateLimiter holds a token bucket per client key ("api:<key>" or "ip:<addr>").
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	perSec  rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
	logger  *errors.Logger
}

// LimiterStats is the limiter section of the health report.
type LimiterStats struct {
	Enabled       bool    `json:"enabled"`
	ActiveClients int     `json:"active_limiters"`
	PerSecond     float64 `json:"rate_per_second"`
	PerMinute     float64 `json:"rate_per_minute"`
	Burst         int     `json:"burst_capacity"`
	IdleEviction  string  `json:"idle_eviction"`
}

// NewRateLimiter allows requestsPerMin per key with the given burst. Buckets
// unused for idle are dropped by a background sweep; zero idle means ten
// minutes. Call Close to stop the sweep.
func NewRateLimiter(requestsPerMin, burstCapacity int, idle time.Duration, logger *errors.Logger) *RateLimiter {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if idle <= 0 {
		idle = defaultIdleEviction
	}
	l := &RateLimiter{
		buckets: make(map[string]*bucket),
		perSec:  rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burstCapacity,
		idle:    idle,
		now:     time.Now,
		stop:    make(chan struct{}),
		logger:  logger,
	}
	go l.sweep()
	return l
}

// Allow spends one token from key's bucket. It never blocks.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.perSec, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.limiter.AllowN(now, 1)
}

// Stats reports the bucket count and the configured budget.
func (l *RateLimiter) Stats() LimiterStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return LimiterStats{
		Enabled:       true,
		ActiveClients: len(l.buckets),
		PerSecond:     float64(l.perSec),
		PerMinute:     float64(l.perSec) * 60,
		Burst:         l.burst,
		IdleEviction:  l.idle.String(),
	}
}

func (l *RateLimiter) sweep() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.stop:
			return
		}
	}
}

func (l *RateLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	evicted := 0
	for key, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, key)
			evicted++
		}
	}
	if evicted > 0 {
		l.logger.Debug("Evicted idle rate limit buckets", "evicted", evicted, "active", len(l.buckets))
	}
}

// Close stops the sweep. Safe to call more than once.
func (l *RateLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

// rateLimitMiddleware rejects requests over the per-key budget with 429.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" || s.RateLimiter.Allow(key) {
				next(w, r)
				return
			}

			s.Logger.Info("Rate limit exceeded",
				"endpoint", r.URL.Path,
				"client_ip", clientIP(r))
			s.om.Metrics().RecordRateLimitHit(r.Context(),
				attribute.String("endpoint", r.URL.Path),
				attribute.String("method", r.Method))
			writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
		}
	}
}

// rateLimitKey prefers the API key bucket when both are enabled. An empty
// key means the request is not limited.
func rateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := apiKeyFromRequest(r); apiKey != "" {
			return "api:" + apiKey
		}
	}
	if byIP {
		return "ip:" + clientIP(r)
	}
	return ""
}

// clientIP resolves the caller's address: the first parseable
// X-Forwarded-For entry, then X-Real-IP, then the connection peer.
// IPv4-mapped IPv6 addresses are reported in IPv4 form.
func clientIP(r *http.Request) string {
	for entry := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		if addr, err := netip.ParseAddr(strings.TrimSpace(entry)); err == nil {
			return addr.Unmap().String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().Unmap().String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
