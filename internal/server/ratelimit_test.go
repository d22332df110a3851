package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	l := NewRateLimiter(60, 2, time.Minute, nil)
	defer l.Close()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("ip:10.0.0.1"))
	assert.True(t, l.Allow("ip:10.0.0.1"))
	assert.False(t, l.Allow("ip:10.0.0.1"), "burst spent")

	now = now.Add(50 * time.Second)
	l.Allow("ip:10.0.0.2")

	now = now.Add(30 * time.Second)
	l.evictIdle()

	stats := l.Stats()
	assert.Equal(t, 1, stats.ActiveClients)
	assert.Equal(t, "1m0s", stats.IdleEviction)
	assert.True(t, l.Allow("ip:10.0.0.1"), "evicted bucket starts full")
	assert.True(t, l.Allow("ip:10.0.0.1"))
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	l := NewRateLimiter(60, 1, 0, nil)
	defer l.Close()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("api:k"))
	assert.False(t, l.Allow("api:k"))
	assert.True(t, l.Allow("api:other"), "keys have separate buckets")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("api:k"), "one token per second at 60/min")
}

func TestNewRateLimiterDefaultsIdleEviction(t *testing.T) {
	l := NewRateLimiter(30, 5, 0, nil)
	defer l.Close()
	l.Close()

	assert.Equal(t, defaultIdleEviction, l.idle)
	stats := l.Stats()
	assert.True(t, stats.Enabled)
	assert.InDelta(t, 0.5, stats.PerSecond, 1e-9)
	assert.InDelta(t, 30, stats.PerMinute, 1e-9)
	assert.Equal(t, 5, stats.Burst)
}

func TestRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		byAPIKey bool
		byIP     bool
		want     string
	}{
		{"api key preferred", "secret", true, true, "api:secret"},
		{"falls back to ip", "", true, true, "ip:192.0.2.1"},
		{"ip only", "secret", false, true, "ip:192.0.2.1"},
		{"unlimited", "", true, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			assert.Equal(t, tt.want, rateLimitKey(req, tt.byAPIKey, tt.byIP))
		})
	}
}
