package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterManagerAllow(t *testing.T) {
	m := NewRateLimiter(60, 2, nil)
	defer m.Close()

	assert.True(t, m.Allow("ip:1.1.1.1"))
	assert.True(t, m.Allow("ip:1.1.1.1"))
	assert.False(t, m.Allow("ip:1.1.1.1"), "burst exhausted")
	assert.True(t, m.Allow("ip:2.2.2.2"), "keys have separate buckets")

	stats := m.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.Equal(t, 2, stats["burst_capacity"])
	assert.InDelta(t, 60.0, stats["rate_per_minute"], 0.001)

	m.Close()
}

func TestLimiterManagerCleanup(t *testing.T) {
	m := NewRateLimiter(60, 0, nil)
	defer m.Close()

	assert.True(t, m.Allow("k"), "burst is at least one")
	m.cleanup(0)
	assert.Equal(t, 0, m.GetStats()["active_limiters"])
}

func TestGetRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		byAPIKey bool
		byIP     bool
		want     string
	}{
		{name: "api key header", headers: map[string]string{"X-API-Key": "k1"}, byAPIKey: true, byIP: true, want: "api_key:k1"},
		{name: "bearer token", headers: map[string]string{"Authorization": "Bearer k2"}, byAPIKey: true, want: "api_key:k2"},
		{name: "falls back to ip", byAPIKey: true, byIP: true, want: "ip:192.0.2.1"},
		{name: "forwarded ip", headers: map[string]string{"X-Forwarded-For": "bogus, 10.0.0.1, 10.0.0.2"}, byIP: true, want: "ip:10.0.0.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "10.0.0.3"}, byIP: true, want: "ip:10.0.0.3"},
		{name: "key ignored when not keyed by key", headers: map[string]string{"X-API-Key": "k1"}, byIP: true, want: "ip:192.0.2.1"},
		{name: "no limiting dimension", headers: map[string]string{"X-API-Key": "k1"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:5555"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getRateLimitKey(req, tt.byAPIKey, tt.byIP))
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}
