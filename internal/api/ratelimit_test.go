package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lexdesk/lexdesk/internal/facade"
)

func TestRateLimiterPerKey(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	rl.lastSweep = clock

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	clock = clock.Add(5 * time.Minute)
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 2, rl.Len())

	// a has been idle for a full TTL, b has not.
	clock = clock.Add(6 * time.Minute)
	assert.False(t, rl.Allow("b"))
	assert.Equal(t, 1, rl.Len())

	assert.True(t, rl.Allow("a"), "evicted client starts with a fresh bucket")
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimitMiddleware(t *testing.T) {
	svc := facade.New(facade.Options{})
	defer svc.Close()
	srv := NewServer(Config{RateLimit: 0.001, Burst: 1}, svc)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}
