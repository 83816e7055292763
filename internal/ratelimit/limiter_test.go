package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegauge/codegauge/internal/monitoring"
)

func newFallbackLimiter(t *testing.T, cfg Config) *RateLimiter {
	t.Helper()

	client, err := NewRedisClient("", "", 0)
	require.NoError(t, err)
	require.False(t, client.IsEnabled())

	return NewRateLimiter(client, cfg, monitoring.NewMetrics())
}

func TestAllowIPFallbackBlocksAfterBurst(t *testing.T) {
	rl := newFallbackLimiter(t, Config{IPLimitPerMin: 2, BurstMultiplier: 1})

	// burst floor is 5 tokens
	for i := 0; i < 5; i++ {
		result, err := rl.AllowIP(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d", i)
	}

	result, err := rl.AllowIP(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter.Seconds(), 0.0)
}

func TestAllowIPIsolatesClients(t *testing.T) {
	rl := newFallbackLimiter(t, Config{IPLimitPerMin: 2, BurstMultiplier: 1})

	for i := 0; i < 5; i++ {
		_, err := rl.AllowIP(context.Background(), "10.0.0.1")
		require.NoError(t, err)
	}
	blocked, err := rl.AllowIP(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	require.False(t, blocked.Allowed)

	// a different client still has its full budget
	fresh, err := rl.AllowIP(context.Background(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, fresh.Allowed)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics()
	client, err := NewRedisClient("", "", 0)
	require.NoError(t, err)
	rl := NewRateLimiter(client, Config{IPLimitPerMin: 2, BurstMultiplier: 1}, metrics)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	var lastStatus int
	for i := 0; i < 6; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		lastStatus = w.Code

		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
	assert.Equal(t, int64(1), metrics.GetStats()["rate_limit_blocks"])
}
