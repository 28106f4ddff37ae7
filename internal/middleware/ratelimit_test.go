package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limiterRouter(rl *RateLimiter, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid != "" {
			c.Set(ContextKeyFirebaseUID, uid)
		}
	})
	r.Use(rl.Limit())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doPing(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBurstThenReject(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := limiterRouter(rl, "user-a")

	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1").Code)

	w := doPing(r, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	a := limiterRouter(rl, "user-a")
	b := limiterRouter(rl, "user-b")

	assert.Equal(t, http.StatusOK, doPing(a, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doPing(a, "10.0.0.1").Code)

	// A drained bucket for one user never throttles another.
	assert.Equal(t, http.StatusOK, doPing(b, "10.0.0.1").Code)
}

func TestRateLimiterFallsBackToClientIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	r := limiterRouter(rl, "")

	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.2").Code)
}

func TestRateLimiterActiveBucketsKeepState(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	require.True(t, rl.take("user-a"))
	require.False(t, rl.take("user-a"))

	// The entry records its last use so the cleanup loop can tell active
	// buckets from idle ones.
	rl.mu.Lock()
	e := rl.entries["user-a"]
	rl.mu.Unlock()
	require.NotNil(t, e)
	assert.WithinDuration(t, time.Now(), e.lastSeen, time.Second)
}
