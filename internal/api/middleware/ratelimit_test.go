package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"smartrfq/desk/internal/config"
)

func setupRateLimitedEngine(cfg *config.Config) (*gin.Engine, *RateLimiterMiddleware) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rateLimiter := NewRateLimiterMiddleware(cfg)
	r.Use(rateLimiter.Limit())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return r, rateLimiter
}

func doGet(r *gin.Engine, remoteAddr, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterMiddleware_Limit(t *testing.T) {
	router, _ := setupRateLimitedEngine(&config.Config{RateLimitRefillRate: 1, RateLimitBucketSize: 1})

	assert.Equal(t, http.StatusOK, doGet(router, "1.2.3.4:12345", "").Code)

	w := doGet(router, "1.2.3.4:12345", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimiterMiddleware_SeparateClients(t *testing.T) {
	router, _ := setupRateLimitedEngine(&config.Config{RateLimitRefillRate: 1, RateLimitBucketSize: 1})

	assert.Equal(t, http.StatusOK, doGet(router, "5.6.7.8:1000", "alice").Code)
	assert.Equal(t, http.StatusOK, doGet(router, "5.6.7.8:1000", "bob").Code)
	assert.Equal(t, http.StatusOK, doGet(router, "9.9.9.9:1000", "alice").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, "5.6.7.8:1000", "alice").Code)
}

func TestRateLimiterMiddleware_EvictIdle(t *testing.T) {
	rm := &RateLimiterMiddleware{clients: make(map[string]*clientLimiter), rate: 1, burst: 1}
	rm.getClientLimiter("fresh")
	stale := rm.getClientLimiter("stale")
	stale.lastSeen = time.Now().Add(-time.Hour)

	assert.Equal(t, 1, rm.evictIdle(30*time.Minute))
	assert.Contains(t, rm.clients, "fresh")
	assert.NotContains(t, rm.clients, "stale")
}
