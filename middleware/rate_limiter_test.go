package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"aftervisit/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitedRouter() *gin.Engine {
	router := gin.New()
	router.Use(RateLimitMiddleware())
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestRateLimitMiddlewareThrottlesPerIP(t *testing.T) {
	orig := config.AppConfig.MaxRequestsPerMin
	config.AppConfig.MaxRequestsPerMin = 3
	t.Cleanup(func() { config.AppConfig.MaxRequestsPerMin = orig })

	router := newRateLimitedRouter()

	do := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("10.1.0.1"), "request %d within burst", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, do("10.1.0.1"))

	// A different client IP has its own budget.
	assert.Equal(t, http.StatusOK, do("10.1.0.2"))
}

func TestRateLimitMiddlewareDisabledWhenUnconfigured(t *testing.T) {
	orig := config.AppConfig.MaxRequestsPerMin
	config.AppConfig.MaxRequestsPerMin = 0
	t.Cleanup(func() { config.AppConfig.MaxRequestsPerMin = orig })

	router := newRateLimitedRouter()

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Forwarded-For", "10.2.0.1")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestGetClientIPPrefersForwardedHeaders(t *testing.T) {
	router := gin.New()
	var got string
	router.GET("/", func(c *gin.Context) {
		got = getClientIP(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "203.0.113.8")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.8", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.5:12345"
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "192.0.2.5", got)
}
