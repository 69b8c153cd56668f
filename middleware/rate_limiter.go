package middleware

import (
	"net/http"
	"sync"
	"time"

	"aftervisit/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

var limiterStore = &rateLimiterStore{
	limiters: make(map[string]*rate.Limiter),
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string, rpm int) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
		s.limiters[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware limits requests per IP address. The per-minute budget comes from
// MAX_REQUESTS_PER_MIN; zero or negative disables limiting.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rpm := config.AppConfig.MaxRequestsPerMin
		if rpm <= 0 {
			c.Next()
			return
		}
		logger := zap.L()
		ip := getClientIP(c)
		limiter := limiterStore.getLimiter(ip, rpm)
		if !limiter.Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
