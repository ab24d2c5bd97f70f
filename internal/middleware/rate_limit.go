package middleware

import (
	"net/http"
	"time"

	"hotelbot/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies one shared token bucket to the routes it wraps.
// A zero config lets every request through.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	limiter := rate.NewLimiter(rate.Every(perRequest), cfg.Requests)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "chat rate limit exceeded"})
			return
		}
		c.Next()
	}
}
