package middleware

import (
	"fmt"
	"net/http"
	"time"

	"chat-gateway/internal/services"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	limiter *services.RateLimitService
}

func NewRateLimitMiddleware(limiter *services.RateLimitService) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// RateLimitIP throttles requests per client IP with a sliding window.
// A failed limiter check lets the request through; throttling is an
// abuse guard, not a correctness gate.
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:ip:%s:%s", c.ClientIP(), c.Request.URL.Path)

		allowed, err := rm.limiter.Allow(c.Request.Context(), key, requests, window)
		if err == nil && !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
