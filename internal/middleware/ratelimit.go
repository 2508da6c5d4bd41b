package middleware

import (
	"strings"

	"anoa.com/confessionwall/internal/service"
	"anoa.com/confessionwall/pkg/apperror"
	"anoa.com/confessionwall/pkg/response"
	"github.com/gin-gonic/gin"
)

// OriginKey derives the rate-limit key from the first entry of the
// forwarded-address header. This trusts the network edge to set the header
// honestly; it is a correlation key, not a spoof-proof identity.
func OriginKey(c *gin.Context) string {
	forwarded := c.GetHeader("X-Forwarded-For")
	if forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return "127.0.0.1"
}

// RateLimit gates write attempts through the injected limiter.
func RateLimit(limiter *service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(OriginKey(c)) {
			response.ResponseError(c, apperror.ErrRateLimitExceeded)
			c.Abort()
			return
		}
		c.Next()
	}
}
