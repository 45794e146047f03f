package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/ratelimit"
)

// RateLimit rejects a client IP with 429 once it exceeds the limiter's budget for
// scope. Limiter failures let the request through and are logged.
func RateLimit(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			requestLogger(c).Warn().Err(err).Str("scope", scope).Msg("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			HandleAPIError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
