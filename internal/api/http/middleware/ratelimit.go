package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authflow-server/internal/api/http/response"
	"github.com/dtroode/authflow-server/internal/logger"
	"github.com/dtroode/authflow-server/internal/model"
)

// RateLimit throttles requests per route and client IP.
type RateLimit struct {
	limiter model.RateLimiter
	logger  *logger.Logger
}

// NewRateLimit creates a RateLimit middleware. A nil limiter disables it.
func NewRateLimit(limiter model.RateLimiter, logger *logger.Logger) *RateLimit {
	return &RateLimit{limiter: limiter, logger: logger}
}

// Limit takes one token from the bucket named route for the caller's IP.
// Limiter errors let the request through.
func (m *RateLimit) Limit(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limiter == nil {
			c.Next()
			return
		}

		key := route + ":" + c.ClientIP()
		decision, err := m.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			m.logger.Warn("Rate limit: limiter unavailable, allowing request",
				"key", key,
				"error", err.Error())
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

		if !decision.Allowed {
			secs := int(math.Ceil(decision.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			m.logger.Info("Rate limit: request blocked",
				"key", key,
				"retry_after_s", secs)
			response.Error(c, http.StatusTooManyRequests, "too many requests")
			return
		}

		c.Next()
	}
}
