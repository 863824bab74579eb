package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/metrics"
	"github.com/OpreaAngel-Freelance/oil/internal/ratelimit"
	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
)

// RateLimitWrite throttles mutating requests per authenticated user. Must
// run after AuthMiddleware so the subject is the user id, not the token.
func RateLimitWrite(lim ratelimit.Limiter, bucket ratelimit.Bucket) gin.HandlerFunc {
	return rateLimitByUser(lim, "write", bucket)
}

func rateLimitByUser(lim ratelimit.Limiter, scope string, bucket ratelimit.Bucket) gin.HandlerFunc {
	return func(c *gin.Context) {
		if lim == nil || !bucket.Enabled() {
			c.Next()
			return
		}

		subject := c.GetString(UserIDKey)
		if subject == "" {
			// Auth middleware rejects unauthenticated requests; nothing to limit.
			c.Next()
			return
		}

		dec, err := lim.Allow(c.Request.Context(), scope, subject, bucket)
		if err != nil {
			// Fail open to avoid turning Redis hiccups into outages.
			slog.Default().Warn("rate limit check failed", "scope", scope, "err", err)
			c.Next()
			return
		}
		if dec.Allowed {
			c.Next()
			return
		}

		retryAfterSeconds := int(dec.RetryAfter.Seconds())
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			apperrors.New(http.StatusTooManyRequests, "rate limit exceeded"))
	}
}
