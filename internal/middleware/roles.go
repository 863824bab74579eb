package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/metrics"
	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
	"github.com/OpreaAngel-Freelance/oil/pkg/auth"
)

// RequireRole rejects authenticated requests whose claims lack the role.
// Must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return RequireAnyRole(role)
}

// RequireAnyRole passes when the claims carry at least one of the roles.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abortAuth(c, auth.ErrMissingToken)
			return
		}
		if !claims.HasAnyRole(roles) {
			metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
			c.AbortWithStatusJSON(http.StatusForbidden,
				apperrors.New(http.StatusForbidden, auth.ErrAccessDenied.Message))
			return
		}
		c.Next()
	}
}
