package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/metrics"
	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
	"github.com/OpreaAngel-Freelance/oil/pkg/auth"
)

// Gin context keys set by AuthMiddleware.
const (
	ClaimsKey    = "claims"
	UserIDKey    = "userId"
	UserEmailKey = "userEmail"
)

// AuthMiddleware authenticates the request with the configured validator and
// stores the claims in the gin context. Failures are rendered by kind:
// 401 for bad credentials, 503 when the key set cannot be fetched.
func AuthMiddleware(validator auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortAuth(c, err)
			return
		}
		claims, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			abortAuth(c, err)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.Subject)
		c.Set(UserEmailKey, claims.Email)
		c.Next()
	}
}

// ClaimsFrom returns the authenticated claims stored by AuthMiddleware.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", auth.ErrMissingHeader
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", auth.ErrMalformedHeader
	}
	return parts[1], nil
}

func abortAuth(c *gin.Context, err error) {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		authErr = auth.ErrValidation
	}

	status := http.StatusUnauthorized
	kind := "unauthorized"
	switch authErr.Kind {
	case auth.KindForbidden:
		status = http.StatusForbidden
		kind = "forbidden"
	case auth.KindUnavailable:
		status = http.StatusServiceUnavailable
		kind = "unavailable"
	}
	metrics.AuthFailuresTotal.WithLabelValues(kind).Inc()
	c.AbortWithStatusJSON(status, apperrors.New(status, authErr.Message))
}
