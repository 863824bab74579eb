package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
)

// renderError writes the typed error as {status, message}. Untyped errors
// become a generic 500 so internal detail stays out of responses.
func renderError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal("internal server error")
	}
	c.JSON(appErr.Status, appErr)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperrors.BadRequest("invalid 'id' (must be a UUID)"))
		return uuid.Nil, false
	}
	return id, true
}
