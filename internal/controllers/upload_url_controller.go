package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/services"
	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

type uploadURLController struct{ svc services.OilService }

func NewUploadURLController(svc services.OilService) *uploadURLController {
	return &uploadURLController{svc}
}

// Handle issues a pre-signed PUT URL. The body is optional; an empty body
// requests a server-generated key.
func (h *uploadURLController) Handle(c *gin.Context) {
	var req domain.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		renderError(c, apperrors.BadRequest("invalid body"))
		return
	}
	resp, err := h.svc.UploadURL(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
