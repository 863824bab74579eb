package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/middleware"
	"github.com/OpreaAngel-Freelance/oil/internal/services"
	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

type createOilController struct{ svc services.OilService }

func NewCreateOilController(svc services.OilService) *createOilController {
	return &createOilController{svc}
}

func (h *createOilController) Handle(c *gin.Context) {
	var req domain.OilCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, apperrors.BadRequest("invalid body"))
		return
	}
	oil, err := h.svc.Create(c.Request.Context(), req,
		c.GetString(middleware.UserIDKey), c.GetString(middleware.UserEmailKey))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, oil)
}
