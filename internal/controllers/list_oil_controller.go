package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/services"
	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
)

type listOilController struct{ svc services.OilService }

func NewListOilController(svc services.OilService) *listOilController {
	return &listOilController{svc}
}

func (h *listOilController) Handle(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			renderError(c, apperrors.BadRequest("invalid 'limit' (must be a positive integer)"))
			return
		}
		limit = n
	}
	page, err := h.svc.List(c.Request.Context(), c.Query("cursor"), limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
