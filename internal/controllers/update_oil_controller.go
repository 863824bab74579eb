package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/services"
	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

type updateOilController struct{ svc services.OilService }

func NewUpdateOilController(svc services.OilService) *updateOilController {
	return &updateOilController{svc}
}

func (h *updateOilController) Handle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var upd domain.OilUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		renderError(c, apperrors.BadRequest("invalid body"))
		return
	}
	oil, err := h.svc.Update(c.Request.Context(), id, upd)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, oil)
}
