package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/services"
)

type deleteOilController struct{ svc services.OilService }

func NewDeleteOilController(svc services.OilService) *deleteOilController {
	return &deleteOilController{svc}
}

func (h *deleteOilController) Handle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
