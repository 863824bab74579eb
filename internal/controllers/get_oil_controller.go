package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/services"
)

type getOilController struct{ svc services.OilService }

func NewGetOilController(svc services.OilService) *getOilController {
	return &getOilController{svc}
}

func (h *getOilController) Handle(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	oil, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, oil)
}
