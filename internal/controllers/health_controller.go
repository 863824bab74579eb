package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OpreaAngel-Freelance/oil/internal/repository"
)

type healthController struct{}

func NewHealthController() *healthController {
	return &healthController{}
}

func (h *healthController) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyController reports 503 until the repository answers a ping.
type readyController struct {
	repo repository.OilRepository
}

func NewReadyController(repo repository.OilRepository) *readyController {
	return &readyController{repo: repo}
}

func (h *readyController) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.repo.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
