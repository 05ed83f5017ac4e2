package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

type AlertService interface {
	Acknowledge(ctx context.Context, id string) error
	ListPending(ctx context.Context) ([]models.Alert, error)
}

type AlertHandler struct {
	Service AlertService
}

func NewAlertHandler(service AlertService) *AlertHandler {
	return &AlertHandler{Service: service}
}

func (h *AlertHandler) ListPending(c *gin.Context) {
	alerts, err := h.Service.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	if err := h.Service.Acknowledge(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}
