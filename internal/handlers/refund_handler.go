package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/models/dto"
	"github.com/skyjet/reconciliation-service/internal/refund"
)

type RefundService interface {
	Create(ctx context.Context, req *dto.CreateRefundRequest) (*dto.RefundCreated, error)
	Approve(ctx context.Context, id string, req *dto.ApproveRefundRequest) (*models.RefundRequest, error)
	Reject(ctx context.Context, id string, req *dto.RejectRefundRequest) (*models.RefundRequest, error)
	Process(ctx context.Context, id string) (*models.RefundRequest, error)
	Get(ctx context.Context, id string) (*models.RefundRequest, error)
	List(ctx context.Context, status models.RefundStatus, limit, offset int) ([]models.RefundRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]models.RefundRequest, error)
	Stats(ctx context.Context) (*models.RefundStats, error)
	ActionLog(ctx context.Context, refundID string) ([]models.RefundActionLog, error)
}

type RefundHandler struct {
	Service RefundService
}

func NewRefundHandler(service RefundService) *RefundHandler {
	return &RefundHandler{Service: service}
}

func (h *RefundHandler) Create(c *gin.Context) {
	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Sanitize()

	created, err := h.Service.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RefundHandler) Approve(c *gin.Context) {
	var req dto.ApproveRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Service.Approve(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RefundHandler) Reject(c *gin.Context) {
	var req dto.RejectRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Service.Reject(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RefundHandler) Process(c *gin.Context) {
	processed, err := h.Service.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, processed)
}

func (h *RefundHandler) Get(c *gin.Context) {
	found, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *RefundHandler) List(c *gin.Context) {
	status := models.RefundStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	var query struct {
		Limit  int `form:"limit"`
		Offset int `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refunds, err := h.Service.List(c.Request.Context(), status, query.Limit, query.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": refunds, "count": len(refunds)})
}

func (h *RefundHandler) ListByRequester(c *gin.Context) {
	refunds, err := h.Service.ListByRequester(c.Request.Context(), c.Param("requesterId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": refunds, "count": len(refunds)})
}

func (h *RefundHandler) Stats(c *gin.Context) {
	stats, err := h.Service.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RefundHandler) ActionLog(c *gin.Context) {
	entries, err := h.Service.ActionLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": entries})
}

func (h *RefundHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, refund.ErrPaymentNotFound), errors.Is(err, refund.ErrRefundNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, refund.ErrInvalidAmount), errors.Is(err, refund.ErrPaymentNotRefundable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, refund.ErrDuplicateRefund), errors.Is(err, refund.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, refund.ErrGatewayCall):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
