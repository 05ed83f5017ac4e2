package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyjet/reconciliation-service/internal/handlers"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/models/dto"
	"github.com/skyjet/reconciliation-service/internal/refund"
	"github.com/stretchr/testify/assert"
)

type stubRefundService struct {
	createResult *dto.RefundCreated
	createErr    error
	refund       *models.RefundRequest
	err          error
}

func (s *stubRefundService) Create(ctx context.Context, req *dto.CreateRefundRequest) (*dto.RefundCreated, error) {
	return s.createResult, s.createErr
}

func (s *stubRefundService) Approve(ctx context.Context, id string, req *dto.ApproveRefundRequest) (*models.RefundRequest, error) {
	return s.refund, s.err
}

func (s *stubRefundService) Reject(ctx context.Context, id string, req *dto.RejectRefundRequest) (*models.RefundRequest, error) {
	return s.refund, s.err
}

func (s *stubRefundService) Process(ctx context.Context, id string) (*models.RefundRequest, error) {
	return s.refund, s.err
}

func (s *stubRefundService) Get(ctx context.Context, id string) (*models.RefundRequest, error) {
	return s.refund, s.err
}

func (s *stubRefundService) List(ctx context.Context, status models.RefundStatus, limit, offset int) ([]models.RefundRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.RefundRequest{*s.refund}, nil
}

func (s *stubRefundService) ListByRequester(ctx context.Context, requesterID string) ([]models.RefundRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.RefundRequest{*s.refund}, nil
}

func (s *stubRefundService) Stats(ctx context.Context) (*models.RefundStats, error) {
	return &models.RefundStats{TotalRefunds: 1}, s.err
}

func (s *stubRefundService) ActionLog(ctx context.Context, refundID string) ([]models.RefundActionLog, error) {
	return nil, s.err
}

func newRefundRouter(service handlers.RefundService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := handlers.NewRefundHandler(service)
	router.POST("/refunds", h.Create)
	router.GET("/refunds", h.List)
	router.GET("/refunds/:id", h.Get)
	router.POST("/refunds/:id/approve", h.Approve)
	router.POST("/refunds/:id/process", h.Process)
	return router
}

func TestCreateRefund_Returns201(t *testing.T) {
	router := newRefundRouter(&stubRefundService{createResult: &dto.RefundCreated{
		RefundID:      "refund-1",
		Amount:        100,
		ProcessingFee: 3,
		NetRefund:     97,
	}})

	body := `{"payment_id":"payment-1","requester_id":"user-1","amount":100,"reason":"trip cancelled"}`
	req := httptest.NewRequest(http.MethodPost, "/refunds", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"net_refund":97`)
}

func TestCreateRefund_MissingFieldsReturns400(t *testing.T) {
	router := newRefundRouter(&stubRefundService{})

	req := httptest.NewRequest(http.MethodPost, "/refunds", strings.NewReader(`{"amount":100}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRefund_DuplicateReturns409(t *testing.T) {
	router := newRefundRouter(&stubRefundService{createErr: refund.ErrDuplicateRefund})

	body := `{"payment_id":"payment-1","requester_id":"user-1","amount":100,"reason":"trip cancelled"}`
	req := httptest.NewRequest(http.MethodPost, "/refunds", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetRefund_NotFoundReturns404(t *testing.T) {
	router := newRefundRouter(&stubRefundService{err: refund.ErrRefundNotFound})

	req := httptest.NewRequest(http.MethodGet, "/refunds/refund-missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveRefund_IllegalTransitionReturns409(t *testing.T) {
	router := newRefundRouter(&stubRefundService{err: refund.ErrIllegalTransition})

	req := httptest.NewRequest(http.MethodPost, "/refunds/refund-1/approve", strings.NewReader(`{"admin_id":"admin-1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProcessRefund_GatewayErrorReturns502(t *testing.T) {
	router := newRefundRouter(&stubRefundService{err: refund.ErrGatewayCall})

	req := httptest.NewRequest(http.MethodPost, "/refunds/refund-1/process", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListRefunds_InvalidStatusReturns400(t *testing.T) {
	router := newRefundRouter(&stubRefundService{refund: &models.RefundRequest{ID: "refund-1"}})

	req := httptest.NewRequest(http.MethodGet, "/refunds?status=BOGUS", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRefunds_ReturnsRefunds(t *testing.T) {
	router := newRefundRouter(&stubRefundService{refund: &models.RefundRequest{ID: "refund-1", Status: models.RefundPending}})

	req := httptest.NewRequest(http.MethodGet, "/refunds?status=PENDING", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}
