package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/skyjet/reconciliation-service/internal/handlers"
	"github.com/skyjet/reconciliation-service/internal/ingest"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIngest struct {
	disposition ingest.Disposition
	provider    models.Provider
	body        []byte
	headers     verifier.Headers
}

func (s *stubIngest) Ingest(ctx context.Context, provider models.Provider, body []byte, headers verifier.Headers) ingest.Disposition {
	s.provider = provider
	s.body = body
	s.headers = headers
	return s.disposition
}

func newWebhookRouter(service handlers.IngestService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := handlers.NewWebhookHandler(service)
	router.POST("/webhooks/card", h.HandleCard)
	router.POST("/webhooks/wallet", h.HandleWallet)
	router.POST("/webhooks/sms", h.HandleSMS)
	router.POST("/webhooks/email", h.HandleEmail)
	return router
}

func TestHandleCard_AcceptedReturns200(t *testing.T) {
	stub := &stubIngest{disposition: ingest.Accepted}
	router := newWebhookRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/card", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("X-Card-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ProviderCardGateway, stub.provider)
	assert.Equal(t, []byte(`{"id":"evt_1"}`), stub.body)
	assert.Equal(t, "t=1,v1=abc", stub.headers.Signature)
}

func TestHandleCard_RejectedReturns403(t *testing.T) {
	router := newWebhookRouter(&stubIngest{disposition: ingest.Rejected})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/card", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "signature verification failed")
}

func TestHandleCard_FailedReturns500(t *testing.T) {
	router := newWebhookRouter(&stubIngest{disposition: ingest.Failed})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/card", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// The response body never leaks internals.
	assert.NotContains(t, rec.Body.String(), "retry")
}

func TestHandleSMS_ForwardsSignatureMaterial(t *testing.T) {
	stub := &stubIngest{disposition: ingest.Accepted}
	router := newWebhookRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", strings.NewReader(`{}`))
	req.Header.Set("X-SMS-Signature", "deadbeef")
	req.Header.Set("X-SMS-Timestamp", "1700000000")
	req.Header.Set("X-SMS-Token", "nonce-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ProviderSMS, stub.provider)
	assert.Equal(t, "deadbeef", stub.headers.Signature)
	assert.Equal(t, "1700000000", stub.headers.Timestamp)
	assert.Equal(t, "nonce-1", stub.headers.Token)
}

func TestHandleWalletAndEmail_RouteToRightProvider(t *testing.T) {
	stub := &stubIngest{disposition: ingest.Accepted}
	router := newWebhookRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/wallet", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, models.ProviderWalletGateway, stub.provider)

	req = httptest.NewRequest(http.MethodPost, "/webhooks/email", strings.NewReader(`[]`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, models.ProviderEmail, stub.provider)
}
