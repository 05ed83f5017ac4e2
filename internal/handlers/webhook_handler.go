package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/skyjet/reconciliation-service/internal/ingest"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/verifier"
)

type IngestService interface {
	Ingest(ctx context.Context, provider models.Provider, body []byte, headers verifier.Headers) ingest.Disposition
}

// WebhookHandler terminates the four provider webhook endpoints. Responses
// are deliberately generic; providers only learn accepted, rejected or
// failed, never pipeline internals.
type WebhookHandler struct {
	Service IngestService
}

func NewWebhookHandler(service IngestService) *WebhookHandler {
	return &WebhookHandler{Service: service}
}

func (h *WebhookHandler) HandleCard(c *gin.Context) {
	h.handle(c, models.ProviderCardGateway, verifier.Headers{
		Signature: c.GetHeader("X-Card-Signature"),
	})
}

func (h *WebhookHandler) HandleWallet(c *gin.Context) {
	h.handle(c, models.ProviderWalletGateway, verifier.Headers{
		Signature: c.GetHeader("X-Wallet-Signature"),
	})
}

func (h *WebhookHandler) HandleSMS(c *gin.Context) {
	h.handle(c, models.ProviderSMS, verifier.Headers{
		Signature: c.GetHeader("X-SMS-Signature"),
		Timestamp: c.GetHeader("X-SMS-Timestamp"),
		Token:     c.GetHeader("X-SMS-Token"),
	})
}

func (h *WebhookHandler) HandleEmail(c *gin.Context) {
	h.handle(c, models.ProviderEmail, verifier.Headers{
		Signature: c.GetHeader("X-Email-Signature"),
		Timestamp: c.GetHeader("X-Email-Timestamp"),
	})
}

func (h *WebhookHandler) handle(c *gin.Context, provider models.Provider, headers verifier.Headers) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logrus.Errorf("failed to read webhook body: %s", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "processing failed",
		})
		return
	}

	switch h.Service.Ingest(c.Request.Context(), provider, body, headers) {
	case ingest.Rejected:
		c.JSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "signature verification failed",
		})
	case ingest.Failed:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "processing failed",
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "webhook accepted",
		})
	}
}
