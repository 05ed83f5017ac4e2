package normalizer

import (
	"encoding/json"
	"strconv"

	"github.com/skyjet/reconciliation-service/internal/models"
)

type walletEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID            string `json:"id"`
		SaleID        string `json:"sale_id"`
		ParentPayment string `json:"parent_payment"`
		Reason        string `json:"reason"`
		Amount        struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"amount"`
	} `json:"resource"`
}

func normalizeWallet(payload []byte) (*models.NormalizedEvent, error) {
	var ev walletEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, ErrMalformedPayload
	}

	res := ev.Resource
	amount, _ := strconv.ParseFloat(res.Amount.Total, 64)

	switch ev.EventType {
	case "PAYMENT.SALE.COMPLETED":
		if res.ID == "" {
			return nil, ErrMissingExternalID
		}
		return &models.NormalizedEvent{
			Provider:   models.ProviderWalletGateway,
			Type:       models.TypePaymentSucceeded,
			ExternalID: res.ID,
			PaymentRef: res.ID,
			Amount:     amount,
			Currency:   res.Amount.Currency,
		}, nil

	case "PAYMENT.SALE.DENIED":
		if res.ID == "" {
			return nil, ErrMissingExternalID
		}
		failure := res.Reason
		if failure == "" {
			failure = "sale denied by wallet gateway"
		}
		return &models.NormalizedEvent{
			Provider:     models.ProviderWalletGateway,
			Type:         models.TypePaymentFailed,
			ExternalID:   res.ID,
			PaymentRef:   res.ID,
			FailureError: failure,
		}, nil

	case "PAYMENT.SALE.REFUNDED":
		// resource.id is the refund transaction, sale_id the original sale.
		if res.ID == "" || res.SaleID == "" {
			return nil, ErrMissingExternalID
		}
		return &models.NormalizedEvent{
			Provider:    models.ProviderWalletGateway,
			Type:        models.TypeRefundCompleted,
			ExternalID:  res.ID,
			PaymentRef:  res.SaleID,
			RefundTxnID: res.ID,
			Amount:      amount,
			Currency:    res.Amount.Currency,
		}, nil

	case "CUSTOMER.DISPUTE.CREATED":
		externalID := res.ID
		if externalID == "" {
			externalID = ev.ID
		}
		if externalID == "" {
			return nil, ErrMissingExternalID
		}
		return &models.NormalizedEvent{
			Provider:      models.ProviderWalletGateway,
			Type:          models.TypeDisputeOpened,
			ExternalID:    externalID,
			PaymentRef:    res.ParentPayment,
			Amount:        amount,
			DisputeReason: res.Reason,
		}, nil

	default:
		return informational(models.ProviderWalletGateway, ev.ID), nil
	}
}
