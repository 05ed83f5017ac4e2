package normalizer

import (
	"encoding/json"

	"github.com/skyjet/reconciliation-service/internal/models"
)

type cardEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object cardObject `json:"object"`
	} `json:"data"`
}

type cardObject struct {
	ID               string  `json:"id"`
	Amount           int64   `json:"amount"`
	AmountRefunded   int64   `json:"amount_refunded"`
	Currency         string  `json:"currency"`
	Charge           string  `json:"charge"`
	Reason           string  `json:"reason"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
	Refunds struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	} `json:"refunds"`
}

// normalizeCard maps the card processor's payment-intent/charge vocabulary.
// Amounts arrive in the smallest currency unit.
func normalizeCard(payload []byte) (*models.NormalizedEvent, error) {
	var ev cardEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, ErrMalformedPayload
	}

	obj := ev.Data.Object

	switch ev.Type {
	case "payment_intent.succeeded":
		if obj.ID == "" {
			return nil, ErrMissingExternalID
		}
		return &models.NormalizedEvent{
			Provider:   models.ProviderCardGateway,
			Type:       models.TypePaymentSucceeded,
			ExternalID: obj.ID,
			PaymentRef: obj.ID,
			Amount:     float64(obj.Amount) / 100,
			Currency:   obj.Currency,
		}, nil

	case "payment_intent.payment_failed":
		if obj.ID == "" {
			return nil, ErrMissingExternalID
		}
		failure := "unknown error"
		if obj.LastPaymentError != nil && obj.LastPaymentError.Message != "" {
			failure = obj.LastPaymentError.Message
		}
		return &models.NormalizedEvent{
			Provider:     models.ProviderCardGateway,
			Type:         models.TypePaymentFailed,
			ExternalID:   obj.ID,
			PaymentRef:   obj.ID,
			FailureError: failure,
		}, nil

	case "charge.refunded":
		if obj.ID == "" {
			return nil, ErrMissingExternalID
		}
		refundTxn := obj.ID
		if len(obj.Refunds.Data) > 0 && obj.Refunds.Data[0].ID != "" {
			refundTxn = obj.Refunds.Data[0].ID
		}
		return &models.NormalizedEvent{
			Provider:    models.ProviderCardGateway,
			Type:        models.TypeRefundCompleted,
			ExternalID:  refundTxn,
			PaymentRef:  obj.ID,
			RefundTxnID: refundTxn,
			Amount:      float64(obj.AmountRefunded) / 100,
			Currency:    obj.Currency,
		}, nil

	case "charge.dispute.created":
		externalID := obj.ID
		if externalID == "" {
			externalID = obj.Charge
		}
		if externalID == "" {
			return nil, ErrMissingExternalID
		}
		return &models.NormalizedEvent{
			Provider:      models.ProviderCardGateway,
			Type:          models.TypeDisputeOpened,
			ExternalID:    externalID,
			PaymentRef:    obj.Charge,
			Amount:        float64(obj.Amount) / 100,
			DisputeReason: obj.Reason,
		}, nil

	default:
		return informational(models.ProviderCardGateway, ev.ID), nil
	}
}
