package normalizer

import (
	"encoding/json"

	"github.com/skyjet/reconciliation-service/internal/models"
)

type smsEvent struct {
	MessageSid    string `json:"MessageSid"`
	MessageStatus string `json:"MessageStatus"`
	To            string `json:"To"`
	ErrorCode     string `json:"ErrorCode"`
	ErrorMessage  string `json:"ErrorMessage"`
	OptOutType    string `json:"OptOutType"`
}

func normalizeSMS(payload []byte) (*models.NormalizedEvent, error) {
	var ev smsEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, ErrMalformedPayload
	}

	base := models.NormalizedEvent{
		Provider:   models.ProviderSMS,
		ExternalID: ev.MessageSid,
		Recipient:  ev.To,
		Channel:    models.ChannelSMS,
	}

	// An explicit opt-out (STOP keyword) takes precedence over the
	// delivery status on the same callback.
	if ev.OptOutType == "STOP" {
		if ev.MessageSid == "" || ev.To == "" {
			return nil, ErrMissingExternalID
		}
		base.Type = models.TypeRecipientOptedOut
		base.BounceKind = "OPT_OUT"
		return &base, nil
	}

	switch ev.MessageStatus {
	case "delivered":
		if ev.MessageSid == "" {
			return nil, ErrMissingExternalID
		}
		base.Type = models.TypeDeliverySucceeded
		return &base, nil

	case "failed", "undelivered":
		if ev.MessageSid == "" {
			return nil, ErrMissingExternalID
		}
		base.Type = models.TypeDeliveryFailed
		base.DeliveryErr = ev.ErrorMessage
		if base.DeliveryErr == "" {
			base.DeliveryErr = "error code " + ev.ErrorCode
		}
		return &base, nil

	case "sent", "queued", "sending":
		return informational(models.ProviderSMS, ev.MessageSid), nil

	default:
		return informational(models.ProviderSMS, ev.MessageSid), nil
	}
}
