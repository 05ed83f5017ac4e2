package normalizer

import (
	"encoding/json"
	"strings"

	"github.com/skyjet/reconciliation-service/internal/models"
)

type emailEvent struct {
	Event      string `json:"event"`
	Type       string `json:"type"`
	Email      string `json:"email"`
	MessageID  string `json:"messageId"`
	BounceType string `json:"bounceType"`
	Reason     string `json:"reason"`
}

func normalizeEmail(payload []byte) (*models.NormalizedEvent, error) {
	var ev emailEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, ErrMalformedPayload
	}

	eventType := ev.Event
	if eventType == "" {
		eventType = ev.Type
	}

	base := models.NormalizedEvent{
		Provider:   models.ProviderEmail,
		ExternalID: ev.MessageID,
		Recipient:  ev.Email,
		Channel:    models.ChannelEmail,
	}

	switch eventType {
	case "delivered", "delivery":
		if ev.MessageID == "" {
			return nil, ErrMissingExternalID
		}
		base.Type = models.TypeDeliverySucceeded
		return &base, nil

	case "bounce", "bounced":
		if ev.MessageID == "" || ev.Email == "" {
			return nil, ErrMissingExternalID
		}
		if strings.EqualFold(ev.BounceType, "permanent") {
			base.Type = models.TypeRecipientOptedOut
			base.BounceKind = "HARD_BOUNCE"
		} else {
			base.Type = models.TypeDeliveryFailed
			base.BounceKind = "SOFT_BOUNCE"
		}
		base.DeliveryErr = ev.Reason
		return &base, nil

	case "complaint", "spamreport", "marked_as_spam":
		if ev.MessageID == "" || ev.Email == "" {
			return nil, ErrMissingExternalID
		}
		base.Type = models.TypeRecipientOptedOut
		base.BounceKind = "COMPLAINT"
		return &base, nil

	case "dropped", "drop":
		if ev.MessageID == "" {
			return nil, ErrMissingExternalID
		}
		base.Type = models.TypeDeliveryFailed
		base.DeliveryErr = ev.Reason
		return &base, nil

	case "open", "opened", "click", "clicked":
		return informational(models.ProviderEmail, ev.MessageID), nil

	default:
		return informational(models.ProviderEmail, ev.MessageID), nil
	}
}
