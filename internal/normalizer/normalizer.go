// Package normalizer maps each provider's native event vocabulary onto the
// internal taxonomy. Unknown-but-harmless provider events normalize to the
// informational type so they never pollute the retry or dead-letter paths.
package normalizer

import (
	"errors"
	"fmt"

	"github.com/skyjet/reconciliation-service/internal/models"
)

var (
	ErrMalformedPayload  = errors.New("malformed provider payload")
	ErrMissingExternalID = errors.New("payload missing stable external id")
)

type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// Normalize parses the raw provider payload and returns the provider-neutral
// event. The returned event carries the stable external identifier used for
// idempotency keying.
func (n *Normalizer) Normalize(provider models.Provider, payload []byte) (*models.NormalizedEvent, error) {
	switch provider {
	case models.ProviderCardGateway:
		return normalizeCard(payload)
	case models.ProviderWalletGateway:
		return normalizeWallet(payload)
	case models.ProviderSMS:
		return normalizeSMS(payload)
	case models.ProviderEmail:
		return normalizeEmail(payload)
	default:
		return nil, fmt.Errorf("unsupported provider %s", provider)
	}
}

func informational(provider models.Provider, externalID string) *models.NormalizedEvent {
	return &models.NormalizedEvent{
		Provider:   provider,
		Type:       models.TypeInformational,
		ExternalID: externalID,
	}
}
