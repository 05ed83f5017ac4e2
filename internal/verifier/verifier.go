package verifier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/skyjet/reconciliation-service/config"
	"github.com/skyjet/reconciliation-service/internal/models"
)

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnknownProvider  = errors.New("unknown provider")
)

// Headers carries the signature material each provider sends alongside the
// payload. Fields a provider does not use stay empty.
type Headers struct {
	Signature string
	Timestamp string
	Token     string
}

// Verifier checks that an inbound notification genuinely originates from the
// claimed gateway. A missing header is a verification failure, never a
// trusted-unsigned pass.
type Verifier struct {
	secrets config.Providers
}

func New(secrets config.Providers) *Verifier {
	return &Verifier{secrets: secrets}
}

func (v *Verifier) Verify(provider models.Provider, body []byte, h Headers) error {
	switch provider {
	case models.ProviderCardGateway:
		return v.verifyCard(body, h)
	case models.ProviderWalletGateway:
		return v.verifyWallet(body, h)
	case models.ProviderSMS:
		return v.verifySMS(h)
	case models.ProviderEmail:
		return v.verifyEmail(body, h)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// verifyCard expects "t=<unix>,v1=<hex>" and signs "<ts>.<body>".
func (v *Verifier) verifyCard(body []byte, h Headers) error {
	sig := strings.TrimSpace(h.Signature)
	if sig == "" {
		return ErrMissingSignature
	}

	var ts, provided string
	for _, part := range strings.Split(sig, ",") {
		switch {
		case strings.HasPrefix(part, "t="):
			ts = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v1="):
			provided = strings.TrimPrefix(part, "v1=")
		}
	}
	if ts == "" || provided == "" {
		return ErrInvalidSignature
	}

	providedRaw, err := hex.DecodeString(provided)
	if err != nil {
		return ErrInvalidSignature
	}

	signed := make([]byte, 0, len(ts)+1+len(body))
	signed = append(signed, ts...)
	signed = append(signed, '.')
	signed = append(signed, body...)

	if !hmac.Equal(providedRaw, hmacSHA256([]byte(v.secrets.CardWebhookSecret), signed)) {
		return ErrInvalidSignature
	}
	return nil
}

// verifyWallet expects a base64 HMAC-SHA256 digest of the raw body.
func (v *Verifier) verifyWallet(body []byte, h Headers) error {
	sig := strings.TrimSpace(h.Signature)
	if sig == "" {
		return ErrMissingSignature
	}

	providedRaw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return ErrInvalidSignature
	}

	if !hmac.Equal(providedRaw, hmacSHA256([]byte(v.secrets.WalletWebhookSecret), body)) {
		return ErrInvalidSignature
	}
	return nil
}

// verifySMS signs "<timestamp><token>", hex digest.
func (v *Verifier) verifySMS(h Headers) error {
	sig := strings.TrimSpace(h.Signature)
	if sig == "" {
		return ErrMissingSignature
	}
	if h.Timestamp == "" || h.Token == "" {
		return ErrInvalidSignature
	}

	providedRaw, err := hex.DecodeString(sig)
	if err != nil {
		return ErrInvalidSignature
	}

	signed := []byte(h.Timestamp + h.Token)
	if !hmac.Equal(providedRaw, hmacSHA256([]byte(v.secrets.SMSAuthToken), signed)) {
		return ErrInvalidSignature
	}
	return nil
}

// verifyEmail expects "v1=<base64>" over "<timestamp><body>".
func (v *Verifier) verifyEmail(body []byte, h Headers) error {
	sig := strings.TrimSpace(h.Signature)
	if sig == "" {
		return ErrMissingSignature
	}
	if !strings.HasPrefix(sig, "v1=") {
		return ErrInvalidSignature
	}

	providedRaw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sig, "v1="))
	if err != nil {
		return ErrInvalidSignature
	}

	signed := make([]byte, 0, len(h.Timestamp)+len(body))
	signed = append(signed, h.Timestamp...)
	signed = append(signed, body...)

	if !hmac.Equal(providedRaw, hmacSHA256([]byte(v.secrets.EmailWebhookSecret), signed)) {
		return ErrInvalidSignature
	}
	return nil
}

func hmacSHA256(secret, msg []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(msg)
	return mac.Sum(nil)
}

// SignCard computes the card-gateway signature header for the given body.
// Used by tests and local tooling.
func SignCard(secret, timestamp string, body []byte) string {
	signed := timestamp + "." + string(body)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(hmacSHA256([]byte(secret), []byte(signed))))
}

// SignWallet computes the wallet-gateway signature header.
func SignWallet(secret string, body []byte) string {
	return base64.StdEncoding.EncodeToString(hmacSHA256([]byte(secret), body))
}

// SignSMS computes the SMS-provider signature header.
func SignSMS(token, timestamp, nonce string) string {
	return hex.EncodeToString(hmacSHA256([]byte(token), []byte(timestamp+nonce)))
}

// SignEmail computes the email-provider signature header.
func SignEmail(secret, timestamp string, body []byte) string {
	signed := append([]byte(timestamp), body...)
	return "v1=" + base64.StdEncoding.EncodeToString(hmacSHA256([]byte(secret), signed))
}
