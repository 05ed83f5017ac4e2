package verifier_test

import (
	"testing"

	"github.com/skyjet/reconciliation-service/config"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/verifier"
	"github.com/stretchr/testify/assert"
)

var testSecrets = config.Providers{
	CardWebhookSecret:   "card-secret",
	WalletWebhookSecret: "wallet-secret",
	SMSAuthToken:        "sms-token",
	EmailWebhookSecret:  "email-secret",
}

func TestVerifyCard_ValidSignature(t *testing.T) {
	v := verifier.New(testSecrets)
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	err := v.Verify(models.ProviderCardGateway, body, verifier.Headers{
		Signature: verifier.SignCard("card-secret", "1700000000", body),
	})

	assert.NoError(t, err)
}

func TestVerifyCard_TamperedBody(t *testing.T) {
	v := verifier.New(testSecrets)
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	sig := verifier.SignCard("card-secret", "1700000000", body)

	err := v.Verify(models.ProviderCardGateway, []byte(`{"id":"evt_2"}`), verifier.Headers{
		Signature: sig,
	})

	assert.ErrorIs(t, err, verifier.ErrInvalidSignature)
}

func TestVerifyCard_WrongSecret(t *testing.T) {
	v := verifier.New(testSecrets)
	body := []byte(`{"id":"evt_1"}`)

	err := v.Verify(models.ProviderCardGateway, body, verifier.Headers{
		Signature: verifier.SignCard("not-the-secret", "1700000000", body),
	})

	assert.ErrorIs(t, err, verifier.ErrInvalidSignature)
}

func TestVerifyCard_MissingHeader(t *testing.T) {
	v := verifier.New(testSecrets)

	err := v.Verify(models.ProviderCardGateway, []byte(`{}`), verifier.Headers{})

	assert.ErrorIs(t, err, verifier.ErrMissingSignature)
}

func TestVerifyWallet_ValidSignature(t *testing.T) {
	v := verifier.New(testSecrets)
	body := []byte(`{"id":"WH-1","event_type":"PAYMENT.SALE.COMPLETED"}`)

	err := v.Verify(models.ProviderWalletGateway, body, verifier.Headers{
		Signature: verifier.SignWallet("wallet-secret", body),
	})

	assert.NoError(t, err)
}

func TestVerifyWallet_InvalidBase64(t *testing.T) {
	v := verifier.New(testSecrets)

	err := v.Verify(models.ProviderWalletGateway, []byte(`{}`), verifier.Headers{
		Signature: "%%%not-base64%%%",
	})

	assert.ErrorIs(t, err, verifier.ErrInvalidSignature)
}

func TestVerifySMS_ValidSignature(t *testing.T) {
	v := verifier.New(testSecrets)

	err := v.Verify(models.ProviderSMS, []byte(`{"MessageSid":"SM1"}`), verifier.Headers{
		Signature: verifier.SignSMS("sms-token", "1700000000", "nonce-1"),
		Timestamp: "1700000000",
		Token:     "nonce-1",
	})

	assert.NoError(t, err)
}

func TestVerifySMS_MissingTimestamp(t *testing.T) {
	v := verifier.New(testSecrets)

	err := v.Verify(models.ProviderSMS, []byte(`{}`), verifier.Headers{
		Signature: verifier.SignSMS("sms-token", "1700000000", "nonce-1"),
		Token:     "nonce-1",
	})

	assert.ErrorIs(t, err, verifier.ErrInvalidSignature)
}

func TestVerifyEmail_ValidSignature(t *testing.T) {
	v := verifier.New(testSecrets)
	body := []byte(`[{"event":"delivered","messageId":"msg-1"}]`)

	err := v.Verify(models.ProviderEmail, body, verifier.Headers{
		Signature: verifier.SignEmail("email-secret", "1700000000", body),
		Timestamp: "1700000000",
	})

	assert.NoError(t, err)
}

func TestVerifyEmail_MissingPrefix(t *testing.T) {
	v := verifier.New(testSecrets)

	err := v.Verify(models.ProviderEmail, []byte(`[]`), verifier.Headers{
		Signature: "bm90LXRoZS1zaWduYXR1cmU=",
		Timestamp: "1700000000",
	})

	assert.ErrorIs(t, err, verifier.ErrInvalidSignature)
}

func TestVerify_UnknownProvider(t *testing.T) {
	v := verifier.New(testSecrets)

	err := v.Verify(models.Provider("FAX_GATEWAY"), []byte(`{}`), verifier.Headers{
		Signature: "anything",
	})

	assert.ErrorIs(t, err, verifier.ErrUnknownProvider)
}
