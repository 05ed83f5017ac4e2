// Package gateway holds the outbound HTTP clients for the card and wallet
// payment gateways. Only the refund call is needed; everything inbound
// arrives as webhooks.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/skyjet/reconciliation-service/config"
	"github.com/skyjet/reconciliation-service/internal/models"
)

// RefundGateway issues a refund for a captured transaction and returns the
// gateway's refund transaction id.
type RefundGateway interface {
	Refund(ctx context.Context, transactionID string, amount float64, currency string) (string, error)
}

// Selector picks the gateway client matching the payment method the refund
// goes back to.
type Selector struct {
	Card   RefundGateway
	Wallet RefundGateway
}

func NewSelector(cfg config.Gateway) *Selector {
	client := &http.Client{Timeout: cfg.CallTimeout}
	return &Selector{
		Card:   &CardClient{http: client, url: cfg.CardRefundURL, apiKey: cfg.CardAPIKey},
		Wallet: &WalletClient{http: client, url: cfg.WalletRefundURL, apiKey: cfg.WalletAPIKey},
	}
}

func (s *Selector) ForMethod(method models.PaymentMethod) (RefundGateway, error) {
	switch method {
	case models.MethodCard:
		return s.Card, nil
	case models.MethodWallet:
		return s.Wallet, nil
	default:
		return nil, fmt.Errorf("no refund gateway for payment method %s", method)
	}
}

type CardClient struct {
	http   *http.Client
	url    string
	apiKey string
}

type cardRefundRequest struct {
	Charge string `json:"charge"`
	Amount int64  `json:"amount"`
}

type cardRefundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Refund creates a refund against a charge. The card gateway takes amounts
// in minor units.
func (c *CardClient) Refund(ctx context.Context, transactionID string, amount float64, currency string) (string, error) {
	body, err := json.Marshal(cardRefundRequest{
		Charge: transactionID,
		Amount: int64(amount*100 + 0.5),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("card gateway refund call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("card gateway refund returned status %d", resp.StatusCode)
	}

	var out cardRefundResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("card gateway refund response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("card gateway refund response missing id")
	}
	return out.ID, nil
}

type WalletClient struct {
	http   *http.Client
	url    string
	apiKey string
}

type walletRefundRequest struct {
	SaleID string       `json:"sale_id"`
	Amount walletAmount `json:"amount"`
}

type walletAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type walletRefundResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// Refund refunds a completed sale. The wallet gateway takes decimal string
// amounts with an explicit currency.
func (c *WalletClient) Refund(ctx context.Context, transactionID string, amount float64, currency string) (string, error) {
	body, err := json.Marshal(walletRefundRequest{
		SaleID: transactionID,
		Amount: walletAmount{
			Total:    fmt.Sprintf("%.2f", amount),
			Currency: currency,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("wallet gateway refund call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("wallet gateway refund returned status %d", resp.StatusCode)
	}

	var out walletRefundResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("wallet gateway refund response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("wallet gateway refund response missing id")
	}
	return out.ID, nil
}
