package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertType string

const (
	AlertGatewayDispute    AlertType = "GATEWAY_DISPUTE"
	AlertWebhookDeadLetter AlertType = "WEBHOOK_DEAD_LETTER"
	AlertRefundFailed      AlertType = "REFUND_FAILED"
	AlertEmailComplaint    AlertType = "EMAIL_COMPLAINT"
	AlertSMSDeliveryFailed AlertType = "SMS_DELIVERY_FAILED"

	// AlertDedupWindow: at most one unsent alert per type inside this window.
	AlertDedupWindow = 30 * time.Minute
)

type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type" gorm:"index"`
	Message   string    `json:"message"`
	Data      []byte    `json:"data,omitempty"`
	Sent      bool      `json:"sent" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
