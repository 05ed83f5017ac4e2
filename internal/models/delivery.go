package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryStatus string

const (
	DeliveryQueued      DeliveryStatus = "QUEUED"
	DeliverySent        DeliveryStatus = "SENT"
	DeliveryDelivered   DeliveryStatus = "DELIVERED"
	DeliveryFailedState DeliveryStatus = "FAILED"
	DeliveryBounced     DeliveryStatus = "BOUNCED"

	ChannelEmail = "EMAIL"
	ChannelSMS   = "SMS"
)

// DeliveryLog tracks one outbound email or SMS as reported back by the
// delivery provider.
type DeliveryLog struct {
	ID          string         `json:"id"`
	MessageID   string         `json:"message_id" gorm:"uniqueIndex"`
	Channel     string         `json:"channel"`
	Recipient   string         `json:"recipient" gorm:"index"`
	Status      DeliveryStatus `json:"status"`
	ErrorDetail string         `json:"error_detail,omitempty"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	FailedAt    *time.Time     `json:"failed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (d *DeliveryLog) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}

// Subscription records a recipient's contactability. OptedOut is only ever
// flipped to true by the pipeline; it is never reversed automatically.
type Subscription struct {
	ID         string     `json:"id"`
	Recipient  string     `json:"recipient" gorm:"uniqueIndex"`
	Channel    string     `json:"channel"`
	OptedOut   bool       `json:"opted_out"`
	OptedOutAt *time.Time `json:"opted_out_at,omitempty"`
	OptOutKind string     `json:"opt_out_kind,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}
