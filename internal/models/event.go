package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Provider string
type VerificationStatus string
type ProcessingStatus string
type NormalizedType string

const (
	ProviderCardGateway   Provider = "CARD_GATEWAY"
	ProviderWalletGateway Provider = "WALLET_GATEWAY"
	ProviderSMS           Provider = "SMS_PROVIDER"
	ProviderEmail         Provider = "EMAIL_PROVIDER"

	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationRejected   VerificationStatus = "REJECTED"

	ProcessingReceived       ProcessingStatus = "RECEIVED"
	ProcessingInProgress     ProcessingStatus = "PROCESSING"
	ProcessingSucceeded      ProcessingStatus = "SUCCEEDED"
	ProcessingFailed         ProcessingStatus = "FAILED"
	ProcessingRetryScheduled ProcessingStatus = "RETRY_SCHEDULED"
	ProcessingDeadLettered   ProcessingStatus = "DEAD_LETTERED"

	TypePaymentSucceeded  NormalizedType = "PAYMENT_SUCCEEDED"
	TypePaymentFailed     NormalizedType = "PAYMENT_FAILED"
	TypeRefundCompleted   NormalizedType = "REFUND_COMPLETED"
	TypeDisputeOpened     NormalizedType = "DISPUTE_OPENED"
	TypeDeliverySucceeded NormalizedType = "DELIVERY_SUCCEEDED"
	TypeDeliveryFailed    NormalizedType = "DELIVERY_FAILED"
	TypeRecipientOptedOut NormalizedType = "RECIPIENT_OPTED_OUT"
	TypeInformational     NormalizedType = "INFORMATIONAL"
)

// InboundEvent is the persisted record of one gateway notification.
// The raw payload is immutable after receipt; retries reference it by id.
type InboundEvent struct {
	ID                 string             `json:"id"`
	Provider           Provider           `json:"provider" gorm:"index"`
	RawPayload         []byte             `json:"-"`
	Signature          string             `json:"-"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	NormalizedType     NormalizedType     `json:"normalized_type,omitempty"`
	ExternalID         string             `json:"external_id,omitempty" gorm:"index"`
	ProcessingStatus   ProcessingStatus   `json:"processing_status" gorm:"index"`
	ProcessingTimeMs   float64            `json:"processing_time_ms,omitempty"`
	ReceivedAt         time.Time          `json:"received_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (e *InboundEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}
	return
}

// NormalizedEvent is the provider-independent view of an inbound notification.
// ExternalID plus Type form the idempotency key.
type NormalizedEvent struct {
	EventID    string
	Provider   Provider
	Type       NormalizedType
	ExternalID string

	// Payment events
	Amount       float64
	Currency     string
	FailureError string
	PaymentRef   string
	RefundTxnID  string

	// Dispute events
	DisputeReason string

	// Communication events
	Recipient   string
	Channel     string
	BounceKind  string
	DeliveryErr string
}

// ProcessedEvent marks an (external id, type) pair as applied.
// The unique index is the single point of mutual exclusion between the
// request-driven path and the retry sweep.
type ProcessedEvent struct {
	ID         string         `json:"id"`
	ExternalID string         `json:"external_id" gorm:"uniqueIndex:idx_processed_key"`
	EventType  NormalizedType `json:"event_type" gorm:"uniqueIndex:idx_processed_key"`
	EventID    string         `json:"event_id"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (p *ProcessedEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

func (p Provider) IsValid() bool {
	switch p {
	case ProviderCardGateway, ProviderWalletGateway, ProviderSMS, ProviderEmail:
		return true
	default:
		return false
	}
}

func (t NormalizedType) IsValid() bool {
	switch t {
	case TypePaymentSucceeded, TypePaymentFailed, TypeRefundCompleted,
		TypeDisputeOpened, TypeDeliverySucceeded, TypeDeliveryFailed,
		TypeRecipientOptedOut, TypeInformational:
		return true
	default:
		return false
	}
}
