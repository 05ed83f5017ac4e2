package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefundStatus string
type RefundAction string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundApproved  RefundStatus = "APPROVED"
	RefundRejected  RefundStatus = "REJECTED"
	RefundProcessed RefundStatus = "PROCESSED"
	RefundFailed    RefundStatus = "FAILED"

	ActionRequested RefundAction = "REQUESTED"
	ActionApproved  RefundAction = "APPROVED"
	ActionRejected  RefundAction = "REJECTED"
	ActionProcessed RefundAction = "PROCESSED"
	ActionFailed    RefundAction = "FAILED"
)

type RefundRequest struct {
	ID                  string        `json:"id"`
	PaymentID           string        `json:"payment_id" gorm:"index"`
	BookingID           string        `json:"booking_id" gorm:"index"`
	RequesterID         string        `json:"requester_id"`
	Amount              float64       `json:"amount"`
	Reason              string        `json:"reason"`
	AdminID             string        `json:"admin_id,omitempty"`
	AdminNotes          string        `json:"admin_notes,omitempty"`
	RejectedReason      string        `json:"rejected_reason,omitempty"`
	ProcessingFee       float64       `json:"processing_fee"`
	NetRefund           float64       `json:"net_refund"`
	RefundMethod        PaymentMethod `json:"refund_method"`
	Status              RefundStatus  `json:"status" gorm:"index"`
	RequiresReview      bool          `json:"requires_review"`
	RefundTransactionID string        `json:"refund_transaction_id,omitempty"`
	RequestedAt         time.Time     `json:"requested_at"`
	ApprovedAt          *time.Time    `json:"approved_at,omitempty"`
	ProcessedAt         *time.Time    `json:"processed_at,omitempty"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (r *RefundRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now().UTC()
	}
	return
}

// IsTerminal reports whether no further transitions are legal.
func (s RefundStatus) IsTerminal() bool {
	return s == RefundRejected || s == RefundProcessed || s == RefundFailed
}

func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundPending, RefundApproved, RefundRejected, RefundProcessed, RefundFailed:
		return true
	default:
		return false
	}
}

// RefundActionLog is append-only. Entries are never updated or pruned.
type RefundActionLog struct {
	ID        string       `json:"id"`
	RefundID  string       `json:"refund_id" gorm:"index"`
	Action    RefundAction `json:"action"`
	ActorID   string       `json:"actor_id,omitempty"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

func (l *RefundActionLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return
}

// RefundPolicy rows form an ordered table: the row with the largest
// days-before-departure threshold at or below the booking's remaining days
// gives the advisory free-refund percentage.
type RefundPolicy struct {
	ID                  string    `json:"id"`
	DaysBeforeDeparture int       `json:"days_before_departure"`
	RefundPercentage    float64   `json:"refund_percentage"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
}

func (p *RefundPolicy) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// RefundStats aggregates the refund table for the admin surface.
type RefundStats struct {
	TotalRefunds   int64   `json:"total_refunds"`
	PendingCount   int64   `json:"pending_count"`
	ApprovedCount  int64   `json:"approved_count"`
	RejectedCount  int64   `json:"rejected_count"`
	ProcessedCount int64   `json:"processed_count"`
	FailedCount    int64   `json:"failed_count"`
	TotalRefunded  float64 `json:"total_refunded"`
	AverageRefund  float64 `json:"average_refund"`
}
