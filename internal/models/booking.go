package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string
type PaymentStatus string
type PaymentMethod string

const (
	BookingPending       BookingStatus = "PENDING"
	BookingConfirmed     BookingStatus = "CONFIRMED"
	BookingPaymentFailed BookingStatus = "PAYMENT_FAILED"
	BookingCancelled     BookingStatus = "CANCELLED"

	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"

	MethodCard   PaymentMethod = "CARD"
	MethodWallet PaymentMethod = "WALLET"
)

// Booking is the slice of the platform's booking record this service needs:
// enough to confirm or fail it off a gateway notification.
type Booking struct {
	ID               string        `json:"id"`
	Reference        string        `json:"reference" gorm:"uniqueIndex"`
	UserID           string        `json:"user_id"`
	ContactEmail     string        `json:"contact_email"`
	Status           BookingStatus `json:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PaymentError     string        `json:"payment_error,omitempty"`
	GatewayPaymentID string        `json:"gateway_payment_id" gorm:"index"`
	DepartureDate    time.Time     `json:"departure_date"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

type Payment struct {
	ID            string        `json:"id"`
	BookingID     string        `json:"booking_id" gorm:"index"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id" gorm:"index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCard, MethodWallet:
		return true
	default:
		return false
	}
}
