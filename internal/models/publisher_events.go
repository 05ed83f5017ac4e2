package models

import "time"

const (
	NotificationsTopic = "notifications.dispatch"
	AlertsTopic        = "alerts.raised"

	NotificationBookingConfirmed = "BOOKING_CONFIRMED"
	NotificationPaymentFailed    = "PAYMENT_FAILED"
	NotificationRefundApproved   = "REFUND_APPROVED"
	NotificationRefundRejected   = "REFUND_REJECTED"
	NotificationRefundProcessed  = "REFUND_PROCESSED"
)

// NotificationEvent asks the notification service to compose and send an
// email or SMS. Dispatch is fire-and-forget from this service's perspective.
type NotificationEvent struct {
	Kind       string            `json:"kind"`
	BookingID  string            `json:"booking_id,omitempty"`
	RefundID   string            `json:"refund_id,omitempty"`
	Recipient  string            `json:"recipient,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// AlertRaisedEvent notifies the admin surface about a new operational alert.
type AlertRaisedEvent struct {
	AlertID   string    `json:"alert_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
