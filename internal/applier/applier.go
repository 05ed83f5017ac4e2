// Package applier applies normalized gateway events to booking, payment,
// refund and delivery state, exactly once in effect. Both the live
// ingestion path and the retry sweep call into it concurrently; the unique
// index on (external id, event type) is the only point of mutual exclusion.
package applier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

// Outcome classifies one application attempt. Permanent failures go straight
// to the dead letter; transient ones are retried with backoff.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeTransientFailure
	OutcomePermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "SUCCEEDED"
	case OutcomeTransientFailure:
		return "TRANSIENT_FAILURE"
	case OutcomePermanentFailure:
		return "PERMANENT_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// BookingRepo is the narrow booking lookup/update surface consumed from the
// wider platform.
type BookingRepo interface {
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Booking, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type PaymentRepo interface {
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type RefundRepo interface {
	GetActiveByPaymentID(ctx context.Context, paymentID string) (*models.RefundRequest, error)
	UpdateStatusCAS(ctx context.Context, id string, from, to models.RefundStatus, fields map[string]interface{}) (bool, error)
	AppendActionLog(ctx context.Context, entry *models.RefundActionLog) error
}

type DeliveryRepo interface {
	UpdateByMessageID(ctx context.Context, messageID string, fields map[string]interface{}) error
}

type SubscriptionRepo interface {
	OptOut(ctx context.Context, recipient, channel, kind string) error
}

type ProcessedRepo interface {
	Create(ctx context.Context, processed *models.ProcessedEvent) error
	Exists(ctx context.Context, externalID string, eventType models.NormalizedType) (bool, error)
}

type Alerts interface {
	Raise(ctx context.Context, alertType models.AlertType, message string, data map[string]interface{}) error
}

// Publisher defines the interface for publishing events to Kafka topics.
type Publisher interface {
	Publish(ctx context.Context, topic string, message interface{}) error
}

type Applier struct {
	Bookings      BookingRepo
	Payments      PaymentRepo
	Refunds       RefundRepo
	Deliveries    DeliveryRepo
	Subscriptions SubscriptionRepo
	Processed     ProcessedRepo
	Alerts        Alerts
	Publisher     Publisher
	Now           func() time.Time
}

func New(bookings BookingRepo, payments PaymentRepo, refunds RefundRepo, deliveries DeliveryRepo, subscriptions SubscriptionRepo, processed ProcessedRepo, alerts Alerts, publisher Publisher) *Applier {
	return &Applier{
		Bookings:      bookings,
		Payments:      payments,
		Refunds:       refunds,
		Deliveries:    deliveries,
		Subscriptions: subscriptions,
		Processed:     processed,
		Alerts:        alerts,
		Publisher:     publisher,
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

// Apply mutates state for one normalized event. A second delivery of an
// already-applied event is a no-op that still reports OutcomeSucceeded, and
// never repeats the notification side effect.
func (a *Applier) Apply(ctx context.Context, ev *models.NormalizedEvent) (Outcome, error) {
	if ev.Type == models.TypeInformational {
		return OutcomeSucceeded, nil
	}

	already, err := a.Processed.Exists(ctx, ev.ExternalID, ev.Type)
	if err != nil {
		return OutcomeTransientFailure, err
	}
	if already {
		logrus.WithFields(logrus.Fields{
			"external_id": ev.ExternalID,
			"type":        ev.Type,
		}).Info("duplicate event delivery, skipping")
		return OutcomeSucceeded, nil
	}

	var notify *models.NotificationEvent
	switch ev.Type {
	case models.TypePaymentSucceeded:
		notify, err = a.applyPaymentSucceeded(ctx, ev)
	case models.TypePaymentFailed:
		notify, err = a.applyPaymentFailed(ctx, ev)
	case models.TypeRefundCompleted:
		notify, err = a.applyRefundCompleted(ctx, ev)
	case models.TypeDisputeOpened:
		err = a.applyDisputeOpened(ctx, ev)
	case models.TypeDeliverySucceeded:
		err = a.applyDeliverySucceeded(ctx, ev)
	case models.TypeDeliveryFailed:
		err = a.applyDeliveryFailed(ctx, ev)
	case models.TypeRecipientOptedOut:
		err = a.applyRecipientOptedOut(ctx, ev)
	default:
		return OutcomePermanentFailure, fmt.Errorf("unhandled normalized type %s", ev.Type)
	}
	if err != nil {
		return classify(err), err
	}

	// Claim the idempotency key. Losing the race means a concurrent
	// delivery already applied the event; the state writes above are
	// idempotent, so this call simply skips the side effects.
	claimErr := a.Processed.Create(ctx, &models.ProcessedEvent{
		ExternalID: ev.ExternalID,
		EventType:  ev.Type,
		EventID:    ev.EventID,
		CreatedAt:  a.Now(),
	})
	if claimErr != nil {
		if errors.Is(claimErr, gorm.ErrDuplicatedKey) {
			return OutcomeSucceeded, nil
		}
		return OutcomeTransientFailure, claimErr
	}

	if notify != nil {
		if err := a.Publisher.Publish(ctx, models.NotificationsTopic, *notify); err != nil {
			logrus.Errorf("failed to publish notification for event %s: %s", ev.ExternalID, err.Error())
		}
	}

	return OutcomeSucceeded, nil
}

func (a *Applier) applyPaymentSucceeded(ctx context.Context, ev *models.NormalizedEvent) (*models.NotificationEvent, error) {
	booking, err := a.Bookings.GetByGatewayPaymentID(ctx, ev.PaymentRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking not found for payment %s: %w", ev.PaymentRef, err)
		}
		return nil, err
	}

	now := a.Now()
	err = a.Bookings.UpdateFields(ctx, booking.ID, map[string]interface{}{
		"status":         models.BookingConfirmed,
		"payment_status": models.PaymentCompleted,
		"payment_error":  "",
		"paid_at":        now,
	})
	if err != nil {
		return nil, err
	}

	if payment, perr := a.Payments.GetByTransactionID(ctx, ev.PaymentRef); perr == nil {
		if uerr := a.Payments.UpdateFields(ctx, payment.ID, map[string]interface{}{
			"status": models.PaymentCompleted,
		}); uerr != nil {
			return nil, uerr
		}
	} else if !errors.Is(perr, gorm.ErrRecordNotFound) {
		return nil, perr
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":         booking.ID,
		"gateway_payment_id": ev.PaymentRef,
		"amount":             ev.Amount,
		"currency":           ev.Currency,
	}).Info("payment succeeded")

	return &models.NotificationEvent{
		Kind:      models.NotificationBookingConfirmed,
		BookingID: booking.ID,
		Recipient: booking.ContactEmail,
		CreatedAt: a.Now(),
	}, nil
}

func (a *Applier) applyPaymentFailed(ctx context.Context, ev *models.NormalizedEvent) (*models.NotificationEvent, error) {
	booking, err := a.Bookings.GetByGatewayPaymentID(ctx, ev.PaymentRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking not found for payment %s: %w", ev.PaymentRef, err)
		}
		return nil, err
	}

	err = a.Bookings.UpdateFields(ctx, booking.ID, map[string]interface{}{
		"status":         models.BookingPaymentFailed,
		"payment_status": models.PaymentFailed,
		"payment_error":  ev.FailureError,
	})
	if err != nil {
		return nil, err
	}

	if payment, perr := a.Payments.GetByTransactionID(ctx, ev.PaymentRef); perr == nil {
		if uerr := a.Payments.UpdateFields(ctx, payment.ID, map[string]interface{}{
			"status": models.PaymentFailed,
		}); uerr != nil {
			return nil, uerr
		}
	} else if !errors.Is(perr, gorm.ErrRecordNotFound) {
		return nil, perr
	}

	logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"error":      ev.FailureError,
	}).Warn("payment failed")

	return &models.NotificationEvent{
		Kind:      models.NotificationPaymentFailed,
		BookingID: booking.ID,
		Recipient: booking.ContactEmail,
		Properties: map[string]string{
			"error": ev.FailureError,
		},
		CreatedAt: a.Now(),
	}, nil
}

func (a *Applier) applyRefundCompleted(ctx context.Context, ev *models.NormalizedEvent) (*models.NotificationEvent, error) {
	payment, err := a.Payments.GetByTransactionID(ctx, ev.PaymentRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment not found for gateway ref %s: %w", ev.PaymentRef, err)
		}
		return nil, err
	}

	refund, err := a.Refunds.GetActiveByPaymentID(ctx, payment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no refund request for payment %s: %w", payment.ID, err)
		}
		return nil, err
	}

	if refund.Status == models.RefundProcessed {
		return nil, nil
	}

	now := a.Now()
	ok, err := a.Refunds.UpdateStatusCAS(ctx, refund.ID, models.RefundApproved, models.RefundProcessed, map[string]interface{}{
		"refund_transaction_id": ev.RefundTxnID,
		"processed_at":          now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the CAS. A concurrent writer got there first; re-read to see
		// who. When the refund is now PROCESSED the confirmation is already
		// applied and this delivery is a benign duplicate.
		current, cerr := a.Refunds.GetActiveByPaymentID(ctx, payment.ID)
		if cerr != nil {
			return nil, cerr
		}
		if current.Status == models.RefundProcessed {
			return nil, nil
		}

		// A gateway confirmation arrived for a pending, rejected or failed
		// request. That needs a human.
		if aerr := a.Alerts.Raise(ctx, models.AlertGatewayDispute,
			fmt.Sprintf("gateway refund confirmation for refund %s in unexpected state %s", current.ID, current.Status),
			map[string]interface{}{"refund_id": current.ID, "status": current.Status}); aerr != nil {
			return nil, aerr
		}
		return nil, fmt.Errorf("refund %s not in approvable state: %w", current.ID, gorm.ErrRecordNotFound)
	}

	if err := a.Refunds.AppendActionLog(ctx, &models.RefundActionLog{
		RefundID: refund.ID,
		Action:   models.ActionProcessed,
		Notes:    "confirmed by gateway: " + ev.RefundTxnID,
	}); err != nil {
		return nil, err
	}

	if err := a.Payments.UpdateFields(ctx, payment.ID, map[string]interface{}{
		"status": models.PaymentRefunded,
	}); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"refund_id":     refund.ID,
		"refund_txn_id": ev.RefundTxnID,
		"payment_id":    payment.ID,
		"refund_amount": ev.Amount,
	}).Info("refund completed by gateway")

	return &models.NotificationEvent{
		Kind:     models.NotificationRefundProcessed,
		RefundID: refund.ID,
		Properties: map[string]string{
			"refund_transaction_id": ev.RefundTxnID,
		},
		CreatedAt: now,
	}, nil
}

func (a *Applier) applyDisputeOpened(ctx context.Context, ev *models.NormalizedEvent) error {
	logrus.WithFields(logrus.Fields{
		"charge_id": ev.PaymentRef,
		"reason":    ev.DisputeReason,
		"amount":    ev.Amount,
	}).Error("gateway dispute created")

	return a.Alerts.Raise(ctx, models.AlertGatewayDispute,
		fmt.Sprintf("Dispute on charge %s: %s", ev.PaymentRef, ev.DisputeReason),
		map[string]interface{}{
			"charge_id": ev.PaymentRef,
			"reason":    ev.DisputeReason,
			"amount":    ev.Amount,
		})
}

func (a *Applier) applyDeliverySucceeded(ctx context.Context, ev *models.NormalizedEvent) error {
	err := a.Deliveries.UpdateByMessageID(ctx, ev.ExternalID, map[string]interface{}{
		"status":       models.DeliveryDelivered,
		"delivered_at": a.Now(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("delivery log not found for message %s: %w", ev.ExternalID, err)
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"message_id": ev.ExternalID,
		"recipient":  ev.Recipient,
		"channel":    ev.Channel,
	}).Info("message delivered")
	return nil
}

func (a *Applier) applyDeliveryFailed(ctx context.Context, ev *models.NormalizedEvent) error {
	err := a.Deliveries.UpdateByMessageID(ctx, ev.ExternalID, map[string]interface{}{
		"status":       models.DeliveryFailedState,
		"error_detail": ev.DeliveryErr,
		"failed_at":    a.Now(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("delivery log not found for message %s: %w", ev.ExternalID, err)
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"message_id": ev.ExternalID,
		"recipient":  ev.Recipient,
		"error":      ev.DeliveryErr,
	}).Warn("message delivery failed")

	if ev.Channel == models.ChannelSMS {
		return a.Alerts.Raise(ctx, models.AlertSMSDeliveryFailed,
			fmt.Sprintf("SMS to %s failed: %s", ev.Recipient, ev.DeliveryErr),
			map[string]interface{}{
				"recipient": ev.Recipient,
				"error":     ev.DeliveryErr,
			})
	}
	return nil
}

func (a *Applier) applyRecipientOptedOut(ctx context.Context, ev *models.NormalizedEvent) error {
	// The delivery log row may be missing for complaint callbacks that
	// reference old messages; the opt-out flag is the part that matters.
	err := a.Deliveries.UpdateByMessageID(ctx, ev.ExternalID, map[string]interface{}{
		"status":       models.DeliveryBounced,
		"error_detail": ev.DeliveryErr,
		"failed_at":    a.Now(),
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := a.Subscriptions.OptOut(ctx, ev.Recipient, ev.Channel, ev.BounceKind); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"recipient": ev.Recipient,
		"channel":   ev.Channel,
		"kind":      ev.BounceKind,
	}).Warn("recipient opted out")

	if ev.BounceKind == "COMPLAINT" {
		return a.Alerts.Raise(ctx, models.AlertEmailComplaint,
			fmt.Sprintf("Email complaint from %s", ev.Recipient),
			map[string]interface{}{"recipient": ev.Recipient})
	}
	return nil
}

// classify maps an application error to an outcome: a missing referenced
// entity can never succeed on retry, anything else is assumed recoverable.
func classify(err error) Outcome {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return OutcomePermanentFailure
	}
	return OutcomeTransientFailure
}
