// Package refund implements the refund request state machine:
// PENDING -> APPROVED -> PROCESSED | FAILED, with REJECTED as the only exit
// from PENDING. All transitions are compare-and-swap at the storage layer;
// a lost race surfaces as an illegal-transition error, never a double write.
package refund

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skyjet/reconciliation-service/internal/gateway"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/models/dto"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrRefundNotFound       = errors.New("refund request not found")
	ErrPaymentNotRefundable = errors.New("payment is not in a refundable state")
	ErrDuplicateRefund      = errors.New("an active refund already exists for this payment")
	ErrInvalidAmount        = errors.New("refund amount must be positive and at most the captured amount")
	ErrIllegalTransition    = errors.New("refund is not in the required status for this action")
	ErrGatewayCall          = errors.New("gateway refund call failed")
)

type RefundRepo interface {
	Create(ctx context.Context, refund *models.RefundRequest) error
	GetByID(ctx context.Context, id string) (*models.RefundRequest, error)
	ExistsActiveForPayment(ctx context.Context, paymentID string) (bool, error)
	UpdateStatusCAS(ctx context.Context, id string, from, to models.RefundStatus, fields map[string]interface{}) (bool, error)
	List(ctx context.Context, status models.RefundStatus, limit, offset int) ([]models.RefundRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]models.RefundRequest, error)
	Stats(ctx context.Context) (*models.RefundStats, error)
	AppendActionLog(ctx context.Context, entry *models.RefundActionLog) error
	ActionLog(ctx context.Context, refundID string) ([]models.RefundActionLog, error)
	ApplicablePolicy(ctx context.Context, daysBefore int) (*models.RefundPolicy, error)
}

type PaymentRepo interface {
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type BookingRepo interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

type Gateways interface {
	ForMethod(method models.PaymentMethod) (gateway.RefundGateway, error)
}

type Alerts interface {
	Raise(ctx context.Context, alertType models.AlertType, message string, data map[string]interface{}) error
}

// Publisher defines the interface for publishing events to Kafka topics.
type Publisher interface {
	Publish(ctx context.Context, topic string, message interface{}) error
}

type RefundService struct {
	Refunds       RefundRepo
	Payments      PaymentRepo
	Bookings      BookingRepo
	Gateways      Gateways
	Alerts        Alerts
	Publisher     Publisher
	FeePercentage float64
	Now           func() time.Time
}

func NewRefundService(refunds RefundRepo, payments PaymentRepo, bookings BookingRepo, gateways Gateways, alerts Alerts, publisher Publisher, feePercentage float64) *RefundService {
	return &RefundService{
		Refunds:       refunds,
		Payments:      payments,
		Bookings:      bookings,
		Gateways:      gateways,
		Alerts:        alerts,
		Publisher:     publisher,
		FeePercentage: feePercentage,
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create validates a new refund request and persists it in PENDING.
// The policy lookup is advisory only: a request above the free-refund
// percentage is flagged for review, never rejected outright.
func (s *RefundService) Create(ctx context.Context, req *dto.CreateRefundRequest) (*dto.RefundCreated, error) {
	payment, err := s.Payments.GetByID(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.Status != models.PaymentCompleted {
		return nil, fmt.Errorf("%w: payment status is %s", ErrPaymentNotRefundable, payment.Status)
	}

	active, err := s.Refunds.ExistsActiveForPayment(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrDuplicateRefund
	}

	if req.Amount <= 0 || req.Amount > payment.Amount {
		return nil, ErrInvalidAmount
	}

	percentage, requiresReview, err := s.evaluatePolicy(ctx, payment, req.Amount)
	if err != nil {
		return nil, err
	}

	fee := roundCents(req.Amount * s.FeePercentage / 100)
	refund := &models.RefundRequest{
		PaymentID:      payment.ID,
		BookingID:      payment.BookingID,
		RequesterID:    req.RequesterID,
		Amount:         req.Amount,
		Reason:         req.Reason,
		ProcessingFee:  fee,
		NetRefund:      roundCents(req.Amount - fee),
		RefundMethod:   payment.Method,
		Status:         models.RefundPending,
		RequiresReview: requiresReview,
		RequestedAt:    s.Now(),
	}
	if err := s.Refunds.Create(ctx, refund); err != nil {
		return nil, err
	}

	if err := s.Refunds.AppendActionLog(ctx, &models.RefundActionLog{
		RefundID: refund.ID,
		Action:   models.ActionRequested,
		ActorID:  req.RequesterID,
		Notes:    req.Notes,
	}); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"refund_id":       refund.ID,
		"payment_id":      payment.ID,
		"amount":          refund.Amount,
		"requires_review": requiresReview,
	}).Info("refund request created")

	return &dto.RefundCreated{
		RefundID:             refund.ID,
		Amount:               refund.Amount,
		ProcessingFee:        refund.ProcessingFee,
		NetRefund:            refund.NetRefund,
		ApplicablePercentage: percentage,
		RequiresReview:       requiresReview,
	}, nil
}

// evaluatePolicy computes the advisory free-refund percentage from the
// booking's remaining days before departure. No matching policy means zero
// percent, which flags any amount for review.
func (s *RefundService) evaluatePolicy(ctx context.Context, payment *models.Payment, amount float64) (float64, bool, error) {
	booking, err := s.Bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Payment without a booking row: review everything.
			return 0, true, nil
		}
		return 0, false, err
	}

	daysBefore := int(booking.DepartureDate.Sub(s.Now()).Hours() / 24)
	if daysBefore < 0 {
		daysBefore = 0
	}

	policy, err := s.Refunds.ApplicablePolicy(ctx, daysBefore)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, true, nil
		}
		return 0, false, err
	}

	maxFree := payment.Amount * policy.RefundPercentage / 100
	return policy.RefundPercentage, amount > maxFree, nil
}

// Approve moves PENDING -> APPROVED.
func (s *RefundService) Approve(ctx context.Context, id string, req *dto.ApproveRefundRequest) (*models.RefundRequest, error) {
	now := s.Now()
	ok, err := s.Refunds.UpdateStatusCAS(ctx, id, models.RefundPending, models.RefundApproved, map[string]interface{}{
		"admin_id":    req.AdminID,
		"admin_notes": req.Notes,
		"approved_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionError(ctx, id, models.RefundPending)
	}

	if err := s.Refunds.AppendActionLog(ctx, &models.RefundActionLog{
		RefundID: id,
		Action:   models.ActionApproved,
		ActorID:  req.AdminID,
		Notes:    req.Notes,
	}); err != nil {
		return nil, err
	}

	refund, err := s.Refunds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"refund_id": id,
		"admin_id":  req.AdminID,
	}).Info("refund approved")

	s.notify(ctx, models.NotificationRefundApproved, refund, nil)
	return refund, nil
}

// Reject moves PENDING -> REJECTED, the state machine's only path that frees
// the payment for a new refund request.
func (s *RefundService) Reject(ctx context.Context, id string, req *dto.RejectRefundRequest) (*models.RefundRequest, error) {
	ok, err := s.Refunds.UpdateStatusCAS(ctx, id, models.RefundPending, models.RefundRejected, map[string]interface{}{
		"admin_id":        req.AdminID,
		"rejected_reason": req.Reason,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.transitionError(ctx, id, models.RefundPending)
	}

	if err := s.Refunds.AppendActionLog(ctx, &models.RefundActionLog{
		RefundID: id,
		Action:   models.ActionRejected,
		ActorID:  req.AdminID,
		Notes:    req.Reason,
	}); err != nil {
		return nil, err
	}

	refund, err := s.Refunds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"refund_id": id,
		"admin_id":  req.AdminID,
		"reason":    req.Reason,
	}).Info("refund rejected")

	s.notify(ctx, models.NotificationRefundRejected, refund, map[string]string{
		"reason": req.Reason,
	})
	return refund, nil
}

// Process executes an APPROVED refund against the originating gateway.
// A gateway error or timeout moves the refund to FAILED and raises an alert;
// it is never silently retried.
func (s *RefundService) Process(ctx context.Context, id string) (*models.RefundRequest, error) {
	refund, err := s.Refunds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}
	if refund.Status != models.RefundApproved {
		return nil, fmt.Errorf("%w: status is %s", ErrIllegalTransition, refund.Status)
	}

	payment, err := s.Payments.GetByID(ctx, refund.PaymentID)
	if err != nil {
		return nil, err
	}

	gw, err := s.Gateways.ForMethod(refund.RefundMethod)
	if err != nil {
		return nil, err
	}

	txnID, gwErr := gw.Refund(ctx, payment.TransactionID, refund.Amount, payment.Currency)
	if gwErr != nil {
		return nil, s.failProcessing(ctx, refund, gwErr)
	}

	now := s.Now()
	ok, err := s.Refunds.UpdateStatusCAS(ctx, id, models.RefundApproved, models.RefundProcessed, map[string]interface{}{
		"refund_transaction_id": txnID,
		"processed_at":          now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		// The gateway confirmation webhook got here first. Same refund,
		// same terminal state; nothing left to do.
		current, cerr := s.Refunds.GetByID(ctx, id)
		if cerr != nil {
			return nil, cerr
		}
		if current.Status == models.RefundProcessed {
			return current, nil
		}
		return nil, fmt.Errorf("%w: status is %s", ErrIllegalTransition, current.Status)
	}

	if err := s.Refunds.AppendActionLog(ctx, &models.RefundActionLog{
		RefundID: id,
		Action:   models.ActionProcessed,
		Notes:    "gateway refund " + txnID,
	}); err != nil {
		return nil, err
	}

	if err := s.Payments.UpdateFields(ctx, payment.ID, map[string]interface{}{
		"status": models.PaymentRefunded,
	}); err != nil {
		return nil, err
	}

	processed, err := s.Refunds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"refund_id":     id,
		"refund_txn_id": txnID,
		"net_refund":    processed.NetRefund,
	}).Info("refund processed")

	s.notify(ctx, models.NotificationRefundProcessed, processed, map[string]string{
		"refund_transaction_id": txnID,
	})
	return processed, nil
}

func (s *RefundService) failProcessing(ctx context.Context, refund *models.RefundRequest, cause error) error {
	logrus.WithFields(logrus.Fields{
		"refund_id": refund.ID,
		"method":    refund.RefundMethod,
	}).Errorf("gateway refund failed: %s", cause.Error())

	if _, err := s.Refunds.UpdateStatusCAS(ctx, refund.ID, models.RefundApproved, models.RefundFailed, map[string]interface{}{
		"rejected_reason": cause.Error(),
	}); err != nil {
		return err
	}

	if err := s.Refunds.AppendActionLog(ctx, &models.RefundActionLog{
		RefundID: refund.ID,
		Action:   models.ActionFailed,
		Notes:    cause.Error(),
	}); err != nil {
		return err
	}

	if err := s.Alerts.Raise(ctx, models.AlertRefundFailed,
		fmt.Sprintf("Refund %s failed at the %s gateway: %s", refund.ID, refund.RefundMethod, cause.Error()),
		map[string]interface{}{
			"refund_id": refund.ID,
			"method":    refund.RefundMethod,
			"amount":    refund.Amount,
		}); err != nil {
		return err
	}

	return fmt.Errorf("%w: %s", ErrGatewayCall, cause.Error())
}

func (s *RefundService) Get(ctx context.Context, id string) (*models.RefundRequest, error) {
	refund, err := s.Refunds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefundNotFound
		}
		return nil, err
	}
	return refund, nil
}

func (s *RefundService) List(ctx context.Context, status models.RefundStatus, limit, offset int) ([]models.RefundRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Refunds.List(ctx, status, limit, offset)
}

func (s *RefundService) ListByRequester(ctx context.Context, requesterID string) ([]models.RefundRequest, error) {
	return s.Refunds.ListByRequester(ctx, requesterID)
}

func (s *RefundService) Stats(ctx context.Context) (*models.RefundStats, error) {
	return s.Refunds.Stats(ctx)
}

func (s *RefundService) ActionLog(ctx context.Context, refundID string) ([]models.RefundActionLog, error) {
	if _, err := s.Get(ctx, refundID); err != nil {
		return nil, err
	}
	return s.Refunds.ActionLog(ctx, refundID)
}

// transitionError reports the actual current status after a failed CAS.
func (s *RefundService) transitionError(ctx context.Context, id string, expected models.RefundStatus) error {
	current, err := s.Refunds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRefundNotFound
		}
		return err
	}
	return fmt.Errorf("%w: expected %s, found %s", ErrIllegalTransition, expected, current.Status)
}

func (s *RefundService) notify(ctx context.Context, kind string, refund *models.RefundRequest, props map[string]string) {
	event := models.NotificationEvent{
		Kind:       kind,
		RefundID:   refund.ID,
		BookingID:  refund.BookingID,
		Properties: props,
		CreatedAt:  s.Now(),
	}
	if err := s.Publisher.Publish(ctx, models.NotificationsTopic, event); err != nil {
		logrus.Errorf("failed to publish %s notification for refund %s: %s", kind, refund.ID, err.Error())
	}
}

// roundCents rounds to two decimals, half away from zero.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
