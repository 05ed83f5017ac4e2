package refund_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skyjet/reconciliation-service/internal/gateway"
	gatewaymocks "github.com/skyjet/reconciliation-service/internal/gateway/mocks"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/models/dto"
	"github.com/skyjet/reconciliation-service/internal/refund"
	"github.com/skyjet/reconciliation-service/internal/refund/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memRefundRepo emulates the CAS semantics of the real repository against an
// in-memory map, so state-machine tests exercise real transition races.
type memRefundRepo struct {
	refunds  map[string]*models.RefundRequest
	actions  []models.RefundActionLog
	policies []models.RefundPolicy
	nextID   int
}

func newMemRefundRepo(policies ...models.RefundPolicy) *memRefundRepo {
	return &memRefundRepo{refunds: map[string]*models.RefundRequest{}, policies: policies}
}

func (m *memRefundRepo) Create(ctx context.Context, r *models.RefundRequest) error {
	m.nextID++
	if r.ID == "" {
		r.ID = "refund-" + string(rune('0'+m.nextID))
	}
	copied := *r
	m.refunds[r.ID] = &copied
	return nil
}

func (m *memRefundRepo) GetByID(ctx context.Context, id string) (*models.RefundRequest, error) {
	r, ok := m.refunds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memRefundRepo) ExistsActiveForPayment(ctx context.Context, paymentID string) (bool, error) {
	for _, r := range m.refunds {
		if r.PaymentID == paymentID && r.Status != models.RefundRejected {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRefundRepo) UpdateStatusCAS(ctx context.Context, id string, from, to models.RefundStatus, fields map[string]interface{}) (bool, error) {
	r, ok := m.refunds[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	if v, ok := fields["admin_id"].(string); ok {
		r.AdminID = v
	}
	if v, ok := fields["admin_notes"].(string); ok {
		r.AdminNotes = v
	}
	if v, ok := fields["rejected_reason"].(string); ok {
		r.RejectedReason = v
	}
	if v, ok := fields["refund_transaction_id"].(string); ok {
		r.RefundTransactionID = v
	}
	return true, nil
}

func (m *memRefundRepo) List(ctx context.Context, status models.RefundStatus, limit, offset int) ([]models.RefundRequest, error) {
	var out []models.RefundRequest
	for _, r := range m.refunds {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRefundRepo) ListByRequester(ctx context.Context, requesterID string) ([]models.RefundRequest, error) {
	var out []models.RefundRequest
	for _, r := range m.refunds {
		if r.RequesterID == requesterID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRefundRepo) Stats(ctx context.Context) (*models.RefundStats, error) {
	stats := &models.RefundStats{}
	for _, r := range m.refunds {
		stats.TotalRefunds++
		if r.Status == models.RefundProcessed {
			stats.ProcessedCount++
			stats.TotalRefunded += r.Amount
		}
	}
	return stats, nil
}

func (m *memRefundRepo) AppendActionLog(ctx context.Context, entry *models.RefundActionLog) error {
	m.actions = append(m.actions, *entry)
	return nil
}

func (m *memRefundRepo) ActionLog(ctx context.Context, refundID string) ([]models.RefundActionLog, error) {
	var out []models.RefundActionLog
	for _, a := range m.actions {
		if a.RefundID == refundID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRefundRepo) ApplicablePolicy(ctx context.Context, daysBefore int) (*models.RefundPolicy, error) {
	var best *models.RefundPolicy
	for i := range m.policies {
		p := &m.policies[i]
		if !p.IsActive || p.DaysBeforeDeparture > daysBefore {
			continue
		}
		if best == nil || p.DaysBeforeDeparture > best.DaysBeforeDeparture {
			best = p
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

type memPaymentRepo struct {
	payments map[string]*models.Payment
	updates  map[string]map[string]interface{}
}

func newMemPaymentRepo(payments ...*models.Payment) *memPaymentRepo {
	m := &memPaymentRepo{payments: map[string]*models.Payment{}, updates: map[string]map[string]interface{}{}}
	for _, p := range payments {
		m.payments[p.ID] = p
	}
	return m
}

func (m *memPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (m *memPaymentRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	m.updates[id] = fields
	return nil
}

type memBookingRepo struct {
	bookings map[string]*models.Booking
}

func newMemBookingRepo(bookings ...*models.Booking) *memBookingRepo {
	m := &memBookingRepo{bookings: map[string]*models.Booking{}}
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *memBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

type stubGateways struct {
	gateway gateway.RefundGateway
	err     error
}

func (s *stubGateways) ForMethod(method models.PaymentMethod) (gateway.RefundGateway, error) {
	return s.gateway, s.err
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

type fixture struct {
	refunds   *memRefundRepo
	payments  *memPaymentRepo
	bookings  *memBookingRepo
	gateway   *gatewaymocks.MockRefundGateway
	alerts    *mocks.MockAlerts
	publisher *mocks.MockPublisher
	service   *refund.RefundService
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		refunds: newMemRefundRepo(
			models.RefundPolicy{ID: "policy_30d", DaysBeforeDeparture: 30, RefundPercentage: 100, IsActive: true},
			models.RefundPolicy{ID: "policy_7d", DaysBeforeDeparture: 7, RefundPercentage: 50, IsActive: true},
			models.RefundPolicy{ID: "policy_0d", DaysBeforeDeparture: 0, RefundPercentage: 0, IsActive: true},
		),
		payments: newMemPaymentRepo(&models.Payment{
			ID:            "payment-1",
			BookingID:     "booking-1",
			Amount:        100,
			Currency:      "USD",
			Method:        models.MethodCard,
			Status:        models.PaymentCompleted,
			TransactionID: "pi_123",
		}),
		bookings: newMemBookingRepo(&models.Booking{
			ID:            "booking-1",
			DepartureDate: fixedNow().Add(60 * 24 * time.Hour),
		}),
		gateway:   gatewaymocks.NewMockRefundGateway(t),
		alerts:    mocks.NewMockAlerts(t),
		publisher: mocks.NewMockPublisher(t),
	}
	f.service = refund.NewRefundService(f.refunds, f.payments, f.bookings, &stubGateways{gateway: f.gateway}, f.alerts, f.publisher, 3)
	f.service.Now = fixedNow
	return f
}

func createRequest() *dto.CreateRefundRequest {
	return &dto.CreateRefundRequest{
		PaymentID:   "payment-1",
		RequesterID: "user-1",
		Amount:      100,
		Reason:      "trip cancelled",
	}
}

func TestCreate_ComputesFeeAndNet(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Create(context.Background(), createRequest())

	require.NoError(t, err)
	assert.Equal(t, 100.0, created.Amount)
	assert.Equal(t, 3.0, created.ProcessingFee)
	assert.Equal(t, 97.0, created.NetRefund)
	assert.Equal(t, 100.0, created.ApplicablePercentage)
	assert.False(t, created.RequiresReview)

	stored := f.refunds.refunds[created.RefundID]
	require.NotNil(t, stored)
	assert.Equal(t, models.RefundPending, stored.Status)
	assert.Equal(t, models.MethodCard, stored.RefundMethod)
	require.Len(t, f.refunds.actions, 1)
	assert.Equal(t, models.ActionRequested, f.refunds.actions[0].Action)
}

func TestCreate_LatePolicyFlagsForReview(t *testing.T) {
	f := newFixture(t)
	// Departure in three days: the 0-day policy applies, zero percent free.
	f.bookings.bookings["booking-1"].DepartureDate = fixedNow().Add(3 * 24 * time.Hour)

	created, err := f.service.Create(context.Background(), createRequest())

	require.NoError(t, err)
	assert.Equal(t, 0.0, created.ApplicablePercentage)
	assert.True(t, created.RequiresReview)
	// Advisory only: the request is still created in PENDING.
	assert.Equal(t, models.RefundPending, f.refunds.refunds[created.RefundID].Status)
}

func TestCreate_PartialAmountWithinPolicyNeedsNoReview(t *testing.T) {
	f := newFixture(t)
	f.bookings.bookings["booking-1"].DepartureDate = fixedNow().Add(10 * 24 * time.Hour)

	req := createRequest()
	req.Amount = 40

	created, err := f.service.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 50.0, created.ApplicablePercentage)
	assert.False(t, created.RequiresReview)
	assert.Equal(t, 1.20, created.ProcessingFee)
	assert.Equal(t, 38.80, created.NetRefund)
}

func TestCreate_UnknownPayment(t *testing.T) {
	f := newFixture(t)
	req := createRequest()
	req.PaymentID = "payment-missing"

	_, err := f.service.Create(context.Background(), req)

	assert.ErrorIs(t, err, refund.ErrPaymentNotFound)
}

func TestCreate_PaymentNotCompleted(t *testing.T) {
	f := newFixture(t)
	f.payments.payments["payment-1"].Status = models.PaymentPending

	_, err := f.service.Create(context.Background(), createRequest())

	assert.ErrorIs(t, err, refund.ErrPaymentNotRefundable)
}

func TestCreate_DuplicateActiveRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = f.service.Create(ctx, createRequest())
	assert.ErrorIs(t, err, refund.ErrDuplicateRefund)
}

func TestCreate_RejectedRefundFreesPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, createRequest())
	require.NoError(t, err)

	f.publisher.EXPECT().
		Publish(mock.Anything, models.NotificationsTopic, mock.Anything).
		Return(nil)

	_, err = f.service.Reject(ctx, created.RefundID, &dto.RejectRefundRequest{AdminID: "admin-1", Reason: "out of policy"})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, createRequest())
	assert.NoError(t, err)
}

func TestCreate_InvalidAmounts(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []float64{0, -5, 100.01} {
		req := createRequest()
		req.Amount = amount
		_, err := f.service.Create(context.Background(), req)
		assert.ErrorIs(t, err, refund.ErrInvalidAmount, "amount %v", amount)
	}
}

func TestApprove_MovesPendingToApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, createRequest())
	require.NoError(t, err)

	f.publisher.EXPECT().
		Publish(mock.Anything, models.NotificationsTopic, mock.MatchedBy(func(evt models.NotificationEvent) bool {
			return evt.Kind == models.NotificationRefundApproved && evt.RefundID == created.RefundID
		})).
		Return(nil).
		Once()

	approved, err := f.service.Approve(ctx, created.RefundID, &dto.ApproveRefundRequest{AdminID: "admin-1", Notes: "ok"})

	require.NoError(t, err)
	assert.Equal(t, models.RefundApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.AdminID)
}

func TestApprove_TwiceIsIllegal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, createRequest())
	require.NoError(t, err)

	f.publisher.EXPECT().
		Publish(mock.Anything, models.NotificationsTopic, mock.Anything).
		Return(nil).
		Once()

	_, err = f.service.Approve(ctx, created.RefundID, &dto.ApproveRefundRequest{AdminID: "admin-1"})
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, created.RefundID, &dto.ApproveRefundRequest{AdminID: "admin-2"})
	assert.ErrorIs(t, err, refund.ErrIllegalTransition)
}

func TestReject_ProcessedRefundIsIllegal(t *testing.T) {
	f := newFixture(t)
	f.refunds.refunds["refund-x"] = &models.RefundRequest{
		ID:        "refund-x",
		PaymentID: "payment-1",
		Status:    models.RefundProcessed,
	}

	_, err := f.service.Reject(context.Background(), "refund-x", &dto.RejectRefundRequest{AdminID: "admin-1", Reason: "no"})

	assert.ErrorIs(t, err, refund.ErrIllegalTransition)
}

func TestProcess_ApprovedRefundSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, createRequest())
	require.NoError(t, err)

	f.publisher.EXPECT().
		Publish(mock.Anything, models.NotificationsTopic, mock.Anything).
		Return(nil)

	_, err = f.service.Approve(ctx, created.RefundID, &dto.ApproveRefundRequest{AdminID: "admin-1"})
	require.NoError(t, err)

	f.gateway.EXPECT().
		Refund(mock.Anything, "pi_123", 100.0, "USD").
		Return("re_900", nil).
		Once()

	processed, err := f.service.Process(ctx, created.RefundID)

	require.NoError(t, err)
	assert.Equal(t, models.RefundProcessed, processed.Status)
	assert.Equal(t, "re_900", processed.RefundTransactionID)
	assert.Equal(t, map[string]interface{}{"status": models.PaymentRefunded}, f.payments.updates["payment-1"])
}

func TestProcess_PendingRefundIsIllegal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = f.service.Process(ctx, created.RefundID)

	assert.ErrorIs(t, err, refund.ErrIllegalTransition)
}

func TestProcess_GatewayErrorMovesToFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, createRequest())
	require.NoError(t, err)

	f.publisher.EXPECT().
		Publish(mock.Anything, models.NotificationsTopic, mock.Anything).
		Return(nil)

	_, err = f.service.Approve(ctx, created.RefundID, &dto.ApproveRefundRequest{AdminID: "admin-1"})
	require.NoError(t, err)

	f.gateway.EXPECT().
		Refund(mock.Anything, "pi_123", 100.0, "USD").
		Return("", errors.New("gateway timeout")).
		Once()

	f.alerts.EXPECT().
		Raise(mock.Anything, models.AlertRefundFailed, mock.Anything, mock.Anything).
		Return(nil).
		Once()

	_, err = f.service.Process(ctx, created.RefundID)

	assert.ErrorIs(t, err, refund.ErrGatewayCall)
	assert.Equal(t, models.RefundFailed, f.refunds.refunds[created.RefundID].Status)
}

func TestProcess_UnknownRefund(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Process(context.Background(), "refund-missing")

	assert.ErrorIs(t, err, refund.ErrRefundNotFound)
}

func TestActionLog_TracksFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, createRequest())
	require.NoError(t, err)

	f.publisher.EXPECT().
		Publish(mock.Anything, models.NotificationsTopic, mock.Anything).
		Return(nil)

	_, err = f.service.Approve(ctx, created.RefundID, &dto.ApproveRefundRequest{AdminID: "admin-1"})
	require.NoError(t, err)

	f.gateway.EXPECT().
		Refund(mock.Anything, "pi_123", 100.0, "USD").
		Return("re_900", nil).
		Once()

	_, err = f.service.Process(ctx, created.RefundID)
	require.NoError(t, err)

	entries, err := f.service.ActionLog(ctx, created.RefundID)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.ActionRequested, entries[0].Action)
	assert.Equal(t, models.ActionApproved, entries[1].Action)
	assert.Equal(t, models.ActionProcessed, entries[2].Action)
}
