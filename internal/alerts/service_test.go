package alerts_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/skyjet/reconciliation-service/internal/alerts"
	"github.com/skyjet/reconciliation-service/internal/alerts/mocks"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func TestRaise_CreatesAlertAndPublishes(t *testing.T) {
	mockRepo := mocks.NewMockAlertRepo(t)
	mockPublisher := mocks.NewMockPublisher(t)
	service := alerts.NewAlertService(mockRepo, mockPublisher)
	service.Now = fixedNow

	ctx := context.Background()
	windowStart := fixedNow().Add(-models.AlertDedupWindow)

	mockRepo.EXPECT().
		HasUnsentSince(ctx, models.AlertGatewayDispute, windowStart).
		Return(false, nil).
		Once()

	mockRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(alert *models.Alert) bool {
			return alert.Type == models.AlertGatewayDispute &&
				alert.Message == "Dispute on charge ch_1: fraudulent" &&
				!alert.Sent
		})).
		Return(nil).
		Once()

	mockPublisher.EXPECT().
		Publish(ctx, models.AlertsTopic, mock.MatchedBy(func(evt models.AlertRaisedEvent) bool {
			return evt.Type == string(models.AlertGatewayDispute) &&
				evt.Message == "Dispute on charge ch_1: fraudulent"
		})).
		Return(nil).
		Once()

	err := service.Raise(ctx, models.AlertGatewayDispute, "Dispute on charge ch_1: fraudulent", map[string]interface{}{
		"charge_id": "ch_1",
	})

	assert.NoError(t, err)
}

func TestRaise_SuppressedInsideDedupWindow(t *testing.T) {
	mockRepo := mocks.NewMockAlertRepo(t)
	mockPublisher := mocks.NewMockPublisher(t)
	service := alerts.NewAlertService(mockRepo, mockPublisher)
	service.Now = fixedNow

	ctx := context.Background()

	mockRepo.EXPECT().
		HasUnsentSince(ctx, models.AlertWebhookDeadLetter, fixedNow().Add(-models.AlertDedupWindow)).
		Return(true, nil).
		Once()

	err := service.Raise(ctx, models.AlertWebhookDeadLetter, "event parked", nil)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRaise_RepoErrorPropagates(t *testing.T) {
	mockRepo := mocks.NewMockAlertRepo(t)
	mockPublisher := mocks.NewMockPublisher(t)
	service := alerts.NewAlertService(mockRepo, mockPublisher)
	service.Now = fixedNow

	ctx := context.Background()

	mockRepo.EXPECT().
		HasUnsentSince(ctx, models.AlertRefundFailed, mock.Anything).
		Return(false, errors.New("db down")).
		Once()

	err := service.Raise(ctx, models.AlertRefundFailed, "refund failed", nil)

	assert.EqualError(t, err, "db down")
}

func TestAcknowledge_DelegatesToRepo(t *testing.T) {
	mockRepo := mocks.NewMockAlertRepo(t)
	mockPublisher := mocks.NewMockPublisher(t)
	service := alerts.NewAlertService(mockRepo, mockPublisher)

	ctx := context.Background()

	mockRepo.EXPECT().
		MarkSent(ctx, "alert-1").
		Return(nil).
		Once()

	assert.NoError(t, service.Acknowledge(ctx, "alert-1"))
}

// memAlertRepo honors the sent flag the way the real repository does: only
// unsent alerts count toward the dedup window.
type memAlertRepo struct {
	rows   []*models.Alert
	nextID int
}

func (m *memAlertRepo) Create(ctx context.Context, alert *models.Alert) error {
	m.nextID++
	alert.ID = fmt.Sprintf("alert-%d", m.nextID)
	m.rows = append(m.rows, alert)
	return nil
}

func (m *memAlertRepo) HasUnsentSince(ctx context.Context, alertType models.AlertType, since time.Time) (bool, error) {
	for _, row := range m.rows {
		if row.Type == alertType && !row.Sent && !row.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAlertRepo) MarkSent(ctx context.Context, id string) error {
	for _, row := range m.rows {
		if row.ID == id {
			row.Sent = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memAlertRepo) ListPending(ctx context.Context, limit int) ([]models.Alert, error) {
	var pending []models.Alert
	for _, row := range m.rows {
		if !row.Sent {
			pending = append(pending, *row)
		}
	}
	return pending, nil
}

func TestRaise_AcknowledgeReopensDedupWindow(t *testing.T) {
	repo := &memAlertRepo{}
	mockPublisher := mocks.NewMockPublisher(t)
	service := alerts.NewAlertService(repo, mockPublisher)
	service.Now = fixedNow

	ctx := context.Background()

	mockPublisher.EXPECT().
		Publish(ctx, models.AlertsTopic, mock.Anything).
		Return(nil).
		Times(2)

	assert.NoError(t, service.Raise(ctx, models.AlertWebhookDeadLetter, "event parked", nil))
	// Same type inside the window dedups against the unsent row.
	assert.NoError(t, service.Raise(ctx, models.AlertWebhookDeadLetter, "event parked again", nil))
	assert.Len(t, repo.rows, 1)

	assert.NoError(t, service.Acknowledge(ctx, repo.rows[0].ID))

	// The acknowledged row no longer blocks; a fresh alert lands right away.
	assert.NoError(t, service.Raise(ctx, models.AlertWebhookDeadLetter, "event parked once more", nil))
	assert.Len(t, repo.rows, 2)
	assert.False(t, repo.rows[1].Sent)
	assert.Equal(t, "event parked once more", repo.rows[1].Message)
}

func TestListPending_ReturnsRepoAlerts(t *testing.T) {
	mockRepo := mocks.NewMockAlertRepo(t)
	mockPublisher := mocks.NewMockPublisher(t)
	service := alerts.NewAlertService(mockRepo, mockPublisher)

	ctx := context.Background()
	pending := []models.Alert{{ID: "alert-1", Type: models.AlertEmailComplaint}}

	mockRepo.EXPECT().
		ListPending(ctx, 20).
		Return(pending, nil).
		Once()

	alertsOut, err := service.ListPending(ctx)

	assert.NoError(t, err)
	assert.Equal(t, pending, alertsOut)
}
