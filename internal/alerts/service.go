// Package alerts rate-limits duplicate operational alerts and exposes the
// pending/acknowledged queue consumed by the admin UI.
package alerts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skyjet/reconciliation-service/internal/models"
)

// AlertRepo defines the persistence surface for alerts.
type AlertRepo interface {
	Create(ctx context.Context, alert *models.Alert) error
	HasUnsentSince(ctx context.Context, alertType models.AlertType, since time.Time) (bool, error)
	MarkSent(ctx context.Context, id string) error
	ListPending(ctx context.Context, limit int) ([]models.Alert, error)
}

// Publisher defines the interface for publishing events to Kafka topics.
type Publisher interface {
	Publish(ctx context.Context, topic string, message interface{}) error
}

type AlertService struct {
	Repo      AlertRepo
	Publisher Publisher
	Now       func() time.Time
}

func NewAlertService(repo AlertRepo, publisher Publisher) *AlertService {
	return &AlertService{
		Repo:      repo,
		Publisher: publisher,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// Raise inserts a new alert unless an unsent alert of the same type already
// exists inside the 30-minute dedup window. Errors are returned, not
// swallowed; callers decide whether alerting failure is fatal for them.
func (s *AlertService) Raise(ctx context.Context, alertType models.AlertType, message string, data map[string]interface{}) error {
	now := s.Now()

	deduped, err := s.Repo.HasUnsentSince(ctx, alertType, now.Add(-models.AlertDedupWindow))
	if err != nil {
		return err
	}
	if deduped {
		logrus.WithFields(logrus.Fields{"type": alertType}).Debug("alert suppressed by dedup window")
		return nil
	}

	var raw []byte
	if data != nil {
		raw, _ = json.Marshal(data)
	}

	alert := &models.Alert{
		Type:      alertType,
		Message:   message,
		Data:      raw,
		Sent:      false,
		CreatedAt: now,
	}
	if err := s.Repo.Create(ctx, alert); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"type":     alertType,
		"alert_id": alert.ID,
	}).Warnf("System alert: %s", message)

	return s.Publisher.Publish(ctx, models.AlertsTopic, models.AlertRaisedEvent{
		AlertID:   alert.ID,
		Type:      string(alertType),
		Message:   message,
		CreatedAt: now,
	})
}

// Acknowledge flips the sent flag. An acknowledged alert leaves the dedup
// window immediately, so the same type can fire again right away.
func (s *AlertService) Acknowledge(ctx context.Context, id string) error {
	return s.Repo.MarkSent(ctx, id)
}

func (s *AlertService) ListPending(ctx context.Context) ([]models.Alert, error) {
	return s.Repo.ListPending(ctx, 20)
}
