// Package retry owns the retry queue: it schedules tickets for transiently
// failed events, sweeps due tickets on an interval and moves exhausted
// events to the dead letter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skyjet/reconciliation-service/internal/applier"
	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

const sweepBatchSize = 50

type TicketRepo interface {
	Create(ctx context.Context, ticket *models.RetryTicket) error
	Update(ctx context.Context, ticket *models.RetryTicket) error
	Delete(ctx context.Context, id string) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.RetryTicket, error)
	ExhaustToDeadLetter(ctx context.Context, ticket *models.RetryTicket, reason string) (*models.DeadLetterRecord, error)
}

type EventRepo interface {
	GetByID(ctx context.Context, id string) (*models.InboundEvent, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type Normalizer interface {
	Normalize(provider models.Provider, payload []byte) (*models.NormalizedEvent, error)
}

type Applier interface {
	Apply(ctx context.Context, ev *models.NormalizedEvent) (applier.Outcome, error)
}

type Alerts interface {
	Raise(ctx context.Context, alertType models.AlertType, message string, data map[string]interface{}) error
}

// Scheduler creates retry tickets and drives the periodic sweep. Sweeps are
// strictly sequential; a slow sweep delays the next one rather than
// overlapping it.
type Scheduler struct {
	Tickets    TicketRepo
	Events     EventRepo
	Normalizer Normalizer
	Applier    Applier
	Alerts     Alerts
	MaxRetries int
	Now        func() time.Time

	mu sync.Mutex
}

func NewScheduler(tickets TicketRepo, events EventRepo, normalizer Normalizer, app Applier, alerts Alerts, maxRetries int) *Scheduler {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Scheduler{
		Tickets:    tickets,
		Events:     events,
		Normalizer: normalizer,
		Applier:    app,
		Alerts:     alerts,
		MaxRetries: maxRetries,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Schedule creates the ticket for an event that just failed transiently.
// A second transient failure for the same event while a ticket is live is a
// no-op; the unique index on event_id keeps the queue at one ticket per event.
func (s *Scheduler) Schedule(ctx context.Context, eventID string, cause error) error {
	now := s.Now()
	ticket := &models.RetryTicket{
		EventID:      eventID,
		AttemptCount: 0,
		NextRetryAt:  now.Add(Backoff(0)),
		MaxRetries:   s.MaxRetries,
		LastError:    cause.Error(),
		CreatedAt:    now,
	}
	if err := s.Tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logrus.WithField("event_id", eventID).Debug("retry ticket already live")
			return nil
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"event_id":      eventID,
		"next_retry_at": ticket.NextRetryAt,
		"error":         cause.Error(),
	}).Info("retry scheduled")

	return s.Events.UpdateFields(ctx, eventID, map[string]interface{}{
		"processing_status": models.ProcessingRetryScheduled,
	})
}

// DeadLetterNow moves an event straight to the dead letter without going
// through the retry queue, for failures that no retry can fix.
func (s *Scheduler) DeadLetterNow(ctx context.Context, eventID, reason string) error {
	ticket := &models.RetryTicket{EventID: eventID, AttemptCount: 0}
	if _, err := s.Tickets.ExhaustToDeadLetter(ctx, ticket, reason); err != nil {
		// A redelivered event may already sit in the dead letter.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	if err := s.Events.UpdateFields(ctx, eventID, map[string]interface{}{
		"processing_status": models.ProcessingDeadLettered,
	}); err != nil {
		return err
	}
	return s.raiseDeadLetterAlert(ctx, eventID, reason)
}

// Run sweeps the queue on a fixed interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logrus.Infof("retry sweeper started, interval %s", interval)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("retry sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				logrus.Errorf("retry sweep failed: %s", err.Error())
			}
		}
	}
}

// Sweep processes every due ticket once. Concurrent calls serialize; the
// second caller waits for the first sweep to finish.
func (s *Scheduler) Sweep(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	due, err := s.Tickets.FindDue(ctx, s.Now(), sweepBatchSize)
	if err != nil {
		return err
	}

	for i := range due {
		if err := s.retryTicket(ctx, &due[i]); err != nil {
			logrus.WithFields(logrus.Fields{
				"ticket_id": due[i].ID,
				"event_id":  due[i].EventID,
			}).Errorf("retry attempt errored: %s", err.Error())
		}
	}
	return nil
}

func (s *Scheduler) retryTicket(ctx context.Context, ticket *models.RetryTicket) error {
	event, err := s.Events.GetByID(ctx, ticket.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.deadLetter(ctx, ticket, "inbound event record missing")
		}
		return err
	}

	normalized, err := s.Normalizer.Normalize(event.Provider, event.RawPayload)
	if err != nil {
		return s.deadLetter(ctx, ticket, fmt.Sprintf("payload no longer normalizable: %s", err.Error()))
	}

	outcome, applyErr := s.Applier.Apply(ctx, normalized)
	switch outcome {
	case applier.OutcomeSucceeded:
		if err := s.Tickets.Delete(ctx, ticket.ID); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"event_id": ticket.EventID,
			"attempts": ticket.AttemptCount,
		}).Info("retry succeeded")
		return s.Events.UpdateFields(ctx, ticket.EventID, map[string]interface{}{
			"processing_status": models.ProcessingSucceeded,
		})

	case applier.OutcomePermanentFailure:
		return s.deadLetter(ctx, ticket, applyErr.Error())

	default:
		next := ticket.AttemptCount + 1
		if next >= s.MaxRetries {
			ticket.AttemptCount = next
			return s.deadLetter(ctx, ticket, fmt.Sprintf("retries exhausted: %s", applyErr.Error()))
		}
		ticket.AttemptCount = next
		ticket.NextRetryAt = s.Now().Add(Backoff(next))
		ticket.LastError = applyErr.Error()
		if err := s.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"event_id":      ticket.EventID,
			"attempt":       next,
			"next_retry_at": ticket.NextRetryAt,
		}).Warn("retry failed, rescheduled")
		return nil
	}
}

func (s *Scheduler) deadLetter(ctx context.Context, ticket *models.RetryTicket, reason string) error {
	if _, err := s.Tickets.ExhaustToDeadLetter(ctx, ticket, reason); err != nil {
		return err
	}
	if err := s.Events.UpdateFields(ctx, ticket.EventID, map[string]interface{}{
		"processing_status": models.ProcessingDeadLettered,
	}); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"event_id": ticket.EventID,
		"attempts": ticket.AttemptCount,
		"reason":   reason,
	}).Error("event dead-lettered")
	return s.raiseDeadLetterAlert(ctx, ticket.EventID, reason)
}

func (s *Scheduler) raiseDeadLetterAlert(ctx context.Context, eventID, reason string) error {
	return s.Alerts.Raise(ctx, models.AlertWebhookDeadLetter,
		fmt.Sprintf("Webhook event %s moved to dead letter: %s", eventID, reason),
		map[string]interface{}{
			"event_id": eventID,
			"reason":   reason,
		})
}
