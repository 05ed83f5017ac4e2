// Package ingest drives the webhook pipeline end to end: persist, verify,
// normalize, apply, and route failures to the retry queue or dead letter.
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skyjet/reconciliation-service/internal/applier"
	"github.com/skyjet/reconciliation-service/internal/models"
	"github.com/skyjet/reconciliation-service/internal/verifier"
)

// Disposition is the caller-facing result of one webhook delivery. Providers
// only ever see accepted, rejected or failed; internal detail stays internal.
type Disposition int

const (
	// Accepted: the event reached a settled state. That includes events
	// parked in the dead letter, where redelivery cannot help.
	Accepted Disposition = iota
	// Rejected: signature verification failed.
	Rejected
	// Failed: transient trouble; the provider is welcome to redeliver.
	Failed
)

type Verifier interface {
	Verify(provider models.Provider, body []byte, h verifier.Headers) error
}

type Normalizer interface {
	Normalize(provider models.Provider, payload []byte) (*models.NormalizedEvent, error)
}

type Applier interface {
	Apply(ctx context.Context, ev *models.NormalizedEvent) (applier.Outcome, error)
}

type Scheduler interface {
	Schedule(ctx context.Context, eventID string, cause error) error
	DeadLetterNow(ctx context.Context, eventID, reason string) error
}

type EventRepo interface {
	Create(ctx context.Context, event *models.InboundEvent) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type IngestService struct {
	Verifier   Verifier
	Normalizer Normalizer
	Applier    Applier
	Scheduler  Scheduler
	Events     EventRepo
	Now        func() time.Time
}

func NewIngestService(v Verifier, n Normalizer, a Applier, s Scheduler, events EventRepo) *IngestService {
	return &IngestService{
		Verifier:   v,
		Normalizer: n,
		Applier:    a,
		Scheduler:  s,
		Events:     events,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ingest handles one webhook delivery. Verification happens once over the
// raw body; email batch payloads then fan out into one stored event per
// element. The worst per-event disposition wins the response.
func (s *IngestService) Ingest(ctx context.Context, provider models.Provider, body []byte, headers verifier.Headers) Disposition {
	verifyErr := s.Verifier.Verify(provider, body, headers)

	if verifyErr != nil {
		// Store the rejected delivery for the audit trail, touch nothing
		// else.
		event := &models.InboundEvent{
			Provider:           provider,
			RawPayload:         body,
			Signature:          headers.Signature,
			VerificationStatus: models.VerificationRejected,
			ProcessingStatus:   models.ProcessingFailed,
		}
		if err := s.Events.Create(ctx, event); err != nil {
			logrus.Errorf("failed to store rejected event: %s", err.Error())
		}
		logrus.WithFields(logrus.Fields{
			"provider": provider,
			"error":    verifyErr.Error(),
		}).Warn("webhook signature verification failed")
		return Rejected
	}

	worst := Accepted
	for _, payload := range splitBatch(provider, body) {
		d := s.processOne(ctx, provider, payload, headers.Signature)
		if d > worst {
			worst = d
		}
	}
	return worst
}

func (s *IngestService) processOne(ctx context.Context, provider models.Provider, payload []byte, signature string) Disposition {
	start := s.Now()

	event := &models.InboundEvent{
		Provider:           provider,
		RawPayload:         payload,
		Signature:          signature,
		VerificationStatus: models.VerificationVerified,
		ProcessingStatus:   models.ProcessingInProgress,
	}
	if err := s.Events.Create(ctx, event); err != nil {
		logrus.Errorf("failed to store inbound event: %s", err.Error())
		return Failed
	}

	normalized, err := s.Normalizer.Normalize(provider, payload)
	if err != nil {
		// A verified gateway sent something unparseable. Redelivery would
		// hit the same parser; park it.
		logrus.WithFields(logrus.Fields{
			"event_id": event.ID,
			"provider": provider,
		}).Errorf("normalization failed: %s", err.Error())
		if dlErr := s.Scheduler.DeadLetterNow(ctx, event.ID, err.Error()); dlErr != nil {
			logrus.Errorf("dead-letter handoff failed for event %s: %s", event.ID, dlErr.Error())
			return Failed
		}
		return Accepted
	}
	normalized.EventID = event.ID

	if normalized.Type == models.TypeInformational {
		logrus.WithFields(logrus.Fields{
			"event_id":    event.ID,
			"provider":    provider,
			"external_id": normalized.ExternalID,
		}).Info("informational event, no state change")
		s.finish(ctx, event.ID, normalized, models.ProcessingSucceeded, start)
		return Accepted
	}

	outcome, applyErr := s.Applier.Apply(ctx, normalized)
	switch outcome {
	case applier.OutcomeSucceeded:
		s.finish(ctx, event.ID, normalized, models.ProcessingSucceeded, start)
		return Accepted

	case applier.OutcomePermanentFailure:
		logrus.WithFields(logrus.Fields{
			"event_id":    event.ID,
			"external_id": normalized.ExternalID,
		}).Errorf("permanent failure: %s", applyErr.Error())
		s.finish(ctx, event.ID, normalized, models.ProcessingFailed, start)
		if dlErr := s.Scheduler.DeadLetterNow(ctx, event.ID, applyErr.Error()); dlErr != nil {
			logrus.Errorf("dead-letter handoff failed for event %s: %s", event.ID, dlErr.Error())
			return Failed
		}
		return Accepted

	default:
		s.finish(ctx, event.ID, normalized, models.ProcessingFailed, start)
		if schedErr := s.Scheduler.Schedule(ctx, event.ID, applyErr); schedErr != nil {
			logrus.Errorf("failed to schedule retry for event %s: %s", event.ID, schedErr.Error())
		}
		return Failed
	}
}

func (s *IngestService) finish(ctx context.Context, eventID string, normalized *models.NormalizedEvent, status models.ProcessingStatus, start time.Time) {
	fields := map[string]interface{}{
		"normalized_type":    normalized.Type,
		"external_id":        normalized.ExternalID,
		"processing_status":  status,
		"processing_time_ms": float64(s.Now().Sub(start).Microseconds()) / 1000,
	}
	if err := s.Events.UpdateFields(ctx, eventID, fields); err != nil {
		logrus.Errorf("failed to update event %s: %s", eventID, err.Error())
	}
}

// splitBatch fans an email-provider JSON array out into individual payloads.
// Everything else passes through as a single payload.
func splitBatch(provider models.Provider, body []byte) [][]byte {
	if provider != models.ProviderEmail {
		return [][]byte{body}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		// Not an array; treat it as a single event payload.
		return [][]byte{body}
	}

	out := make([][]byte, 0, len(elements))
	for _, el := range elements {
		out = append(out, []byte(el))
	}
	return out
}
