package posgrest

import (
	"context"
	"time"

	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

// RetryTicketRepository owns the retry queue and the dead-letter handoff.
type RetryTicketRepository struct {
	db *gorm.DB
}

func NewRetryTicketRepository(db *gorm.DB) *RetryTicketRepository {
	return &RetryTicketRepository{db: db}
}

func (r *RetryTicketRepository) Create(ctx context.Context, ticket *models.RetryTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *RetryTicketRepository) Update(ctx context.Context, ticket *models.RetryTicket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *RetryTicketRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.RetryTicket{}, "id = ?", id).Error
}

func (r *RetryTicketRepository) GetByEventID(ctx context.Context, eventID string) (*models.RetryTicket, error) {
	var ticket models.RetryTicket
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindDue returns tickets whose next_retry_at has passed, oldest first.
func (r *RetryTicketRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.RetryTicket, error) {
	var tickets []models.RetryTicket
	err := r.db.WithContext(ctx).
		Where("next_retry_at <= ?", now).
		Order("next_retry_at asc").
		Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ExhaustToDeadLetter deletes the ticket and creates the dead-letter record
// in one transaction, so the event is never in neither state.
func (r *RetryTicketRepository) ExhaustToDeadLetter(ctx context.Context, ticket *models.RetryTicket, reason string) (*models.DeadLetterRecord, error) {
	record := &models.DeadLetterRecord{
		EventID:      ticket.EventID,
		FinalReason:  reason,
		AttemptCount: ticket.AttemptCount,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.RetryTicket{}, "id = ?", ticket.ID).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
