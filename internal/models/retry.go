package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RetryTicket schedules a re-attempt for an event that failed transiently.
// An event has at most one live ticket; the ticket is deleted on success and
// replaced by a DeadLetterRecord when retries are exhausted.
type RetryTicket struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id" gorm:"uniqueIndex"`
	AttemptCount int       `json:"attempt_count"`
	NextRetryAt  time.Time `json:"next_retry_at" gorm:"index"`
	MaxRetries   int       `json:"max_retries"`
	LastError    string    `json:"last_error"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *RetryTicket) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

// DeadLetterRecord is terminal. Events here are never re-entered into the
// pipeline automatically.
type DeadLetterRecord struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id" gorm:"uniqueIndex"`
	FinalReason  string    `json:"final_reason"`
	AttemptCount int       `json:"attempt_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func (d *DeadLetterRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
