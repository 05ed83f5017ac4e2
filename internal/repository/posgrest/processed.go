package posgrest

import (
	"context"
	"errors"

	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

// ProcessedEventRepository guards the (external id, type) idempotency key.
// The unique index on that pair is what makes concurrent application of the
// same event collapse into a single effect.
type ProcessedEventRepository struct {
	db *gorm.DB
}

func NewProcessedEventRepository(db *gorm.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{db: db}
}

// Create inserts the key. Returns gorm.ErrDuplicatedKey when another
// delivery already claimed it.
func (r *ProcessedEventRepository) Create(ctx context.Context, processed *models.ProcessedEvent) error {
	return r.db.WithContext(ctx).Create(processed).Error
}

func (r *ProcessedEventRepository) Exists(ctx context.Context, externalID string, eventType models.NormalizedType) (bool, error) {
	var processed models.ProcessedEvent
	err := r.db.WithContext(ctx).
		Where("external_id = ? AND event_type = ?", externalID, eventType).
		First(&processed).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
