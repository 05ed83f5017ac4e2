package posgrest

import (
	"context"
	"time"

	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

type DeliveryLogRepository struct {
	db *gorm.DB
}

func NewDeliveryLogRepository(db *gorm.DB) *DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

func (r *DeliveryLogRepository) GetByMessageID(ctx context.Context, messageID string) (*models.DeliveryLog, error) {
	var entry models.DeliveryLog
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *DeliveryLogRepository) UpdateByMessageID(ctx context.Context, messageID string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.DeliveryLog{}).
		Where("message_id = ?", messageID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// OptOut flips the recipient's opt-out flag, creating the subscription row
// if none exists. The flag is never cleared here; there is no inverse.
func (r *SubscriptionRepository) OptOut(ctx context.Context, recipient, channel, kind string) error {
	now := time.Now().UTC()
	sub := models.Subscription{
		Recipient:  recipient,
		Channel:    channel,
		OptedOut:   true,
		OptedOutAt: &now,
		OptOutKind: kind,
	}
	return r.db.WithContext(ctx).
		Where(models.Subscription{Recipient: recipient}).
		Assign(map[string]interface{}{
			"opted_out":    true,
			"opted_out_at": now,
			"opt_out_kind": kind,
			"channel":      channel,
		}).
		FirstOrCreate(&sub).Error
}
