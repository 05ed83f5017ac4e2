package posgrest

import (
	"context"

	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

// RefundRepository persists refund requests and enforces the state machine's
// compare-and-swap transitions at the storage layer.
type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, refund *models.RefundRequest) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *RefundRepository) GetByID(ctx context.Context, id string) (*models.RefundRequest, error) {
	var refund models.RefundRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&refund).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

// ExistsActiveForPayment reports whether any refund in a status other than
// REJECTED exists for the payment.
func (r *RefundRepository) ExistsActiveForPayment(ctx context.Context, paymentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RefundRequest{}).
		Where("payment_id = ? AND status <> ?", paymentID, models.RefundRejected).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetActiveByPaymentID returns the single non-rejected refund for a payment.
func (r *RefundRepository) GetActiveByPaymentID(ctx context.Context, paymentID string) (*models.RefundRequest, error) {
	var refund models.RefundRequest
	err := r.db.WithContext(ctx).
		Where("payment_id = ? AND status <> ?", paymentID, models.RefundRejected).
		First(&refund).Error
	if err != nil {
		return nil, err
	}
	return &refund, nil
}

// UpdateStatusCAS attempts the transition from -> to, applying fields only
// when the row is still in the expected pre-state. Returns false when the
// status no longer matches (a concurrent writer won).
func (r *RefundRepository) UpdateStatusCAS(ctx context.Context, id string, from, to models.RefundStatus, fields map[string]interface{}) (bool, error) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["status"] = to

	result := r.db.WithContext(ctx).
		Model(&models.RefundRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *RefundRepository) List(ctx context.Context, status models.RefundStatus, limit, offset int) ([]models.RefundRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.RefundRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var refunds []models.RefundRequest
	err := query.Order("requested_at desc").Limit(limit).Offset(offset).Find(&refunds).Error
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *RefundRepository) ListByRequester(ctx context.Context, requesterID string) ([]models.RefundRequest, error) {
	var refunds []models.RefundRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("requested_at desc").
		Find(&refunds).Error
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *RefundRepository) Stats(ctx context.Context) (*models.RefundStats, error) {
	var stats models.RefundStats
	err := r.db.WithContext(ctx).
		Model(&models.RefundRequest{}).
		Select(`
			COUNT(*) AS total_refunds,
			SUM(CASE WHEN status = 'PENDING' THEN 1 ELSE 0 END) AS pending_count,
			SUM(CASE WHEN status = 'APPROVED' THEN 1 ELSE 0 END) AS approved_count,
			SUM(CASE WHEN status = 'REJECTED' THEN 1 ELSE 0 END) AS rejected_count,
			SUM(CASE WHEN status = 'PROCESSED' THEN 1 ELSE 0 END) AS processed_count,
			SUM(CASE WHEN status = 'FAILED' THEN 1 ELSE 0 END) AS failed_count,
			COALESCE(SUM(CASE WHEN status = 'PROCESSED' THEN amount ELSE 0 END), 0) AS total_refunded,
			COALESCE(AVG(amount), 0) AS average_refund`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AppendActionLog writes one immutable action-log entry.
func (r *RefundRepository) AppendActionLog(ctx context.Context, entry *models.RefundActionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *RefundRepository) ActionLog(ctx context.Context, refundID string) ([]models.RefundActionLog, error) {
	var entries []models.RefundActionLog
	err := r.db.WithContext(ctx).
		Where("refund_id = ?", refundID).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ApplicablePolicy returns the active policy row with the largest
// days-before-departure threshold at or below daysBefore.
func (r *RefundRepository) ApplicablePolicy(ctx context.Context, daysBefore int) (*models.RefundPolicy, error) {
	var policy models.RefundPolicy
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND days_before_departure <= ?", true, daysBefore).
		Order("days_before_departure desc").
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}
