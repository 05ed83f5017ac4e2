package database

import (
	"log"

	"github.com/skyjet/reconciliation-service/internal/models"
	"gorm.io/gorm"
)

// SeedRefundPolicies installs the default advisory refund schedule. Rows are
// keyed by id so reruns are idempotent.
func SeedRefundPolicies(db *gorm.DB) error {
	policies := []models.RefundPolicy{
		{
			ID:                  "policy_30d",
			DaysBeforeDeparture: 30,
			RefundPercentage:    100,
			IsActive:            true,
		},
		{
			ID:                  "policy_14d",
			DaysBeforeDeparture: 14,
			RefundPercentage:    75,
			IsActive:            true,
		},
		{
			ID:                  "policy_7d",
			DaysBeforeDeparture: 7,
			RefundPercentage:    50,
			IsActive:            true,
		},
		{
			ID:                  "policy_2d",
			DaysBeforeDeparture: 2,
			RefundPercentage:    25,
			IsActive:            true,
		},
		{
			ID:                  "policy_0d",
			DaysBeforeDeparture: 0,
			RefundPercentage:    0,
			IsActive:            true,
		},
	}

	for _, policy := range policies {
		result := db.Where(models.RefundPolicy{ID: policy.ID}).FirstOrCreate(&policy)
		if result.Error != nil {
			return result.Error
		}
	}

	log.Println("✅ Refund policies seeded successfully")
	return nil
}
