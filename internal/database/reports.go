package database

import (
	"time"

	"kl-decors-backend/internal/models"

	"gorm.io/gorm"
)

// RevenueResult summarises bookings within a date range. Cancelled orders
// are excluded from revenue.
type RevenueResult struct {
	TotalRevenue float64
	TotalCount   int64
}

// GetRevenueReport calculates booking revenue within a specific date range.
func GetRevenueReport(db *gorm.DB, start, end time.Time) (*RevenueResult, error) {
	var result RevenueResult

	// COALESCE ensures we get 0 instead of NULL if no orders exist
	err := db.Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Where("status <> ?", models.StatusCancelled).
		Select("COALESCE(SUM(final_total), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Where("status <> ?", models.StatusCancelled).
		Count(&result.TotalCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
