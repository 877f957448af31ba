package stats

import (
	"gorm.io/gorm"

	"visitortracker/internal/visits"
)

// PageStatistics returns the maintained per-page aggregates, busiest first.
func PageStatistics(db *gorm.DB, limit int) ([]visits.PageStatistic, error) {
	var rows []visits.PageStatistic
	query := db.Order("total_visits DESC").Order("page_path ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DailyStatistics returns the maintained per-day aggregates, newest first.
func DailyStatistics(db *gorm.DB, limit int) ([]visits.DayStatistic, error) {
	var rows []visits.DayStatistic
	query := db.Order("stat_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
