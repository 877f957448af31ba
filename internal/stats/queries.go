package stats

import (
	"time"

	"gorm.io/gorm"

	"visitortracker/internal/visits"
)

const (
	TopPagesLimit     = 10
	RecentVisitsLimit = 50
	DailyChartDays    = 30
)

func countScalar(db *gorm.DB, query string, args ...any) (int64, error) {
	var count int64
	if err := db.Raw(query, args...).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func totalVisits(db *gorm.DB) (int64, error) {
	return countScalar(db, `SELECT COUNT(*) FROM visitor_logs`)
}

func uniqueIPs(db *gorm.DB) (int64, error) {
	return countScalar(db, `SELECT COUNT(DISTINCT ip_address) FROM visitor_logs`)
}

func todayVisits(db *gorm.DB, now time.Time) (int64, error) {
	return countScalar(db,
		`SELECT COUNT(*) FROM visitor_logs WHERE DATE(visit_timestamp) = ?`,
		visits.StatDate(now))
}

// thisWeekVisits uses SQLite's %W week-of-year (weeks start on Monday).
func thisWeekVisits(db *gorm.DB, now time.Time) (int64, error) {
	return countScalar(db,
		`SELECT COUNT(*) FROM visitor_logs WHERE strftime('%Y-%W', visit_timestamp) = strftime('%Y-%W', ?)`,
		now.UTC().Format("2006-01-02 15:04:05"))
}

func topPages(db *gorm.DB) ([]PageCount, error) {
	rows := []PageCount{}
	query := `
		SELECT page_path, COUNT(*) AS visits
		FROM visitor_logs
		GROUP BY page_path
		ORDER BY visits DESC, page_path ASC
		LIMIT ?
	`
	err := db.Raw(query, TopPagesLimit).Scan(&rows).Error
	return rows, err
}

func browserStats(db *gorm.DB) ([]BrowserCount, error) {
	rows := []BrowserCount{}
	query := `
		SELECT browser, COUNT(*) AS count
		FROM visitor_logs
		GROUP BY browser
		ORDER BY count DESC, browser ASC
	`
	err := db.Raw(query).Scan(&rows).Error
	return rows, err
}

func osStats(db *gorm.DB) ([]OSCount, error) {
	rows := []OSCount{}
	query := `
		SELECT os, COUNT(*) AS count
		FROM visitor_logs
		GROUP BY os
		ORDER BY count DESC, os ASC
	`
	err := db.Raw(query).Scan(&rows).Error
	return rows, err
}

func deviceStats(db *gorm.DB) ([]DeviceCount, error) {
	rows := []DeviceCount{}
	query := `
		SELECT device, COUNT(*) AS count
		FROM visitor_logs
		GROUP BY device
		ORDER BY count DESC, device ASC
	`
	err := db.Raw(query).Scan(&rows).Error
	return rows, err
}

func countryStats(db *gorm.DB) ([]CountryCount, error) {
	rows := []CountryCount{}
	query := `
		SELECT COALESCE(country, '') AS country, COUNT(*) AS count
		FROM visitor_logs
		GROUP BY COALESCE(country, '')
		ORDER BY count DESC, country ASC
	`
	if err := db.Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return convertCountryStats(rows), nil
}

func recentVisits(db *gorm.DB) ([]RecentVisit, error) {
	rows := []RecentVisit{}
	query := `
		SELECT ip_address, page_path, visit_timestamp, browser, os, device, referer
		FROM visitor_logs
		ORDER BY visit_timestamp DESC, id DESC
		LIMIT ?
	`
	if err := db.Raw(query, RecentVisitsLimit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].VisitTimestamp = rows[i].VisitTimestamp.UTC()
	}
	return rows, nil
}

// dailyChartSince returns the first instant included in the trailing chart:
// midnight UTC, DailyChartDays days before now.
func dailyChartSince(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -DailyChartDays)
}

func dailyChart(db *gorm.DB, now time.Time) ([]DailyPoint, error) {
	rows := []DailyPoint{}
	query := `
		SELECT DATE(visit_timestamp) AS date, COUNT(*) AS visits, COUNT(DISTINCT ip_address) AS unique_ips
		FROM visitor_logs
		WHERE visit_timestamp >= ?
		GROUP BY DATE(visit_timestamp)
		ORDER BY date ASC
	`
	err := db.Raw(query, dailyChartSince(now)).Scan(&rows).Error
	return rows, err
}
