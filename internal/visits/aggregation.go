package visits

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

type visitNovelty struct {
	newPageVisitor bool
	newDayVisitor  bool
	newDayIP       bool
}

// getVisitorIncrement converts a novelty flag into a counter delta.
func getVisitorIncrement(isNew bool) int {
	if isNew {
		return 1
	}
	return 0
}

// visitorKey identifies a visitor for daily uniqueness: the session when the
// client sent one, otherwise the IP address.
func visitorKey(sessionID, ipAddress string) string {
	if sessionID != "" {
		return "s:" + sessionID
	}
	return "i:" + ipAddress
}

const visitorKeyExpr = "CASE WHEN session_id <> '' THEN 's:' || session_id ELSE 'i:' || ip_address END"

func detectNovelty(tx *gorm.DB, visit *VisitLog, statDate string) (visitNovelty, error) {
	var novelty visitNovelty

	dayStart, err := time.Parse(statDateLayout, statDate)
	if err != nil {
		return novelty, fmt.Errorf("invalid stat date %q: %w", statDate, err)
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	var pageCount int64
	err = tx.Table(visitLogsTableName).
		Where("page_path = ? AND ip_address = ?", visit.PagePath, visit.IPAddress).
		Count(&pageCount).Error
	if err != nil {
		return novelty, fmt.Errorf("failed to check page visitor: %w", err)
	}
	novelty.newPageVisitor = pageCount == 0

	var ipCount int64
	err = tx.Table(visitLogsTableName).
		Where("ip_address = ? AND visit_timestamp >= ? AND visit_timestamp < ?", visit.IPAddress, dayStart, dayEnd).
		Count(&ipCount).Error
	if err != nil {
		return novelty, fmt.Errorf("failed to check daily ip: %w", err)
	}
	novelty.newDayIP = ipCount == 0

	var visitorCount int64
	err = tx.Table(visitLogsTableName).
		Where(visitorKeyExpr+" = ? AND visit_timestamp >= ? AND visit_timestamp < ?",
			visitorKey(visit.SessionID, visit.IPAddress), dayStart, dayEnd).
		Count(&visitorCount).Error
	if err != nil {
		return novelty, fmt.Errorf("failed to check daily visitor: %w", err)
	}
	novelty.newDayVisitor = visitorCount == 0

	return novelty, nil
}

// updatePageStatistic upserts the per-page counters. last_visit never moves backwards.
func updatePageStatistic(tx *gorm.DB, pagePath string, visitedAt time.Time, isNewVisitor bool, now time.Time) error {
	visitorInc := getVisitorIncrement(isNewVisitor)
	query := `
		INSERT INTO page_statistics (page_path, total_visits, unique_visitors, last_visit, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?, ?)
		ON CONFLICT (page_path) DO UPDATE SET
			total_visits = page_statistics.total_visits + 1,
			unique_visitors = page_statistics.unique_visitors + ?,
			last_visit = MAX(page_statistics.last_visit, excluded.last_visit),
			updated_at = ?
	`
	return tx.Exec(query,
		pagePath, visitorInc, visitedAt, now, now,
		visitorInc, now).Error
}

func updateDayStatistic(tx *gorm.DB, statDate string, isNewVisitor, isNewIP bool, now time.Time) error {
	visitorInc := getVisitorIncrement(isNewVisitor)
	ipInc := getVisitorIncrement(isNewIP)
	query := `
		INSERT INTO daily_statistics (stat_date, total_visits, unique_visitors, unique_ips, created_at, updated_at)
		VALUES (?, 1, ?, ?, ?, ?)
		ON CONFLICT (stat_date) DO UPDATE SET
			total_visits = daily_statistics.total_visits + 1,
			unique_visitors = daily_statistics.unique_visitors + ?,
			unique_ips = daily_statistics.unique_ips + ?,
			updated_at = ?
	`
	return tx.Exec(query,
		statDate, visitorInc, ipInc, now, now,
		visitorInc, ipInc, now).Error
}

// RebuildAggregates recomputes page_statistics and daily_statistics from
// visitor_logs in a single transaction. Days are keyed by visit timestamp.
func RebuildAggregates(dbManager cartridge.DBManager, logger *slog.Logger) error {
	db := dbManager.GetConnection()
	now := time.Now().UTC()

	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + pageStatisticsTableName).Error; err != nil {
			return fmt.Errorf("failed to clear page statistics: %w", err)
		}
		if err := tx.Exec("DELETE FROM " + dailyStatisticsTableName).Error; err != nil {
			return fmt.Errorf("failed to clear daily statistics: %w", err)
		}

		pageQuery := `
			INSERT INTO page_statistics (page_path, total_visits, unique_visitors, last_visit, created_at, updated_at)
			SELECT page_path, COUNT(*), COUNT(DISTINCT ip_address), MAX(visit_timestamp), ?, ?
			FROM visitor_logs
			GROUP BY page_path
		`
		if err := tx.Exec(pageQuery, now, now).Error; err != nil {
			return fmt.Errorf("failed to rebuild page statistics: %w", err)
		}

		dayQuery := `
			INSERT INTO daily_statistics (stat_date, total_visits, unique_visitors, unique_ips, created_at, updated_at)
			SELECT DATE(visit_timestamp), COUNT(*), COUNT(DISTINCT ` + visitorKeyExpr + `), COUNT(DISTINCT ip_address), ?, ?
			FROM visitor_logs
			GROUP BY DATE(visit_timestamp)
		`
		if err := tx.Exec(dayQuery, now, now).Error; err != nil {
			return fmt.Errorf("failed to rebuild daily statistics: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to rebuild aggregates", slog.Any("error", err))
		return err
	}

	logger.Info("Aggregates rebuilt from visit log")
	return nil
}
