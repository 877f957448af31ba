// Package stats computes read-only statistics over the visit log.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"visitortracker/internal/pkg/async"
)

const snapshotWorkers = 6

// BuildSnapshot runs every snapshot query concurrently and assembles the result.
// Any failed query fails the whole snapshot.
func BuildSnapshot(ctx context.Context, db *gorm.DB, logger *slog.Logger, now time.Time) (*Snapshot, error) {
	tasks := []async.Task{
		{Name: "total_visits", Execute: func() (any, error) { return totalVisits(db) }},
		{Name: "unique_ips", Execute: func() (any, error) { return uniqueIPs(db) }},
		{Name: "today_visits", Execute: func() (any, error) { return todayVisits(db, now) }},
		{Name: "this_week_visits", Execute: func() (any, error) { return thisWeekVisits(db, now) }},
		{Name: "top_pages", Execute: func() (any, error) { return topPages(db) }},
		{Name: "browser_stats", Execute: func() (any, error) { return browserStats(db) }},
		{Name: "os_stats", Execute: func() (any, error) { return osStats(db) }},
		{Name: "device_stats", Execute: func() (any, error) { return deviceStats(db) }},
		{Name: "country_stats", Execute: func() (any, error) { return countryStats(db) }},
		{Name: "recent_visits", Execute: func() (any, error) { return recentVisits(db) }},
		{Name: "daily_chart", Execute: func() (any, error) { return dailyChart(db, now) }},
	}

	pool := async.NewPool(snapshotWorkers)
	results := pool.Execute(ctx, tasks)

	if err := async.FirstError(tasks, results); err != nil {
		logger.Error("Failed to build stats snapshot", slog.Any("error", err))
		return nil, fmt.Errorf("failed to build stats snapshot: %w", err)
	}

	return &Snapshot{
		TotalVisits:    results["total_visits"].Data.(int64),
		UniqueIPs:      results["unique_ips"].Data.(int64),
		TodayVisits:    results["today_visits"].Data.(int64),
		ThisWeekVisits: results["this_week_visits"].Data.(int64),
		TopPages:       results["top_pages"].Data.([]PageCount),
		BrowserStats:   results["browser_stats"].Data.([]BrowserCount),
		OSStats:        results["os_stats"].Data.([]OSCount),
		DeviceStats:    results["device_stats"].Data.([]DeviceCount),
		CountryStats:   results["country_stats"].Data.([]CountryCount),
		RecentVisits:   results["recent_visits"].Data.([]RecentVisit),
		DailyChart:     results["daily_chart"].Data.([]DailyPoint),
	}, nil
}
