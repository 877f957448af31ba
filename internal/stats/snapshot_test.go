package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"visitortracker/internal/stats"
	"visitortracker/internal/testsupport"
)

const (
	chromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	firefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"
	safariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

// Thursday; the ISO-ish week starts Monday 2026-10-12.
var snapshotNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func seedSnapshotVisits(t *testing.T) *testsupport.TestDBManager {
	dbManager, _ := testsupport.SetupTestDBManager(t)

	testsupport.TrackTestVisit(t, dbManager, "10.0.0.1", "/", chromeWindows, "s1", snapshotNow.Add(-1*time.Hour))
	testsupport.TrackTestVisit(t, dbManager, "10.0.0.2", "/", firefoxLinux, "s2", snapshotNow.Add(-2*time.Hour))
	testsupport.TrackTestVisit(t, dbManager, "10.0.0.1", "/", safariIPhone, "s3", snapshotNow.Add(-3*time.Hour))
	testsupport.TrackTestVisit(t, dbManager, "10.0.0.3", "/about", chromeWindows, "", time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC))
	testsupport.TrackTestVisit(t, dbManager, "10.0.0.1", "/about", firefoxLinux, "", time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC))
	testsupport.TrackTestVisit(t, dbManager, "10.0.0.5", "/blog", chromeWindows, "", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))
	testsupport.TrackTestVisit(t, dbManager, "10.0.0.4", "/old", chromeWindows, "", snapshotNow.AddDate(0, 0, -45))

	return dbManager
}

func TestBuildSnapshot(t *testing.T) {
	dbManager := seedSnapshotVisits(t)
	logger := testsupport.GetLogger()

	snapshot, err := stats.BuildSnapshot(context.Background(), dbManager.GetConnection(), logger, snapshotNow)
	require.NoError(t, err)

	t.Run("Totals", func(t *testing.T) {
		assert.Equal(t, int64(7), snapshot.TotalVisits)
		assert.Equal(t, int64(5), snapshot.UniqueIPs)
		assert.Equal(t, int64(3), snapshot.TodayVisits)
		assert.Equal(t, int64(4), snapshot.ThisWeekVisits)
	})

	t.Run("Top pages sorted by visits", func(t *testing.T) {
		assert.Equal(t, []stats.PageCount{
			{PagePath: "/", Visits: 3},
			{PagePath: "/about", Visits: 2},
			{PagePath: "/blog", Visits: 1},
			{PagePath: "/old", Visits: 1},
		}, snapshot.TopPages)
	})

	t.Run("Breakdowns", func(t *testing.T) {
		assert.Equal(t, []stats.BrowserCount{
			{Browser: "Chrome", Count: 4},
			{Browser: "Firefox", Count: 2},
			{Browser: "Safari", Count: 1},
		}, snapshot.BrowserStats)
		assert.Equal(t, []stats.OSCount{
			{OS: "Windows 10", Count: 4},
			{OS: "Linux", Count: 2},
			{OS: "Mac OS X", Count: 1},
		}, snapshot.OSStats)
		assert.Equal(t, []stats.DeviceCount{
			{Device: "Desktop", Count: 6},
			{Device: "Mobile", Count: 1},
		}, snapshot.DeviceStats)
		assert.Equal(t, []stats.CountryCount{
			{Country: stats.UnknownCountry, Count: 7},
		}, snapshot.CountryStats)
	})

	t.Run("Recent visits newest first", func(t *testing.T) {
		require.Len(t, snapshot.RecentVisits, 7)
		first := snapshot.RecentVisits[0]
		assert.Equal(t, "10.0.0.1", first.IPAddress)
		assert.Equal(t, "/", first.PagePath)
		assert.Equal(t, "Chrome", first.Browser)
		assert.True(t, first.VisitTimestamp.Equal(snapshotNow.Add(-1*time.Hour)))

		for i := 1; i < len(snapshot.RecentVisits); i++ {
			assert.False(t, snapshot.RecentVisits[i].VisitTimestamp.After(snapshot.RecentVisits[i-1].VisitTimestamp))
		}
		assert.Equal(t, "/old", snapshot.RecentVisits[6].PagePath)
	})

	t.Run("Daily chart bounded to trailing 30 days", func(t *testing.T) {
		assert.Equal(t, []stats.DailyPoint{
			{Date: "2026-09-15", Visits: 1, UniqueIPs: 1},
			{Date: "2026-10-01", Visits: 1, UniqueIPs: 1},
			{Date: "2026-10-12", Visits: 1, UniqueIPs: 1},
			{Date: "2026-10-15", Visits: 3, UniqueIPs: 2},
		}, snapshot.DailyChart)
	})
}

func TestBuildSnapshotIsIdempotent(t *testing.T) {
	dbManager := seedSnapshotVisits(t)
	db := dbManager.GetConnection()
	logger := testsupport.GetLogger()

	first, err := stats.BuildSnapshot(context.Background(), db, logger, snapshotNow)
	require.NoError(t, err)
	second, err := stats.BuildSnapshot(context.Background(), db, logger, snapshotNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildSnapshotTopPagesLimit(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	for i := 0; i < 12; i++ {
		path := "/page-" + string(rune('a'+i))
		for j := 0; j <= i; j++ {
			testsupport.TrackTestVisit(t, dbManager, "10.1.0.1", path, chromeWindows, "", snapshotNow.Add(-time.Duration(j)*time.Minute))
		}
	}

	snapshot, err := stats.BuildSnapshot(context.Background(), dbManager.GetConnection(), logger, snapshotNow)
	require.NoError(t, err)

	require.Len(t, snapshot.TopPages, stats.TopPagesLimit)
	assert.Equal(t, "/page-l", snapshot.TopPages[0].PagePath)
	assert.Equal(t, int64(12), snapshot.TopPages[0].Visits)
	for i := 1; i < len(snapshot.TopPages); i++ {
		assert.GreaterOrEqual(t, snapshot.TopPages[i-1].Visits, snapshot.TopPages[i].Visits)
	}
}

func TestBuildSnapshotEmptyStore(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)

	snapshot, err := stats.BuildSnapshot(context.Background(), dbManager.GetConnection(), logger, snapshotNow)
	require.NoError(t, err)

	assert.Zero(t, snapshot.TotalVisits)
	assert.Zero(t, snapshot.UniqueIPs)
	assert.Empty(t, snapshot.TopPages)
	assert.Empty(t, snapshot.RecentVisits)
	assert.Empty(t, snapshot.DailyChart)
	assert.Empty(t, snapshot.CountryStats)
}

func TestBuildSnapshotFailsOnStoreError(t *testing.T) {
	// A database without the schema makes every query fail.
	db, err := gorm.Open(sqlite.Open("file:stats_missing_schema?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	snapshot, err := stats.BuildSnapshot(context.Background(), db, testsupport.GetLogger(), snapshotNow)
	assert.Error(t, err)
	assert.Nil(t, snapshot)
}

func TestAggregateReaders(t *testing.T) {
	dbManager := seedSnapshotVisits(t)
	db := dbManager.GetConnection()

	pages, err := stats.PageStatistics(db, 2)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "/", pages[0].PagePath)
	assert.Equal(t, int64(3), pages[0].TotalVisits)
	assert.Equal(t, int64(2), pages[0].UniqueVisitors)
	assert.Equal(t, "/about", pages[1].PagePath)

	days, err := stats.DailyStatistics(db, 0)
	require.NoError(t, err)
	require.Len(t, days, 5)
	assert.Equal(t, "2026-10-15", days[0].StatDate)
	assert.Equal(t, int64(3), days[0].TotalVisits)
	assert.Equal(t, int64(2), days[0].UniqueIPs)
	assert.Equal(t, int64(3), days[0].UniqueVisitors)
}
