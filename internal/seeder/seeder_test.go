package seeder_test

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitortracker/internal/seeder"
	"visitortracker/internal/testsupport"
	"visitortracker/internal/visits"
)

func newTestSeeder(t *testing.T, count int, now time.Time) (*seeder.Seeder, *testsupport.TestDBManager) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	s := seeder.NewSeeder(dbManager, logger, count)
	s.Now = func() time.Time { return now }
	s.Rand = rand.New(rand.NewPCG(42, 7))
	return s, dbManager
}

func TestSeederRun(t *testing.T) {
	now := time.Date(2026, 6, 30, 18, 0, 0, 0, time.UTC)
	s, dbManager := newTestSeeder(t, 100, now)
	db := dbManager.GetConnection()

	created, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, created)

	var logs []visits.VisitLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 100)

	pages := []string{"/", "/about", "/contact", "/products", "/blog", "/services"}
	referers := []string{"https://google.com", "https://facebook.com", ""}
	windowStart := now.Add(-seeder.SampleWindow)

	for i, log := range logs {
		assert.Contains(t, pages, log.PagePath)
		assert.Equal(t, referers[i%3], log.Referer)
		assert.NotEmpty(t, log.SessionID)
		assert.False(t, log.VisitTimestamp.Before(windowStart), "visit %d too old", i)
		assert.False(t, log.VisitTimestamp.After(now), "visit %d in the future", i)
		assert.NotEqual(t, "Unknown", log.Browser)
		assert.NotEqual(t, "Unknown", log.OS)
	}

	// aggregates follow the log
	var pageTotal, dayTotal int64
	require.NoError(t, db.Model(&visits.PageStatistic{}).Select("SUM(total_visits)").Scan(&pageTotal).Error)
	require.NoError(t, db.Model(&visits.DayStatistic{}).Select("SUM(total_visits)").Scan(&dayTotal).Error)
	assert.Equal(t, int64(100), pageTotal)
	assert.Equal(t, int64(100), dayTotal)

	var days []visits.DayStatistic
	require.NoError(t, db.Find(&days).Error)
	for _, day := range days {
		assert.LessOrEqual(t, day.UniqueIPs, day.TotalVisits)
		assert.LessOrEqual(t, day.UniqueVisitors, day.TotalVisits)
	}
}

func TestSeederKeepsOneSessionPerIP(t *testing.T) {
	s, dbManager := newTestSeeder(t, 60, time.Now().UTC())
	db := dbManager.GetConnection()

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	type pair struct {
		IPAddress string
		Sessions  int64
	}
	var pairs []pair
	require.NoError(t, db.Model(&visits.VisitLog{}).
		Select("ip_address, COUNT(DISTINCT session_id) AS sessions").
		Group("ip_address").
		Scan(&pairs).Error)
	require.NotEmpty(t, pairs)
	for _, p := range pairs {
		assert.Equal(t, int64(1), p.Sessions, "ip %s", p.IPAddress)
	}
}

func TestSeederDevicesCovered(t *testing.T) {
	s, dbManager := newTestSeeder(t, 200, time.Now().UTC())
	db := dbManager.GetConnection()

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	var devices []string
	require.NoError(t, db.Model(&visits.VisitLog{}).Distinct().Pluck("device", &devices).Error)
	for _, device := range []string{"Desktop", "Mobile", "Tablet"} {
		assert.True(t, slices.Contains(devices, device), "missing device %s", device)
	}
}

func TestSeederRespectsCancellation(t *testing.T) {
	s, _ := newTestSeeder(t, 50, time.Now().UTC())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	created, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, created)
}

func TestSeederRejectsNonPositiveCount(t *testing.T) {
	s, _ := newTestSeeder(t, 0, time.Now().UTC())
	_, err := s.Run(context.Background())
	assert.Error(t, err)
}
