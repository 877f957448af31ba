package visits

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"visitortracker/internal/pkg/geoip"
	"visitortracker/internal/pkg/user_agent"
)

// TrackVisitInput defines the input required to record a visit.
type TrackVisitInput struct {
	IPAddress   string
	UserAgent   string
	Referer     string
	PagePath    string
	QueryString string
	SessionID   string
	// Timestamp backdates the visit. Zero means now; only the bulk loader sets it.
	Timestamp time.Time
}

// TrackVisit classifies and records one visit. The log row and both aggregate
// updates commit together or not at all.
func TrackVisit(dbManager cartridge.DBManager, logger *slog.Logger, input *TrackVisitInput) (*VisitLog, error) {
	now := time.Now().UTC()
	visit := buildVisitLog(input, now)

	// Live visits are bucketed by ingestion time, backdated ones by their own timestamp.
	statDate := StatDate(now)
	if !input.Timestamp.IsZero() {
		statDate = StatDate(visit.VisitTimestamp)
	}

	db := dbManager.GetConnection()
	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		visit.ID = 0
		return recordVisit(tx, visit, statDate, now)
	})
	if err != nil {
		logger.Error("Failed to track visit",
			slog.String("page_path", visit.PagePath),
			slog.String("ip_address", visit.IPAddress),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to track visit: %w", err)
	}

	logger.Debug("Visit tracked",
		slog.Uint64("id", uint64(visit.ID)),
		slog.String("page_path", visit.PagePath),
		slog.String("browser", visit.Browser),
		slog.String("os", visit.OS),
		slog.String("device", visit.Device))

	return visit, nil
}

func buildVisitLog(input *TrackVisitInput, now time.Time) *VisitLog {
	pagePath := input.PagePath
	if pagePath == "" {
		pagePath = DefaultPagePath
	}

	ipAddress := input.IPAddress
	if ipAddress == "" {
		ipAddress = UnknownIPAddress
	}

	timestamp := now
	if !input.Timestamp.IsZero() {
		timestamp = input.Timestamp.UTC()
	}

	ua := user_agent.ParseUserAgent(input.UserAgent)

	return &VisitLog{
		IPAddress:      ipAddress,
		PagePath:       pagePath,
		QueryString:    input.QueryString,
		Referer:        input.Referer,
		UserAgent:      input.UserAgent,
		VisitTimestamp: timestamp,
		SessionID:      input.SessionID,
		Browser:        ua.Browser,
		OS:             ua.OS,
		Device:         ua.Device,
		Country:        geoip.CountryCode(ipAddress),
		CreatedAt:      now,
	}
}

// recordVisit runs inside the write transaction. Novelty checks happen before
// the insert so the new row does not count against itself.
func recordVisit(tx *gorm.DB, visit *VisitLog, statDate string, now time.Time) error {
	novelty, err := detectNovelty(tx, visit, statDate)
	if err != nil {
		return err
	}

	if err := tx.Create(visit).Error; err != nil {
		return fmt.Errorf("failed to insert visit log: %w", err)
	}

	if err := updatePageStatistic(tx, visit.PagePath, visit.VisitTimestamp, novelty.newPageVisitor, now); err != nil {
		return fmt.Errorf("failed to update page statistics: %w", err)
	}

	if err := updateDayStatistic(tx, statDate, novelty.newDayVisitor, novelty.newDayIP, now); err != nil {
		return fmt.Errorf("failed to update daily statistics: %w", err)
	}

	return nil
}

// StatDate returns the UTC calendar date key used by daily_statistics.
func StatDate(t time.Time) string {
	return t.UTC().Format(statDateLayout)
}
