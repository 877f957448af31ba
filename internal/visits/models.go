package visits

import "time"

const (
	visitLogsTableName       = "visitor_logs"
	pageStatisticsTableName  = "page_statistics"
	dailyStatisticsTableName = "daily_statistics"
)

// VisitLog is one immutable row of the append-only visit log.
// VisitTimestamp may be backdated by the bulk loader; CreatedAt is always the insert time.
type VisitLog struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	IPAddress      string    `gorm:"column:ip_address;index:idx_ip;not null"`
	PagePath       string    `gorm:"index:idx_page_path;not null"`
	QueryString    string
	Referer        string
	UserAgent      string
	VisitTimestamp time.Time `gorm:"index:idx_timestamp;not null"`
	SessionID      string    `gorm:"index"`
	Browser        string
	OS             string `gorm:"column:os"`
	Device         string
	Country        string
	CreatedAt      time.Time
}

func (VisitLog) TableName() string { return visitLogsTableName }

// PageStatistic is the running aggregate for one page path.
type PageStatistic struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	PagePath       string `gorm:"uniqueIndex;not null"`
	TotalVisits    int64  `gorm:"not null;default:0"`
	UniqueVisitors int64  `gorm:"not null;default:0"`
	LastVisit      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PageStatistic) TableName() string { return pageStatisticsTableName }

// DayStatistic is the running aggregate for one UTC calendar date (YYYY-MM-DD).
type DayStatistic struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	StatDate       string `gorm:"uniqueIndex;not null"`
	TotalVisits    int64  `gorm:"not null;default:0"`
	UniqueVisitors int64  `gorm:"not null;default:0"`
	UniqueIPs      int64  `gorm:"column:unique_ips;not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DayStatistic) TableName() string { return dailyStatisticsTableName }

// AllModels lists every table owned by the store, in migration order.
func AllModels() []any {
	return []any{
		&VisitLog{},
		&PageStatistic{},
		&DayStatistic{},
	}
}
