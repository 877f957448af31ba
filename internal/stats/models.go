package stats

import "time"

// Snapshot is the composite statistics document served by GET /api/stats.
// Every figure is computed from visitor_logs.
type Snapshot struct {
	TotalVisits    int64          `json:"total_visits"`
	UniqueIPs      int64          `json:"unique_ips"`
	TodayVisits    int64          `json:"today_visits"`
	ThisWeekVisits int64          `json:"this_week_visits"`
	TopPages       []PageCount    `json:"top_pages"`
	BrowserStats   []BrowserCount `json:"browser_stats"`
	OSStats        []OSCount      `json:"os_stats"`
	DeviceStats    []DeviceCount  `json:"device_stats"`
	CountryStats   []CountryCount `json:"country_stats"`
	RecentVisits   []RecentVisit  `json:"recent_visits"`
	DailyChart     []DailyPoint   `json:"daily_chart"`
}

type PageCount struct {
	PagePath string `json:"page_path" gorm:"column:page_path"`
	Visits   int64  `json:"visits" gorm:"column:visits"`
}

type BrowserCount struct {
	Browser string `json:"browser" gorm:"column:browser"`
	Count   int64  `json:"count" gorm:"column:count"`
}

type OSCount struct {
	OS    string `json:"os" gorm:"column:os"`
	Count int64  `json:"count" gorm:"column:count"`
}

type DeviceCount struct {
	Device string `json:"device" gorm:"column:device"`
	Count  int64  `json:"count" gorm:"column:count"`
}

type CountryCount struct {
	Country string `json:"country" gorm:"column:country"`
	Count   int64  `json:"count" gorm:"column:count"`
}

type RecentVisit struct {
	IPAddress      string    `json:"ip_address" gorm:"column:ip_address"`
	PagePath       string    `json:"page_path" gorm:"column:page_path"`
	VisitTimestamp time.Time `json:"visit_timestamp" gorm:"column:visit_timestamp"`
	Browser        string    `json:"browser" gorm:"column:browser"`
	OS             string    `json:"os" gorm:"column:os"`
	Device         string    `json:"device" gorm:"column:device"`
	Referer        string    `json:"referer" gorm:"column:referer"`
}

// DailyPoint is one day of the trailing chart; Date is YYYY-MM-DD (UTC).
type DailyPoint struct {
	Date      string `json:"date" gorm:"column:date"`
	Visits    int64  `json:"visits" gorm:"column:visits"`
	UniqueIPs int64  `json:"unique_ips" gorm:"column:unique_ips"`
}
