// Package seeder generates backdated sample visits through the ingestion path.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge"

	"visitortracker/internal/visits"
)

// SampleWindow is how far back generated visits are spread.
const SampleWindow = 30 * 24 * time.Hour

var samplePages = []string{"/", "/about", "/contact", "/products", "/blog", "/services"}

var sampleIPs = []string{
	"192.168.1.1", "192.168.1.2", "192.168.1.3",
	"10.0.0.1", "10.0.0.2",
	"172.16.0.1", "172.16.0.2",
	"203.0.113.1", "203.0.113.2",
	"198.51.100.1",
}

// Referers rotate by visit index; the empty entry is a direct visit.
var sampleReferers = []string{"https://google.com", "https://facebook.com", ""}

// sampleUserAgents cover every browser, OS and device class the classifier knows.
var sampleUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Opera/9.80 (X11; Linux x86_64) Presto/2.12.388 Version/12.16",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (Android 13; Tablet; rv:120.0) Gecko/120.0 Firefox/120.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (iPad; CPU OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko",
}

// Seeder handles the data seeding process
type Seeder struct {
	DBManager  cartridge.DBManager
	Logger     *slog.Logger
	EventCount int
	// Now and Rand are replaceable for deterministic runs.
	Now  func() time.Time
	Rand *rand.Rand
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, eventCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager:  dbManager,
		Logger:     logger,
		EventCount: eventCount,
		Now:        time.Now,
		Rand:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

// Run records EventCount visits spread uniformly over the trailing SampleWindow.
// Each IP keeps one session id for the whole run. It returns how many visits were recorded.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	if s.EventCount <= 0 {
		return 0, fmt.Errorf("event count must be positive, got %d", s.EventCount)
	}

	start := time.Now()
	now := s.Now().UTC()
	s.Logger.Info("Seeding sample visits...", slog.Int("eventCount", s.EventCount))

	sessions := make(map[string]string, len(sampleIPs))
	for _, ip := range sampleIPs {
		sessions[ip] = uuid.NewString()
	}

	created := 0
	for i := 0; i < s.EventCount; i++ {
		if err := ctx.Err(); err != nil {
			s.Logger.Warn("Seeding interrupted", slog.Int("created", created))
			return created, err
		}

		ip := pick(s.Rand, sampleIPs)
		offset := time.Duration(s.Rand.Int64N(int64(SampleWindow)))

		input := &visits.TrackVisitInput{
			IPAddress: ip,
			UserAgent: pick(s.Rand, sampleUserAgents),
			Referer:   sampleReferers[i%len(sampleReferers)],
			PagePath:  pick(s.Rand, samplePages),
			SessionID: sessions[ip],
			Timestamp: now.Add(-offset),
		}

		if _, err := visits.TrackVisit(s.DBManager, s.Logger, input); err != nil {
			return created, fmt.Errorf("failed to record sample visit %d: %w", i, err)
		}
		created++
	}

	s.Logger.Info("Sample visits created",
		slog.Int("created", created),
		slog.Duration("elapsed", time.Since(start)))
	return created, nil
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}
