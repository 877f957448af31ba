package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"visitortracker/internal/config"
	"visitortracker/internal/http"
)

// publicCORSConfig lets tracked pages on any origin post visits and load the tracker.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Referer, Referrer, User-Agent",
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Rate limiting would interfere with development and tests, so it only runs in production.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	trackRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(cfg.TrackRateLimitPerMinute),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Tracking is cross-origin by nature; Sec-Fetch-Site is not enforced.
	trackConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         publicCORSConfig,
		CustomMiddleware:   []fiber.Handler{trackRateLimiter},
		EnableSecFetchSite: cartridge.Bool(false),
	}

	trackerScriptConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         publicCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
	}

	readConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
	}

	// === DASHBOARD ===
	srv.Get("/", http.DashboardIndexAction, readConfig)

	// === HEALTH ===
	srv.Get("/_health", http.HealthIndexAction, readConfig)
	srv.Head("/_health", http.HealthIndexAction, readConfig)

	// === TRACKING ===
	srv.Post("/api/track", http.TrackVisitAction, trackConfig)
	srv.Options("/api/track", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, trackConfig)
	srv.Get("/tracker.js", http.TrackerScriptAction, trackerScriptConfig)

	// === STATISTICS ===
	srv.Get("/api/stats", http.StatsIndexAction, readConfig)
}
