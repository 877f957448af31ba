package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"visitortracker/internal/stats"
)

// StatsIndexAction handles GET /api/stats
func StatsIndexAction(ctx *cartridge.Context) error {
	snapshot, err := stats.BuildSnapshot(context.Background(), ctx.DB(), ctx.Logger, time.Now().UTC())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return ctx.JSON(snapshot)
}
